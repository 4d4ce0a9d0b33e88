package eto

import (
	"math"

	"github.com/chazu/toroid/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// meridian returns, for a canonical point, the radial unit vector and the
// point's coordinates along the cross-section's major (s) and minor (q)
// axes.
func (e *EllTorus) meridian(c v3.Vec) (er v3.Vec, rho, s, q float64) {
	rho = math.Hypot(c.X, c.Y)
	er = v3.Vec{X: 1}
	if rho > kernel.SmallFastf {
		er = v3.Vec{X: c.X / rho, Y: c.Y / rho}
	}
	du := rho - 1
	s = e.eu*du + e.ev*c.Z
	q = e.fu*du + e.fv*c.Z
	return er, rho, s, q
}

// gradient returns the unit canonical-space normal at c.
func (e *EllTorus) gradient(c v3.Vec) v3.Vec {
	er, _, s, q := e.meridian(c)
	rc2 := e.crc * e.crc
	rd2 := e.crd * e.crd
	dRho := 2 * (s*e.eu/rc2 + q*e.fu/rd2)
	dZ := 2 * (s*e.ev/rc2 + q*e.fv/rd2)
	n, _ := kernel.Unit(er.MulScalar(dRho).Add(v3.Vec{Z: dZ}))
	return n
}

func (e *EllTorus) Normal(_ kernel.Ray, h kernel.Hit) v3.Vec {
	n, ok := kernel.Unit(e.invRot.MulVec(e.gradient(h.Canonical)))
	if !ok {
		return e.n
	}
	return n
}

// Curvature reports the curvature of the cross-section ellipse and of the
// parallel circle through h; C1 is the smaller in magnitude.
func (e *EllTorus) Curvature(_ kernel.Ray, h kernel.Hit) kernel.Curvature {
	c := h.Canonical
	er, rho, s, q := e.meridian(c)
	n := e.gradient(c)
	ephi := v3.Vec{X: -er.Y, Y: er.X}

	// Ellipse curvature at (s, q): rc·rd / (rc²q²/rd² + rd²s²/rc²)^(3/2).
	rc, rd := e.crc, e.crd
	den := math.Pow(rc*rc*q*q/(rd*rd)+rd*rd*s*s/(rc*rc), 1.5)
	var meridian float64
	if den > kernel.SmallFastf {
		meridian = -rc * rd / den / e.r
	}
	var parallel float64
	if rho > kernel.SmallFastf {
		parallel = -n.Dot(er) / (rho * e.r)
	}

	if math.Abs(parallel) <= math.Abs(meridian) {
		return kernel.Curvature{PDir: e.invRot.MulVec(ephi), C1: parallel, C2: meridian}
	}
	tm, _ := kernel.Unit(n.Cross(ephi))
	return kernel.Curvature{PDir: e.invRot.MulVec(tm), C1: meridian, C2: parallel}
}

// UV maps h to [0,1]². V is the eccentric angle within the cross-section,
// measured from C and offset so that its seam falls on the point of
// smallest radius, the inner diameter.
func (e *EllTorus) UV(_ kernel.Ray, h kernel.Hit) kernel.UV {
	c := h.Canonical
	_, _, s, q := e.meridian(c)
	u := math.Atan2(c.Y, c.X)/(2*math.Pi) + 0.5
	v := (math.Atan2(q/e.crd, s/e.crc) - e.seamAngle()) / (2 * math.Pi)
	v -= math.Floor(v)
	return kernel.UV{
		U: math.Max(0, math.Min(1, u)),
		V: math.Max(0, math.Min(1, v)),
	}
}

// seamAngle is the eccentric angle of the cross-section point nearest the
// axis. Along the ellipse ρ - 1 = crc·eu·cos θ + crd·fu·sin θ, which is
// smallest opposite the vector (crc·eu, crd·fu).
func (e *EllTorus) seamAngle() float64 {
	return math.Atan2(e.fu*e.crd, e.eu*e.crc) + math.Pi
}
