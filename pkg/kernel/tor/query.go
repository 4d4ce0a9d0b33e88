package tor

import (
	"math"

	"github.com/chazu/toroid/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Normal returns the unit outward surface normal at h.
//
// The gradient of the canonical equation is proportional to
// ((w-2)x, (w-2)y, w·z) with w = x²+y²+z² + 1 - α².
func (t *Torus) Normal(_ kernel.Ray, h kernel.Hit) v3.Vec {
	c := h.Canonical
	w := c.Dot(c) + 1 - t.alpha*t.alpha
	g := v3.Vec{X: (w - 2) * c.X, Y: (w - 2) * c.Y, Z: w * c.Z}
	n, ok := kernel.Unit(t.invRot.MulVec(g))
	if !ok {
		return t.n
	}
	return n
}

// Curvature returns the principal curvatures at h. One principal direction
// follows the tube's circular cross-section (curvature -1/R2), the other
// follows the parallel circle around the axis.
func (t *Torus) Curvature(_ kernel.Ray, h kernel.Hit) kernel.Curvature {
	c := h.Canonical
	rho := math.Hypot(c.X, c.Y)
	er := v3.Vec{X: 1}
	if rho > kernel.SmallFastf {
		er = v3.Vec{X: c.X / rho, Y: c.Y / rho}
	}
	ephi := v3.Vec{X: -er.Y, Y: er.X}

	w := c.Dot(c) + 1 - t.alpha*t.alpha
	n, _ := kernel.Unit(v3.Vec{X: (w - 2) * c.X, Y: (w - 2) * c.Y, Z: w * c.Z})

	meridian := -1 / t.r2
	var parallel float64
	if rho > kernel.SmallFastf {
		parallel = -n.Dot(er) / (rho * t.r1)
	}

	if math.Abs(parallel) <= math.Abs(meridian) {
		return kernel.Curvature{
			PDir: t.invRot.MulVec(ephi),
			C1:   parallel,
			C2:   meridian,
		}
	}
	tm, _ := kernel.Unit(n.Cross(ephi))
	return kernel.Curvature{
		PDir: t.invRot.MulVec(tm),
		C1:   meridian,
		C2:   parallel,
	}
}

// UV maps h to [0,1]². U runs around the axis starting opposite +A; V runs
// around the tube with its seam on the inner diameter.
func (t *Torus) UV(_ kernel.Ray, h kernel.Hit) kernel.UV {
	c := h.Canonical
	u := math.Atan2(c.Y, c.X)/(2*math.Pi) + 0.5

	rho := math.Hypot(c.X, c.Y)
	er := v3.Vec{X: 1}
	if rho > kernel.SmallFastf {
		er = v3.Vec{X: c.X / rho, Y: c.Y / rho}
	}
	// Offset from the tube centre on the unit circle.
	d := c.Sub(er)
	v := math.Atan2(c.Z, d.Dot(er))/(2*math.Pi) + 0.5

	return kernel.UV{U: clamp01(u), V: clamp01(v)}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
