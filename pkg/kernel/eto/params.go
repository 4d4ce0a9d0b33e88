// Package eto implements the elliptical torus: an ellipse swept around an
// axis. The ellipse lies in the meridian plane, centred R from the axis,
// with semi-major vector C and semi-minor length RD.
package eto

import (
	"math"

	"github.com/chazu/toroid/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const Kind = "eto"

// Params is the in-memory, pre-transform elliptical torus.
type Params struct {
	V  v3.Vec  // centre
	N  v3.Vec  // revolution normal
	C  v3.Vec  // semi-major axis of the cross-section
	R  float64 // revolution radius
	RD float64 // semi-minor length
}

// New returns Params with N normalised.
func New(v, n, c v3.Vec, r, rd float64) Params {
	u, _ := kernel.Unit(n)
	return Params{V: v, N: u, C: c, R: r, RD: rd}
}

// blend holds the cross-section axes in the (radial, normal) meridian
// frame: (eu, ev) along C and (fu, fv) along the minor axis.
type blend struct {
	eu, ev, fu, fv float64
}

func blendOf(n, c v3.Vec) blend {
	cu, _ := kernel.Unit(c)
	ev := cu.Dot(n)
	ev = math.Max(-1, math.Min(1, ev))
	eu := math.Sqrt(1 - ev*ev)
	return blend{eu: eu, ev: ev, fu: -ev, fv: eu}
}

// halfExtents returns the horizontal and vertical half-widths of the
// cross-section ellipse.
func (b blend) halfExtents(rc, rd float64) (float64, float64) {
	h := math.Sqrt(rc*rc*b.eu*b.eu + rd*rd*b.fu*b.fu)
	v := math.Sqrt(rc*rc*b.ev*b.ev + rd*rd*b.fv*b.fv)
	return h, v
}

// Validate checks the invariants shared by Prep and Export.
func (p Params) Validate() error {
	n, ok := kernel.Unit(p.N)
	if !ok {
		return kernel.Invalid(Kind, "ETO_ZERO_LENGTH", "N is zero length")
	}
	rc := p.C.Length()
	if rc <= kernel.RadiusEps || math.IsNaN(rc) {
		return kernel.Invalid(Kind, "ETO_ZERO_LENGTH", "|C| = %g", rc)
	}
	if p.R <= kernel.RadiusEps || math.IsNaN(p.R) {
		return kernel.Invalid(Kind, "ETO_RADIUS", "r = %g", p.R)
	}
	if p.RD <= kernel.RadiusEps || math.IsNaN(p.RD) {
		return kernel.Invalid(Kind, "ETO_RADIUS", "rd = %g", p.RD)
	}

	h, v := blendOf(n, p.C).halfExtents(rc, p.RD)
	if h > p.R || v > p.R {
		return kernel.Invalid(Kind, "ETO_SELF_OVERLAP",
			"cross-section extents %g x %g exceed r = %g", h, v, p.R)
	}
	return nil
}

// Volume returns 2π·R·(π·|C|·RD).
func (p Params) Volume() float64 {
	return 2 * math.Pi * p.R * math.Pi * p.C.Length() * p.RD
}
