// Package tor implements the circular torus: a circle of radius R2 swept
// around an axis at distance R1 from its centre.
package tor

import (
	"math"

	"github.com/chazu/toroid/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kind is the family name reported by Torus.Kind and used in diagnostics.
const Kind = "tor"

// Params is the in-memory, pre-transform torus description.
//
// H is the revolution normal with |H| = R2. A and B span the plane of the
// revolution circle with |A| = |B| = R1. Only their directions are used by
// Prep; the radii come from R1 and R2.
type Params struct {
	V  v3.Vec
	H  v3.Vec
	A  v3.Vec
	B  v3.Vec
	R1 float64 // major radius
	R2 float64 // minor radius
}

// New builds a torus centred at v with revolution normal h. The in-plane
// axes are derived from h so that the result is always orthogonal.
func New(v, h v3.Vec, r1, r2 float64) Params {
	n, _ := kernel.Unit(h)
	a := kernel.OrthoVec(n)
	b := n.Cross(a)
	return Params{
		V:  v,
		H:  n.MulScalar(r2),
		A:  a.MulScalar(r1),
		B:  b.MulScalar(r1),
		R1: r1,
		R2: r2,
	}
}

// Validate checks the invariants shared by Prep and Export.
func (p Params) Validate() error {
	if p.R1 <= kernel.SmallFastf || p.R2 <= kernel.SmallFastf ||
		math.IsNaN(p.R1) || math.IsNaN(p.R2) {
		return kernel.Invalid(Kind, "TOR_RADIUS", "radii must be positive, r1=%g r2=%g", p.R1, p.R2)
	}
	if p.R2 > p.R1 {
		return kernel.Invalid(Kind, "TOR_RATIO", "minor radius %g exceeds major radius %g", p.R2, p.R1)
	}

	h, okH := kernel.Unit(p.H)
	a, okA := kernel.Unit(p.A)
	b, okB := kernel.Unit(p.B)
	switch {
	case !okH:
		return kernel.Invalid(Kind, "TOR_ZERO_VECTOR", "H is zero length")
	case !okA:
		return kernel.Invalid(Kind, "TOR_ZERO_VECTOR", "A is zero length")
	case !okB:
		return kernel.Invalid(Kind, "TOR_ZERO_VECTOR", "B is zero length")
	}

	if d := a.Dot(b); math.Abs(d) > kernel.DotTol {
		return kernel.Invalid(Kind, "TOR_NOT_ORTHOGONAL", "A.B = %g", d)
	}
	if d := a.Dot(h); math.Abs(d) > kernel.DotTol {
		return kernel.Invalid(Kind, "TOR_NOT_ORTHOGONAL", "A.H = %g", d)
	}
	if d := b.Dot(h); math.Abs(d) > kernel.DotTol {
		return kernel.Invalid(Kind, "TOR_NOT_ORTHOGONAL", "B.H = %g", d)
	}
	return nil
}

// Volume returns the enclosed volume, 2π²·R1·R2².
func (p Params) Volume() float64 {
	return 2 * math.Pi * math.Pi * p.R1 * p.R2 * p.R2
}

// Area returns the surface area, 4π²·R1·R2.
func (p Params) Area() float64 {
	return 4 * math.Pi * math.Pi * p.R1 * p.R2
}
