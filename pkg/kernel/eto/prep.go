package eto

import (
	"fmt"
	"math"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// EllTorus is a prepared elliptical torus. Immutable and safe for
// concurrent use.
//
// The canonical frame puts V at the origin, N on +Z and the in-plane part
// of C on +X, and scales by 1/R so the revolution radius is 1.
type EllTorus struct {
	params Params
	opts   kernel.Options

	v  v3.Vec
	n  v3.Vec
	r  float64
	rc float64 // |C|
	rd float64

	// Cross-section lengths in canonical units.
	crc, crd float64
	blend

	rot    kernel.Mat3
	invRot kernel.Mat3
	sor    kernel.Mat3

	box    sdf.Box3
	radius float64
}

var _ kernel.Primitive = (*EllTorus)(nil)

func Prep(p Params, opts ...kernel.Option) (*EllTorus, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("eto: prep: %w", err)
	}

	n, _ := kernel.Unit(p.N)
	a, ok := kernel.Unit(p.C.Sub(n.MulScalar(p.C.Dot(n))))
	if !ok {
		a = kernel.OrthoVec(n)
	}
	b := n.Cross(a)

	e := &EllTorus{
		params: p,
		opts:   kernel.NewOptions(opts...),
		v:      p.V,
		n:      n,
		r:      p.R,
		rc:     p.C.Length(),
		rd:     p.RD,
		blend:  blendOf(n, p.C),
		rot:    kernel.RotationFromAxes(a, b, n),
	}
	e.crc = e.rc / e.r
	e.crd = e.rd / e.r
	e.invRot = e.rot.Transpose()
	e.sor = e.rot.Scale(1 / e.r)
	e.radius = e.r + math.Max(e.rc, e.rd)
	e.box = e.bounds()
	return e, nil
}

// bounds evaluates, per world axis, the extreme projection of the swept
// ellipse.
func (e *EllTorus) bounds() sdf.Box3 {
	var lo, hi [3]float64
	for i, w := range []v3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		wn := w.Dot(e.n)
		h := math.Sqrt(math.Max(0, 1-wn*wn))
		hi[i] = h*e.r + math.Sqrt(
			sq(e.rc*(h*e.eu+wn*e.ev))+sq(e.rd*(h*e.fu+wn*e.fv)))
		lo[i] = -(h*e.r + math.Sqrt(
			sq(e.rc*(h*e.eu-wn*e.ev))+sq(e.rd*(h*e.fu-wn*e.fv))))
	}
	return sdf.Box3{
		Min: e.v.Add(v3.Vec{X: lo[0], Y: lo[1], Z: lo[2]}),
		Max: e.v.Add(v3.Vec{X: hi[0], Y: hi[1], Z: hi[2]}),
	}
}

func sq(x float64) float64 { return x * x }

func (e *EllTorus) Kind() string { return Kind }

func (e *EllTorus) Params() Params { return e.params }

func (e *EllTorus) BoundingBox() sdf.Box3 { return e.box }

func (e *EllTorus) BoundingSphere() (v3.Vec, float64) { return e.v, e.radius }
