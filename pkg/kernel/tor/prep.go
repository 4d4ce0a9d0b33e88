package tor

import (
	"fmt"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Torus is a prepared torus. It is immutable; every method is safe for
// concurrent use.
type Torus struct {
	params Params
	opts   kernel.Options

	v     v3.Vec  // centre
	n     v3.Vec  // unit revolution normal
	r1    float64 // major radius
	r2    float64 // minor radius
	alpha float64 // r2/r1

	rot    kernel.Mat3 // world -> canonical orientation
	invRot kernel.Mat3
	sor    kernel.Mat3 // rotate then scale by 1/r1

	box    sdf.Box3
	radius float64 // bounding sphere about v
}

var _ kernel.Primitive = (*Torus)(nil)

// Prep validates p and builds the canonical frame in which the torus is
// centred at the origin with unit major radius and +Z as its axis.
func Prep(p Params, opts ...kernel.Option) (*Torus, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("tor: prep: %w", err)
	}

	n, _ := kernel.Unit(p.H)
	a, _ := kernel.Unit(p.A)
	b, _ := kernel.Unit(p.B)

	t := &Torus{
		params: p,
		opts:   kernel.NewOptions(opts...),
		v:      p.V,
		n:      n,
		r1:     p.R1,
		r2:     p.R2,
		alpha:  p.R2 / p.R1,
		rot:    kernel.RotationFromAxes(a, b, n),
	}
	t.invRot = t.rot.Transpose()
	t.sor = t.rot.Scale(1 / p.R1)

	// Bounds: the eight corners of the box that holds the tube.
	t.radius = p.R1 + p.R2
	ea := a.MulScalar(t.radius)
	eb := b.MulScalar(t.radius)
	eh := n.MulScalar(p.R2)
	corners := make([]v3.Vec, 0, 8)
	for _, sa := range []float64{-1, 1} {
		for _, sb := range []float64{-1, 1} {
			for _, sh := range []float64{-1, 1} {
				corners = append(corners, p.V.
					Add(ea.MulScalar(sa)).
					Add(eb.MulScalar(sb)).
					Add(eh.MulScalar(sh)))
			}
		}
	}
	t.box = kernel.BoxOf(corners...)

	return t, nil
}

func (t *Torus) Kind() string { return Kind }

// Params returns the description the torus was prepared from.
func (t *Torus) Params() Params { return t.params }

func (t *Torus) BoundingBox() sdf.Box3 { return t.box }

func (t *Torus) BoundingSphere() (v3.Vec, float64) { return t.v, t.radius }
