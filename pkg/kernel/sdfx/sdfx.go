// Package sdfx builds signed-distance reference solids for the closed-form
// primitives using the github.com/deadsy/sdfx SDF library. They are used to
// cross-check Shot results and to tessellate previews.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/chazu/toroid/pkg/kernel/eto"
	"github.com/chazu/toroid/pkg/kernel/tor"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// Reference is an SDF stand-in for a prepared primitive. Evaluate is
// negative inside, positive outside. For the elliptical torus the value is
// not a true distance, only its sign is exact.
type Reference struct {
	name string
	s    sdf.SDF3
}

// Evaluate returns the signed distance estimate at p.
func (r *Reference) Evaluate(p v3.Vec) float64 {
	return r.s.Evaluate(p)
}

// BoundingBox returns the SDF's bounding box.
func (r *Reference) BoundingBox() sdf.Box3 {
	return r.s.BoundingBox()
}

// Torus returns the reference solid for p.
func Torus(p tor.Params) (*Reference, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("sdfx: torus: %w", err)
	}
	c, err := sdf.Circle2D(p.R2)
	if err != nil {
		return nil, fmt.Errorf("sdfx: torus: %w", err)
	}
	section := sdf.Transform2D(c, sdf.Translate2d(v2.Vec{X: p.R1}))
	s, err := sdf.Revolve3D(section)
	if err != nil {
		return nil, fmt.Errorf("sdfx: torus: %w", err)
	}
	return &Reference{name: tor.Kind, s: sdf.Transform3D(s, placement(p.V, p.H))}, nil
}

// EllTorus returns the reference solid for p.
func EllTorus(p eto.Params) (*Reference, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("sdfx: eto: %w", err)
	}
	n, _ := kernel.Unit(p.N)
	rc := p.C.Length()
	ev := math.Max(-1, math.Min(1, p.C.Dot(n)/rc))
	eu := math.Sqrt(1 - ev*ev)

	c, err := sdf.Circle2D(1)
	if err != nil {
		return nil, fmt.Errorf("sdfx: eto: %w", err)
	}
	// Unit circle -> ellipse -> tilt toward N -> out to the revolution radius.
	m := sdf.Translate2d(v2.Vec{X: p.R}).
		Mul(sdf.Rotate2d(math.Atan2(ev, eu))).
		Mul(sdf.Scale2d(v2.Vec{X: rc, Y: p.RD}))
	s, err := sdf.Revolve3D(sdf.Transform2D(c, m))
	if err != nil {
		return nil, fmt.Errorf("sdfx: eto: %w", err)
	}
	return &Reference{name: eto.Kind, s: sdf.Transform3D(s, placement(p.V, n))}, nil
}

// placement maps the +Z-axis revolution frame onto a solid centred at v
// with axis n.
func placement(v, n v3.Vec) sdf.M44 {
	z := v3.Vec{Z: 1}
	n, _ = kernel.Unit(n)
	axis := z.Cross(n)
	angle := math.Acos(math.Max(-1, math.Min(1, z.Dot(n))))
	if axis.Length() < 1e-12 {
		axis = v3.Vec{X: 1}
	}
	return sdf.Translate3d(v).Mul(sdf.Rotate3d(axis.Normalize(), angle))
}

// For builds the reference solid for a prepared primitive.
func For(p kernel.Primitive) (*Reference, error) {
	switch x := p.(type) {
	case *tor.Torus:
		return Torus(x.Params())
	case *eto.EllTorus:
		return EllTorus(x.Params())
	case nil:
		return nil, fmt.Errorf("sdfx: nil primitive")
	default:
		return nil, fmt.Errorf("sdfx: no reference for %q", p.Kind())
	}
}

// ---------------------------------------------------------------------------
// Cross-checking
// ---------------------------------------------------------------------------

// Straddles reports an error unless the reference changes sign across every
// hit in segs: outside just before each entry, inside just after it, and the
// reverse at each exit. delta is the probe offset along the ray.
func (r *Reference) Straddles(ray kernel.Ray, segs []kernel.Segment, delta float64) error {
	for i, s := range segs {
		before, after := r.Evaluate(ray.At(s.In.Dist-delta)), r.Evaluate(ray.At(s.In.Dist+delta))
		if before < 0 || after > 0 {
			return fmt.Errorf("sdfx: %s: segment %d entry at %g: sdf %g -> %g",
				r.name, i, s.In.Dist, before, after)
		}
		before, after = r.Evaluate(ray.At(s.Out.Dist-delta)), r.Evaluate(ray.At(s.Out.Dist+delta))
		if before > 0 || after < 0 {
			return fmt.Errorf("sdfx: %s: segment %d exit at %g: sdf %g -> %g",
				r.name, i, s.Out.Dist, before, after)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tessellation
// ---------------------------------------------------------------------------

// ToMesh converts the reference solid to a triangle mesh using marching
// cubes. cells <= 0 selects DefaultMeshCells.
func (r *Reference) ToMesh(cells int) (*kernel.Mesh, error) {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(r.s, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: %s: tessellation produced no triangles", r.name)
	}

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Name:     r.name,
	}, nil
}
