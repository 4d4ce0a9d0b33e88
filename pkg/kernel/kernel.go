// Package kernel defines the shared vocabulary of the intersection kernel:
// rays, hits, segments and the Primitive capability interface that every
// solid family (tor, eto) implements. A prepared Primitive is immutable, so
// one instance may be shot from any number of goroutines.
package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec
}

// NewRay returns a ray from origin along dir, normalising dir.
func NewRay(origin, dir v3.Vec) Ray {
	return Ray{Origin: origin, Dir: dir.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) v3.Vec {
	return r.Origin.Add(r.Dir.MulScalar(t))
}

// Hit is one ray/surface crossing. Canonical is the crossing expressed in the
// primitive's canonical frame; it is computed once by Shot and reused by the
// post-hit queries.
type Hit struct {
	Dist      float64
	Canonical v3.Vec
}

// Point returns the world-space point of h along r.
func (h Hit) Point(r Ray) v3.Vec {
	return r.At(h.Dist)
}

// Segment is an entry/exit pair with In.Dist < Out.Dist.
type Segment struct {
	In  Hit
	Out Hit
}

// Curvature holds the principal curvatures at a hit. C1 is the curvature
// with the smaller magnitude and PDir its unit world-space tangent; C2 is
// the curvature across PDir. Convex bending away from the normal is
// negative.
type Curvature struct {
	PDir v3.Vec
	C1   float64
	C2   float64
}

// UV is a surface parametrisation in [0, 1] x [0, 1].
type UV struct {
	U, V float64
}

// Primitive is implemented by every prepared solid.
type Primitive interface {
	// Kind returns the short family name ("tor", "eto").
	Kind() string

	// Shot intersects r with the solid. It returns zero, one or two
	// segments and the number of real roots found (0, 2 or 4). Numerical
	// failures are logged and reported as a miss.
	Shot(r Ray) ([]Segment, int)

	// Post-hit queries. h must come from a Shot of the same ray.
	Normal(r Ray, h Hit) v3.Vec
	Curvature(r Ray, h Hit) Curvature
	UV(r Ray, h Hit) UV

	// Bounds
	BoundingBox() sdf.Box3
	BoundingSphere() (center v3.Vec, radius float64)
}
