package kernel

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mat3 is a row-major 3x3 matrix acting on column vectors.
type Mat3 struct {
	M [3][3]float64
}

// Identity3 returns the 3x3 identity.
func Identity3() Mat3 {
	return Mat3{M: [3][3]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}}
}

// RotationFromAxes returns the matrix whose rows are a, b and n. When the
// three are orthonormal it maps world directions into the frame where a, b
// and n become X, Y and Z.
func RotationFromAxes(a, b, n v3.Vec) Mat3 {
	return Mat3{M: [3][3]float64{
		{a.X, a.Y, a.Z},
		{b.X, b.Y, b.Z},
		{n.X, n.Y, n.Z},
	}}
}

// MulVec returns m*v.
func (m Mat3) MulVec(v v3.Vec) v3.Vec {
	return v3.Vec{
		X: m.M[0][0]*v.X + m.M[0][1]*v.Y + m.M[0][2]*v.Z,
		Y: m.M[1][0]*v.X + m.M[1][1]*v.Y + m.M[1][2]*v.Z,
		Z: m.M[2][0]*v.X + m.M[2][1]*v.Y + m.M[2][2]*v.Z,
	}
}

// Transpose returns m^T, the inverse of a rotation.
func (m Mat3) Transpose() Mat3 {
	var t Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			t.M[r][c] = m.M[c][r]
		}
	}
	return t
}

// Scale returns k*m.
func (m Mat3) Scale(k float64) Mat3 {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.M[r][c] *= k
		}
	}
	return m
}

// Row returns row i as a vector.
func (m Mat3) Row(i int) v3.Vec {
	return v3.Vec{X: m.M[i][0], Y: m.M[i][1], Z: m.M[i][2]}
}

// OrthoVec returns a unit vector perpendicular to v. The component of v
// closest to zero is dropped and the remaining two are swapped with a sign
// flip, so the result depends only on v's direction. A zero v yields zero.
func OrthoVec(v v3.Vec) v3.Vec {
	in := [3]float64{v.X, v.Y, v.Z}
	i, j, k := 0, 1, 2
	f := math.Abs(in[0])
	if math.Abs(in[1]) < f {
		f = math.Abs(in[1])
		i, j, k = 1, 2, 0
	}
	if math.Abs(in[2]) < f {
		i, j, k = 2, 0, 1
	}
	f = math.Hypot(in[j], in[k])
	if f == 0 {
		return v3.Vec{}
	}
	var out [3]float64
	out[i] = 0
	out[j] = -in[k] / f
	out[k] = in[j] / f
	return v3.Vec{X: out[0], Y: out[1], Z: out[2]}
}

// Unit returns v normalised, and false when v is too short to normalise.
func Unit(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l < SmallFastf {
		return v3.Vec{}, false
	}
	return v.DivScalar(l), true
}

// Near reports whether a and b differ by no more than tol per component.
func Near(a, b v3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// LinearPart applies the linear part of a point transform to a direction.
func LinearPart(mul func(v3.Vec) v3.Vec, v v3.Vec) v3.Vec {
	return mul(v).Sub(mul(v3.Vec{}))
}
