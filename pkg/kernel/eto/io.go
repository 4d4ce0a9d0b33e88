package eto

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BlockSize is the length of a packed elliptical torus: V(3) N(3) C(3) r rd
// as big-endian float64s.
const BlockSize = 11 * 8

// Import decodes a packed elliptical torus and applies mat.
func Import(block []byte, mat sdf.M44) (Params, error) {
	if len(block) != BlockSize {
		return Params{}, fmt.Errorf("eto: import: %w: got %d bytes, want %d",
			kernel.ErrBlockSize, len(block), BlockSize)
	}
	var f [11]float64
	for i := range f {
		f[i] = math.Float64frombits(binary.BigEndian.Uint64(block[i*8:]))
	}
	v := v3.Vec{X: f[0], Y: f[1], Z: f[2]}
	n := v3.Vec{X: f[3], Y: f[4], Z: f[5]}
	c := v3.Vec{X: f[6], Y: f[7], Z: f[8]}

	nl := n.Length()
	if nl < kernel.SmallFastf {
		return Params{}, fmt.Errorf("eto: import: %w",
			kernel.Invalid(Kind, "ETO_ZERO_LENGTH", "N is zero length"))
	}
	nw := kernel.LinearPart(mat.MulPosition, n)
	scale := nw.Length() / nl

	p := New(mat.MulPosition(v), nw, kernel.LinearPart(mat.MulPosition, c), f[9]*scale, f[10]*scale)
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("eto: import: %w", err)
	}
	return p, nil
}

// Export validates p and packs it, converting lengths with local2mm. A
// semi-minor length greater than |C| is rejected.
func Export(p Params, local2mm float64) ([]byte, error) {
	if local2mm <= 0 || math.IsNaN(local2mm) {
		return nil, fmt.Errorf("eto: export: bad unit scale %g", local2mm)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("eto: export: %w", err)
	}
	if rc := p.C.Length(); p.RD > rc {
		return nil, fmt.Errorf("eto: export: %w",
			kernel.Invalid(Kind, "ETO_MINOR_EXCEEDS_MAJOR", "rd = %g > |C| = %g", p.RD, rc))
	}

	n, _ := kernel.Unit(p.N)
	v := p.V.MulScalar(local2mm)
	c := p.C.MulScalar(local2mm)
	f := [11]float64{
		v.X, v.Y, v.Z,
		n.X, n.Y, n.Z,
		c.X, c.Y, c.Z,
		p.R * local2mm,
		p.RD * local2mm,
	}
	block := make([]byte, BlockSize)
	for i, x := range f {
		binary.BigEndian.PutUint64(block[i*8:], math.Float64bits(x))
	}
	return block, nil
}
