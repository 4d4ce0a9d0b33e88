package tor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BlockSize is the length of a packed torus: V(3) H(3) r1 r2 as
// big-endian float64s.
const BlockSize = 8 * 8

// Import decodes a packed torus and applies mat. H is expected to be unit
// length on disk; radii are scaled by the uniform scale of mat, measured
// from its effect on H. A and B are regenerated from H.
func Import(block []byte, mat sdf.M44) (Params, error) {
	if len(block) != BlockSize {
		return Params{}, fmt.Errorf("tor: import: %w: got %d bytes, want %d",
			kernel.ErrBlockSize, len(block), BlockSize)
	}
	var f [8]float64
	for i := range f {
		f[i] = math.Float64frombits(binary.BigEndian.Uint64(block[i*8:]))
	}
	v := v3.Vec{X: f[0], Y: f[1], Z: f[2]}
	h := v3.Vec{X: f[3], Y: f[4], Z: f[5]}
	r1, r2 := f[6], f[7]

	hl := h.Length()
	if hl < kernel.SmallFastf {
		return Params{}, fmt.Errorf("tor: import: %w",
			kernel.Invalid(Kind, "TOR_ZERO_VECTOR", "H is zero length"))
	}
	hw := kernel.LinearPart(mat.MulPosition, h)
	scale := hw.Length() / hl

	p := New(mat.MulPosition(v), hw, r1*scale, r2*scale)
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("tor: import: %w", err)
	}
	return p, nil
}

// Export validates p and packs it, converting lengths with local2mm.
func Export(p Params, local2mm float64) ([]byte, error) {
	if local2mm <= 0 || math.IsNaN(local2mm) {
		return nil, fmt.Errorf("tor: export: bad unit scale %g", local2mm)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("tor: export: %w", err)
	}
	n, _ := kernel.Unit(p.H)
	v := p.V.MulScalar(local2mm)

	f := [8]float64{
		v.X, v.Y, v.Z,
		n.X, n.Y, n.Z,
		p.R1 * local2mm,
		p.R2 * local2mm,
	}
	block := make([]byte, BlockSize)
	for i, x := range f {
		binary.BigEndian.PutUint64(block[i*8:], math.Float64bits(x))
	}
	return block, nil
}
