package roots

import (
	"fmt"
	"math"
)

// DefaultImagTol is the imaginary-part magnitude below which a root is
// accepted as real by Reals.
const DefaultImagTol = 1e-4

// Complex is a root as returned by the solvers.
type Complex struct {
	Re, Im float64
}

// IsReal reports whether |c.Im| < tol.
func (c Complex) IsReal(tol float64) bool {
	return math.Abs(c.Im) < tol
}

// C128 converts c to the builtin complex type.
func (c Complex) C128() complex128 {
	return complex(c.Re, c.Im)
}

func (c Complex) String() string {
	if c.Im < 0 {
		return fmt.Sprintf("%g - %gi", c.Re, -c.Im)
	}
	return fmt.Sprintf("%g + %gi", c.Re, c.Im)
}

// Reals returns the real parts of the roots whose imaginary part is below
// tol, preserving input order.
func Reals(rs []Complex, tol float64) []float64 {
	out := make([]float64, 0, len(rs))
	for _, r := range rs {
		if r.IsReal(tol) {
			out = append(out, r.Re)
		}
	}
	return out
}
