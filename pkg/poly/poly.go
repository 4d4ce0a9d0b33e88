// Package poly implements the small fixed-capacity polynomial algebra used
// by the intersection kernel. A Poly holds at most five coefficients, highest
// degree first, so every operation is a value operation with no allocation.
package poly

import (
	"errors"
	"fmt"
	"strings"
)

// MaxDegree is the largest degree a Poly can represent.
const MaxDegree = 4

var (
	// ErrDegree is returned when an operation would produce a polynomial of
	// degree greater than MaxDegree.
	ErrDegree = errors.New("poly: degree exceeds 4")
	// ErrEmpty is returned by New when no coefficients are given.
	ErrEmpty = errors.New("poly: no coefficients")
)

// Poly is a polynomial of degree 0..4. Coeffs[0] multiplies t^Degree and
// Coeffs[Degree] is the constant term; entries past Degree are zero.
type Poly struct {
	Degree int
	Coeffs [MaxDegree + 1]float64
}

// New builds a polynomial from coefficients given highest degree first.
func New(coeffs ...float64) (Poly, error) {
	if len(coeffs) == 0 {
		return Poly{}, ErrEmpty
	}
	if len(coeffs)-1 > MaxDegree {
		return Poly{}, fmt.Errorf("new: %d coefficients: %w", len(coeffs), ErrDegree)
	}
	var p Poly
	p.Degree = len(coeffs) - 1
	copy(p.Coeffs[:], coeffs)
	return p, nil
}

// MustNew is like New but panics on error. Intended for literals in tests
// and fixed tables.
func MustNew(coeffs ...float64) Poly {
	p, err := New(coeffs...)
	if err != nil {
		panic(err)
	}
	return p
}

// Mul returns a*b. The product degree is a.Degree+b.Degree and the call
// fails with ErrDegree rather than truncating when that exceeds 4.
func Mul(a, b Poly) (Poly, error) {
	var p Poly
	p.Degree = a.Degree + b.Degree
	if p.Degree > MaxDegree {
		return Poly{}, fmt.Errorf("mul: %d+%d: %w", a.Degree, b.Degree, ErrDegree)
	}
	for i := 0; i <= a.Degree; i++ {
		for j := 0; j <= b.Degree; j++ {
			p.Coeffs[i+j] += a.Coeffs[i] * b.Coeffs[j]
		}
	}
	return p, nil
}

// Add returns a+b. Coefficients are aligned on the constant term and the
// result takes the larger operand's degree.
func Add(a, b Poly) Poly {
	return combine(a, b, 1)
}

// Sub returns a-b with the same alignment rule as Add.
func Sub(a, b Poly) Poly {
	return combine(a, b, -1)
}

func combine(a, b Poly, sign float64) Poly {
	var p Poly
	if a.Degree >= b.Degree {
		p = a
		off := a.Degree - b.Degree
		for i := 0; i <= b.Degree; i++ {
			p.Coeffs[i+off] += sign * b.Coeffs[i]
		}
		return p
	}
	p.Degree = b.Degree
	off := b.Degree - a.Degree
	for i := 0; i <= b.Degree; i++ {
		p.Coeffs[i] = sign * b.Coeffs[i]
	}
	for i := 0; i <= a.Degree; i++ {
		p.Coeffs[i+off] += a.Coeffs[i]
	}
	return p
}

// Scale multiplies every coefficient of p by k in place.
func (p *Poly) Scale(k float64) {
	for i := 0; i <= p.Degree; i++ {
		p.Coeffs[i] *= k
	}
}

// Scaled returns a copy of p with every coefficient multiplied by k.
func (p Poly) Scaled(k float64) Poly {
	p.Scale(k)
	return p
}

// Eval evaluates p at x using Horner's rule.
func (p Poly) Eval(x float64) float64 {
	v := p.Coeffs[0]
	for i := 1; i <= p.Degree; i++ {
		v = v*x + p.Coeffs[i]
	}
	return v
}

// EvalComplex evaluates p at a complex argument.
func (p Poly) EvalComplex(z complex128) complex128 {
	v := complex(p.Coeffs[0], 0)
	for i := 1; i <= p.Degree; i++ {
		v = v*z + complex(p.Coeffs[i], 0)
	}
	return v
}

// Equal reports whether p and q have the same degree and coefficients
// within tol.
func (p Poly) Equal(q Poly, tol float64) bool {
	if p.Degree != q.Degree {
		return false
	}
	for i := 0; i <= p.Degree; i++ {
		d := p.Coeffs[i] - q.Coeffs[i]
		if d > tol || d < -tol {
			return false
		}
	}
	return true
}

func (p Poly) String() string {
	var sb strings.Builder
	for i := 0; i <= p.Degree; i++ {
		if i > 0 {
			sb.WriteString(" + ")
		}
		switch e := p.Degree - i; e {
		case 0:
			fmt.Fprintf(&sb, "%g", p.Coeffs[i])
		case 1:
			fmt.Fprintf(&sb, "%g*t", p.Coeffs[i])
		default:
			fmt.Fprintf(&sb, "%g*t^%d", p.Coeffs[i], e)
		}
	}
	return sb.String()
}
