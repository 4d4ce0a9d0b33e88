// Package roots solves quadratic, cubic and quartic equations in closed form.
//
// The solvers keep no state between calls. Floating-point faults that a
// trapping implementation would have to recover from (division by a zero
// leading coefficient, acos outside its domain, overflow in intermediate
// powers) are detected up front and reported through the ok result.
package roots

import (
	"math"

	"github.com/chazu/toroid/pkg/poly"
)

const (
	third        = 1.0 / 3.0
	sqrt3        = 1.7320508075688772
	invTwentySev = 1.0 / 27.0

	// residualEps is the relative tolerance used to decide which pairing
	// of quadratic factors reproduces the quartic's linear coefficient.
	residualEps = 1e-6
	// radicandEps is the relative amount by which a Ferrari radicand may
	// fall below zero and still be treated as zero.
	radicandEps = 1e-6
	// deltaEps is the relative width of the band around zero in which the
	// cubic discriminant is treated as exactly zero.
	deltaEps = 1e-12
)

var (
	maxCubeArg = math.Cbrt(math.MaxFloat64)
	maxSqrArg  = math.Sqrt(math.MaxFloat64)
)

// Quadratic returns both roots of p, which must have degree at most 2.
// When the discriminant is non-negative the roots are real with Im exactly
// zero; otherwise they are a conjugate pair. A zero leading coefficient
// degrades to the linear root reported twice. When both the quadratic and
// linear coefficients are zero there is no root and both results are NaN.
func Quadratic(p poly.Poly) [2]Complex {
	if p.Degree < 2 {
		p = poly.Add(poly.Poly{Degree: 2}, p)
	}
	a, b, c := p.Coeffs[0], p.Coeffs[1], p.Coeffs[2]
	if a == 0 {
		if b == 0 {
			nan := Complex{Re: math.NaN(), Im: math.NaN()}
			return [2]Complex{nan, nan}
		}
		r := Complex{Re: -c / b}
		return [2]Complex{r, r}
	}

	disc := b*b - 4*a*c
	denom := 0.5 / a
	if disc < 0 {
		re := -b * denom
		im := math.Sqrt(-disc) * denom
		return [2]Complex{{Re: re, Im: im}, {Re: re, Im: -im}}
	}

	rad := math.Sqrt(disc)
	var r1, r2 float64
	switch {
	case b == 0:
		r1 = rad * denom
		r2 = -rad * denom
	case b > 0:
		// Avoid cancellation between -b and rad.
		r1 = -2 * c / (b + rad)
		r2 = -(b + rad) * denom
	default:
		r1 = (-b + rad) * denom
		r2 = 2 * c / (-b + rad)
	}
	return [2]Complex{{Re: r2}, {Re: r1}}
}

// Cubic returns the three roots of the degree-3 polynomial p. ok is false
// when the coefficients are ill-conditioned enough that an intermediate
// value would leave the domain of sqrt, acos or cbrt, or overflow.
func Cubic(p poly.Poly) (rs [3]Complex, ok bool) {
	if p.Degree != 3 || p.Coeffs[0] == 0 || !finite(p) {
		return rs, false
	}
	c1 := p.Coeffs[1] / p.Coeffs[0]
	c2 := p.Coeffs[2] / p.Coeffs[0]
	c3 := p.Coeffs[3] / p.Coeffs[0]

	// Depressed form y^3 + a*y + b with x = y - c1/3.
	c13 := c1 * third
	a := c2 - c1*c13
	if math.Abs(a) > maxCubeArg {
		return rs, false
	}
	b := c3 + c13*(2*c13*c13-c2)
	if math.Abs(b) > maxSqrArg {
		return rs, false
	}

	bb := b * b * 0.25
	aaa := a * a * a * invTwentySev
	delta := bb + aaa
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return rs, false
	}

	switch {
	case math.Abs(delta) <= deltaEps*(bb+math.Abs(aaa)):
		// Repeated root.
		r := 2 * math.Cbrt(-0.5*b)
		rs[0] = Complex{Re: r}
		rs[1] = Complex{Re: -0.5 * r}
		rs[2] = rs[1]

	case delta > 0:
		rd := math.Sqrt(delta)
		A := math.Cbrt(-0.5*b + rd)
		B := math.Cbrt(-0.5*b - rd)
		rs[0] = Complex{Re: A + B}
		im := (A - B) * sqrt3 * 0.5
		rs[1] = Complex{Re: -0.5 * (A + B), Im: im}
		rs[2] = Complex{Re: -0.5 * (A + B), Im: -im}

	default:
		// Three distinct real roots, trigonometric method. delta < 0
		// implies a < 0.
		m := -a * third
		fact := math.Sqrt(m)
		f := -0.5 * b / (m * fact)
		if math.IsNaN(f) {
			return rs, false
		}
		// Clamp what rounding pushes just outside [-1, 1].
		f = math.Max(-1, math.Min(1, f))
		phi := math.Acos(f) * third
		sn, cs := math.Sincos(phi)
		sn3 := sn * sqrt3
		rs[0] = Complex{Re: 2 * fact * cs}
		rs[1] = Complex{Re: fact * (sn3 - cs)}
		rs[2] = Complex{Re: fact * (-sn3 - cs)}
	}

	for i := range rs {
		rs[i].Re -= c13
		if math.IsNaN(rs[i].Re) || math.IsInf(rs[i].Re, 0) {
			return rs, false
		}
	}
	return rs, true
}

// Quartic returns the four roots of the degree-4 polynomial p using
// Ferrari's reduction: a real root of the resolvent cubic splits the monic
// quartic into two monic quadratics. Of the two possible pairings of the
// quadratics' constant terms, the first whose product reproduces the linear
// coefficient within tolerance is used.
func Quartic(p poly.Poly) (rs [4]Complex, ok bool) {
	if p.Degree != 4 || p.Coeffs[0] == 0 || !finite(p) {
		return rs, false
	}
	c1 := p.Coeffs[1] / p.Coeffs[0]
	c2 := p.Coeffs[2] / p.Coeffs[0]
	c3 := p.Coeffs[3] / p.Coeffs[0]
	c4 := p.Coeffs[4] / p.Coeffs[0]

	resolvent := poly.MustNew(1, -c2, c3*c1-4*c4, -c3*c3-c4*c1*c1+4*c4*c2)
	u, ok := Cubic(resolvent)
	if !ok {
		return rs, false
	}

	var y float64
	if u[1].Im != 0 {
		y = u[0].Re
	} else {
		y = math.Max(u[0].Re, math.Max(u[1].Re, u[2].Re))
	}

	pp := c1*c1*0.25 + y - c2
	U := y * 0.5
	qq := U*U - c4

	var pOK, qOK bool
	if pp, pOK = clampRadicand(pp, 1+c1*c1*0.25+math.Abs(y)+math.Abs(c2)); !pOK {
		return rs, false
	}
	if qq, qOK = clampRadicand(qq, 1+U*U+math.Abs(c4)); !qOK {
		return rs, false
	}
	sp := math.Sqrt(pp)
	sq := math.Sqrt(qq)

	q1 := poly.Poly{Degree: 2, Coeffs: [5]float64{1, c1*0.5 - sp, U - sq}}
	q2 := poly.Poly{Degree: 2, Coeffs: [5]float64{1, c1*0.5 + sp, U + sq}}

	tol := residualEps * (1 + math.Abs(c1*U) + 2*math.Abs(sp*sq) + math.Abs(c3))
	if math.Abs(linearTerm(q1, q2)-c3) >= tol {
		q1.Coeffs[2], q2.Coeffs[2] = U+sq, U-sq
		if math.Abs(linearTerm(q1, q2)-c3) >= tol {
			return rs, false
		}
	}

	a := Quadratic(q1)
	b := Quadratic(q2)
	rs = [4]Complex{a[0], a[1], b[0], b[1]}
	for _, r := range rs {
		if math.IsNaN(r.Re) || math.IsNaN(r.Im) || math.IsInf(r.Re, 0) || math.IsInf(r.Im, 0) {
			return rs, false
		}
	}
	return rs, true
}

// linearTerm is the t coefficient of the product of two monic quadratics.
func linearTerm(a, b poly.Poly) float64 {
	return a.Coeffs[1]*b.Coeffs[2] + a.Coeffs[2]*b.Coeffs[1]
}

// clampRadicand maps slightly negative values, relative to scale, to zero
// and rejects anything more negative.
func clampRadicand(v, scale float64) (float64, bool) {
	if v >= 0 {
		return v, true
	}
	if v > -radicandEps*scale {
		return 0, true
	}
	return v, false
}

func finite(p poly.Poly) bool {
	for i := 0; i <= p.Degree; i++ {
		if math.IsNaN(p.Coeffs[i]) || math.IsInf(p.Coeffs[i], 0) {
			return false
		}
	}
	return true
}
