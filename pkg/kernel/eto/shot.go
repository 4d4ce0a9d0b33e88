package eto

import (
	"log/slog"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/chazu/toroid/pkg/poly"
	"github.com/chazu/toroid/pkg/roots"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shot intersects r with the elliptical torus. The count is the number of
// real roots (0, 2 or 4).
//
// With ρ = sqrt(x²+y²) the canonical surface is A1(t)·ρ + A2(t) = 0, where
// A1 is linear and A2 quadratic in t. Moving A2 across and squaring gives
// the quartic A1²·(x²+y²) - A2² = 0. The squared form also admits the
// ellipse mirrored through the axis, which the self-overlap check keeps
// away from the real surface.
func (e *EllTorus) Shot(r kernel.Ray) ([]kernel.Segment, int) {
	pprime := e.sor.MulVec(r.Origin.Sub(e.v))
	dprime, ok := kernel.Unit(e.sor.MulVec(r.Dir))
	if !ok {
		return nil, 0
	}

	corProj := -pprime.Dot(dprime)
	p := pprime.Add(dprime.MulScalar(corProj))

	eq, err := e.equation(p, dprime)
	if err != nil {
		kernel.Logger().Debug("eto: equation build failed", slog.Any("err", err))
		return nil, 0
	}

	rs, ok := roots.Quartic(eq)
	if !ok {
		kernel.Logger().Debug("eto: quartic solve failed", slog.String("poly", eq.String()))
		return nil, 0
	}

	k := roots.Reals(rs[:], e.opts.ImagTol)
	for i := range k {
		k[i] += corProj
	}

	segs := kernel.PairRoots(Kind, eq, k, func(d float64) kernel.Hit {
		return kernel.Hit{
			Dist:      d * e.r,
			Canonical: pprime.Add(dprime.MulScalar(d)),
		}
	})
	if segs == nil {
		return nil, 0
	}
	return segs, len(k)
}

func (e *EllTorus) equation(p, d v3.Vec) (poly.Poly, error) {
	rc2 := e.crc * e.crc
	rd2 := e.crd * e.crd

	// x² + y²
	p2 := poly.MustNew(
		d.X*d.X+d.Y*d.Y,
		2*(p.X*d.X+p.Y*d.Y),
		p.X*p.X+p.Y*p.Y,
	)
	// The parts of the major and minor coordinates that do not involve ρ.
	sv := poly.MustNew(e.ev*d.Z, e.ev*p.Z-e.eu)
	qv := poly.MustNew(e.fv*d.Z, e.fv*p.Z-e.fu)

	a1 := poly.Add(sv.Scaled(2*e.eu/rc2), qv.Scaled(2*e.fu/rd2))

	sv2, err := poly.Mul(sv, sv)
	if err != nil {
		return poly.Poly{}, err
	}
	qv2, err := poly.Mul(qv, qv)
	if err != nil {
		return poly.Poly{}, err
	}
	k1 := e.eu*e.eu/rc2 + e.fu*e.fu/rd2
	a2 := poly.Add(poly.Add(p2.Scaled(k1), sv2.Scaled(1/rc2)), qv2.Scaled(1/rd2))
	a2.Coeffs[a2.Degree] -= 1

	a1sq, err := poly.Mul(a1, a1)
	if err != nil {
		return poly.Poly{}, err
	}
	lhs, err := poly.Mul(a1sq, p2)
	if err != nil {
		return poly.Poly{}, err
	}
	rhs, err := poly.Mul(a2, a2)
	if err != nil {
		return poly.Poly{}, err
	}
	return poly.Sub(lhs, rhs), nil
}
