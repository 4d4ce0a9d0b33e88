package tor

import (
	"log/slog"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/chazu/toroid/pkg/poly"
	"github.com/chazu/toroid/pkg/roots"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shot intersects r with the torus. The count is the number of real roots
// (0, 2 or 4).
//
// In the canonical frame the surface is
//
//	(x² + y² + z² + 1 - α²)² - 4(x² + y²) = 0
//
// The ray is first moved to its point of closest approach to the origin so
// the quartic's coefficients stay well scaled.
func (t *Torus) Shot(r kernel.Ray) ([]kernel.Segment, int) {
	pprime := t.sor.MulVec(r.Origin.Sub(t.v))
	dprime, ok := kernel.Unit(t.sor.MulVec(r.Dir))
	if !ok {
		return nil, 0
	}

	corProj := -pprime.Dot(dprime)
	p := pprime.Add(dprime.MulScalar(corProj))

	eq, err := t.equation(p, dprime)
	if err != nil {
		kernel.Logger().Debug("tor: equation build failed", slog.Any("err", err))
		return nil, 0
	}

	rs, ok := roots.Quartic(eq)
	if !ok {
		kernel.Logger().Debug("tor: quartic solve failed", slog.String("poly", eq.String()))
		return nil, 0
	}

	k := roots.Reals(rs[:], t.opts.ImagTol)
	for i := range k {
		k[i] += corProj
	}

	segs := kernel.PairRoots(Kind, eq, k, func(d float64) kernel.Hit {
		return kernel.Hit{
			Dist:      d * t.r1,
			Canonical: pprime.Add(dprime.MulScalar(d)),
		}
	})
	if segs == nil {
		return nil, 0
	}
	return segs, len(k)
}

// equation substitutes X = p + s·d (|d| = 1) into the canonical torus.
func (t *Torus) equation(p, d v3.Vec) (poly.Poly, error) {
	// |X|² + 1 - α²
	sum := poly.MustNew(
		1,
		2*p.Dot(d),
		p.Dot(p)+1-t.alpha*t.alpha,
	)
	// x² + y²
	rho2 := poly.MustNew(
		d.X*d.X+d.Y*d.Y,
		2*(p.X*d.X+p.Y*d.Y),
		p.X*p.X+p.Y*p.Y,
	)
	sq, err := poly.Mul(sum, sum)
	if err != nil {
		return poly.Poly{}, err
	}
	return poly.Sub(sq, rho2.Scaled(4)), nil
}
