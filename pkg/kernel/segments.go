package kernel

import (
	"log/slog"
	"slices"

	"github.com/chazu/toroid/pkg/poly"
)

// SortDescending sorts k in place, most distant first.
func SortDescending(k []float64) {
	slices.Sort(k)
	slices.Reverse(k)
}

// PairRoots turns the real roots of a closed surface's quartic into hit
// segments. k must hold 2 or 4 distances; it is sorted most distant first
// and paired as (k[1], k[0]) and then (k[3], k[2]). mk builds the Hit for a
// distance. Any other count is reported through the kernel logger and
// yields nil.
func PairRoots(kind string, eq poly.Poly, k []float64, mk func(t float64) Hit) []Segment {
	switch len(k) {
	case 0:
		return nil
	case 2, 4:
	default:
		Logger().Warn(kind+": reduced 4 roots", slog.Int("roots", len(k)),
			slog.Any("dists", k), slog.String("poly", eq.String()))
		return nil
	}

	SortDescending(k)
	segs := make([]Segment, 0, len(k)/2)
	segs = append(segs, Segment{In: mk(k[1]), Out: mk(k[0])})
	if len(k) == 4 {
		segs = append(segs, Segment{In: mk(k[3]), Out: mk(k[2])})
	}
	return segs
}
