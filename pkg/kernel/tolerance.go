package kernel

import "github.com/chazu/toroid/pkg/roots"

const (
	// SmallFastf is the magnitude below which a length is treated as zero.
	SmallFastf = 1.0e-77
	// RadiusEps is the smallest accepted radius or semi-axis length.
	RadiusEps = 1.0e-4
	// DotTol bounds |cos| between two unit vectors that must be
	// perpendicular.
	DotTol = 1.0e-3
)

// Options are per-record numeric settings fixed at Prep time.
type Options struct {
	// ImagTol is the imaginary magnitude below which a quartic root is
	// treated as a real crossing.
	ImagTol float64
}

// Option configures Options.
type Option func(*Options)

// WithImagTol overrides the real-root acceptance tolerance. Non-positive
// values are ignored.
func WithImagTol(tol float64) Option {
	return func(o *Options) {
		if tol > 0 {
			o.ImagTol = tol
		}
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{ImagTol: roots.DefaultImagTol}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
