package scene

import (
	"fmt"
	"math"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/chazu/toroid/pkg/kernel/sdfx"
	"github.com/deadsy/sdfx/sdf"
)

// ValidationSeverity indicates whether a finding means the scene's results
// cannot be trusted or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // results are wrong
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Name     string // primitive name (empty if scene-level)
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Name, e.Message)
}

// Validate runs the static checks. It never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateBounds(s)...)
	errs = append(errs, validateOverlaps(s)...)
	return errs
}

// validateBounds flags boxes with non-finite or inverted extents.
func validateBounds(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, e := range s.Entries() {
		b := e.Prim.BoundingBox()
		for _, x := range []float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				errs = append(errs, ValidationError{
					Name:     e.Name,
					Message:  fmt.Sprintf("bounding box %v is not finite", b),
					Severity: SeverityError,
				})
				break
			}
		}
		if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
			errs = append(errs, ValidationError{
				Name:     e.Name,
				Message:  fmt.Sprintf("bounding box %v is inverted", b),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateOverlaps warns about primitives whose boxes intersect. Segments
// from overlapping solids are reported separately, not merged.
func validateOverlaps(s *Scene) []ValidationError {
	var warns []ValidationError
	entries := s.Entries()
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if boxesOverlap(a.Prim.BoundingBox(), b.Prim.BoundingBox()) {
				warns = append(warns, ValidationError{
					Name:     a.Name,
					Message:  fmt.Sprintf("bounding box overlaps %q", b.Name),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return warns
}

func boxesOverlap(a, b sdf.Box3) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}

// CrossCheck shoots rays at every primitive and compares the hits against
// the primitive's signed-distance reference. Hits closer together than
// 2*delta are skipped since the probes cannot separate them.
func CrossCheck(s *Scene, rays []kernel.Ray, delta float64) []ValidationError {
	var errs []ValidationError
	for _, e := range s.Entries() {
		ref, err := sdfx.For(e.Prim)
		if err != nil {
			errs = append(errs, ValidationError{Name: e.Name, Message: err.Error(), Severity: SeverityWarning})
			continue
		}
		for _, r := range rays {
			segs, _ := e.Prim.Shot(r)
			if !resolvable(segs, 2*delta) {
				continue
			}
			if err := ref.Straddles(r, segs, delta); err != nil {
				errs = append(errs, ValidationError{
					Name:     e.Name,
					Message:  err.Error(),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func resolvable(segs []kernel.Segment, gap float64) bool {
	var d []float64
	for _, s := range segs {
		d = append(d, s.In.Dist, s.Out.Dist)
	}
	for i := 1; i < len(d); i++ {
		for j := 0; j < i; j++ {
			if math.Abs(d[i]-d[j]) < gap {
				return false
			}
		}
	}
	return true
}
