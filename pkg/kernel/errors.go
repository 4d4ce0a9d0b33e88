package kernel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid is the root of every geometry validation failure.
	ErrInvalid = errors.New("invalid geometry")
	// ErrBlockSize is returned when a packed parameter block has the wrong
	// length for its solid family.
	ErrBlockSize = errors.New("wrong parameter block size")
)

// GeometryError reports which geometric invariant a solid violates. It is
// returned by Prep and Export; the solid is never partially prepared.
type GeometryError struct {
	Kind    string // solid family, e.g. "tor"
	Code    string // stable identifier, e.g. "TOR_NOT_ORTHOGONAL"
	Message string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Code, e.Message)
}

// Unwrap lets callers test for ErrInvalid with errors.Is.
func (e *GeometryError) Unwrap() error {
	return ErrInvalid
}

// Invalid builds a GeometryError with a formatted message.
func Invalid(kind, code, format string, args ...any) *GeometryError {
	return &GeometryError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}
