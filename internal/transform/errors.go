package transform

import (
	"errors"
	"fmt"

	"github.com/mohammed-shakir/crs-transform/internal/coords"
	"github.com/mohammed-shakir/crs-transform/internal/crs"
)

// Kinds of TransformationError, usable with errors.Is.
var (
	ErrNoTransformationPath   = errors.New("no transformation path")
	ErrTransformationExcluded = errors.New("transformation excluded")
	ErrAxisMismatch           = errors.New("axis mismatch")
	ErrEpochRequired          = errors.New("epoch required")
)

// TransformationError reports that no acceptable pipeline exists for a CRS
// pair. Source and Target are AUTH:CODE identifiers.
type TransformationError struct {
	Kind   error
	Source string
	Target string
	Reason string
}

func (e *TransformationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("transformation from %s to %s not possible: %v", e.Source, e.Target, e.Kind)
	}
	return fmt.Sprintf("transformation from %s to %s not possible: %s", e.Source, e.Target, e.Reason)
}

func (e *TransformationError) Unwrap() error { return e.Kind }

func newTransformationError(kind error, src, dst *crs.CRS, reason string) *TransformationError {
	return &TransformationError{Kind: kind, Source: src.AuthorityCode(), Target: dst.AuthorityCode(), Reason: reason}
}

// InvalidCoordinateError reports a transformed position with an infinite
// horizontal coordinate.
type InvalidCoordinateError struct {
	Position coords.Position
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("coordinates contain inf val: %v", []float64(e.Position))
}
