// Package geodesy defines the contract of the geodetic transform provider:
// the component that knows CRS definitions and can build candidate
// transformation pipelines between two of them.
package geodesy

import "github.com/mohammed-shakir/crs-transform/internal/crs"

// Operation type names as reported for pipeline steps.
const (
	OpTransformation = "Transformation"
	OpConversion     = "Conversion"
	OpOther          = "Other Coordinate Operation"
)

// Operation describes one step of a pipeline.
type Operation struct {
	Name       string
	Type       string
	MethodCode string
	// RefEpoch is the reference epoch of a concatenated operation, zero when
	// the step has none.
	RefEpoch float64
}

// Pipeline maps coordinate tuples from Source to Target. Input is
// (x, y[, z][, t]) with x/longitude first; output carries at least x, y, z
// (z is zero or +Inf when unavailable), followed by t when it was supplied.
// Pipelines are immutable and safe for repeated use.
type Pipeline interface {
	Source() *crs.CRS
	Target() *crs.CRS
	Operations() []Operation
	Transform(in []float64) []float64
}

// Provider resolves CRS identifiers and lists candidate pipelines, best
// ranked first.
type Provider interface {
	Lookup(id string) (*crs.CRS, error)
	Candidates(src, dst *crs.CRS) ([]Pipeline, error)
	List() []*crs.CRS
}
