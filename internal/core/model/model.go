// Package model defines the request types shared by the router and the API.
package model

// TransformRequest holds the CRS parameters of a transform call. Source and
// Target are the raw identifiers as sent (AUTH:CODE, URI or URN); Source
// may be empty for a POST whose body names its own CRS.
type TransformRequest struct {
	Source string
	Target string
	Epoch  *float64
}

// PointRequest is a GET /transform call for a single position.
type PointRequest struct {
	TransformRequest
	Coordinates []float64
}
