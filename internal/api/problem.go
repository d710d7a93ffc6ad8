package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mohammed-shakir/crs-transform/internal/cityjson"
	"github.com/mohammed-shakir/crs-transform/internal/core/problem"
	"github.com/mohammed-shakir/crs-transform/internal/core/router"
	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/geojsoncrs"
	"github.com/mohammed-shakir/crs-transform/internal/transform"
)

func unknownCRS(detail string, status int) *problem.Problem {
	return &problem.Problem{Type: "unknown-crs", Title: "Crs Not Found", Status: status, Detail: detail}
}

// problemFor maps an error of the transform path onto its problem document.
func problemFor(err error) *problem.Problem {
	var (
		p   *problem.Problem
		te  *transform.TransformationError
		ice *transform.InvalidCoordinateError
		mbe *http.MaxBytesError
		syn *json.SyntaxError
		typ *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &p):
		return p
	case errors.As(err, &te):
		return &problem.Problem{
			Type:      "nsgi.nl/transformation-not-possible",
			Title:     "Transformation Not Possible",
			Status:    http.StatusBadRequest,
			Detail:    te.Error(),
			SourceCRS: te.Source,
			TargetCRS: te.Target,
		}
	case errors.As(err, &ice):
		return &problem.Problem{
			Type:   "nsgi.nl/response-validation-error",
			Title:  "Response Validation Error",
			Status: http.StatusInternalServerError,
			Detail: "Out of range float values are not JSON compliant: " + ice.Error(),
		}
	case errors.As(err, &mbe):
		return &problem.Problem{
			Type:   "about:blank",
			Title:  "Content Too Large",
			Status: http.StatusRequestEntityTooLarge,
			Detail: "request body exceeds the maximum size",
		}
	case errors.Is(err, crs.ErrUnknownCRS), errors.Is(err, crs.ErrInvalidID):
		return unknownCRS(err.Error(), http.StatusBadRequest)
	case errors.Is(err, router.ErrMissingSource),
		errors.Is(err, router.ErrMissingTarget),
		errors.Is(err, cityjson.ErrInvalidCRSIdentifier),
		errors.Is(err, cityjson.ErrMissingMetadata),
		errors.Is(err, cityjson.ErrMissingTransform),
		errors.Is(err, geojsoncrs.ErrUnsupportedType),
		errors.Is(err, geojsoncrs.ErrInvalidCRS):
		return problem.BadRequest(err.Error())
	case errors.As(err, &syn), errors.As(err, &typ):
		return problem.BadRequest("invalid request body: " + err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return &problem.Problem{
			Type:   "about:blank",
			Title:  "Gateway Timeout",
			Status: http.StatusGatewayTimeout,
			Detail: "transformation did not finish within the request timeout",
		}
	}
	return &problem.Problem{
		Type:   "about:blank",
		Title:  "Unexpected Server Error",
		Status: http.StatusInternalServerError,
		Detail: err.Error(),
	}
}

func writeJSON(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
