// Package router parses and validates transform request parameters before
// they reach the API handlers.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/crs-transform/internal/core/model"
	"github.com/mohammed-shakir/crs-transform/internal/core/problem"
)

const (
	HeaderContentCRS = "Content-Crs"
	HeaderAcceptCRS  = "Accept-Crs"
)

var (
	ErrMissingSource = errors.New("No source CRS found in request. Defining a source CRS is required through the query parameter source-crs or header content-crs")
	ErrMissingTarget = errors.New("No target CRS found in request. Defining a target CRS is required through the query parameter target-crs or header accept-crs")
)

var coordinatesPattern = regexp.MustCompile(`^(-?\d+\.?\d*),(-?\d+\.?\d*)(,-?\d+\.?\d*)?$`)

// PointHandler receives validated point requests.
type PointHandler interface {
	HandlePoint(ctx context.Context, w http.ResponseWriter, r *http.Request, q model.PointRequest)
}

// HandlePoint validates the GET /transform parameters and calls h.
func HandlePoint(logger *slog.Logger, h PointHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := ParsePointRequest(r)
		if err != nil {
			logger.Debug("invalid point request", "err", err)
			problem.Write(w, problem.BadRequest(err.Error()))
			return
		}
		h.HandlePoint(r.Context(), w, r, q)
	}
}

// ParseTransformRequest reads source-crs, target-crs and epoch. The source
// falls back to the Content-Crs header and may stay empty; a target is
// required, through the query or the Accept-Crs header.
func ParseTransformRequest(r *http.Request) (model.TransformRequest, error) {
	q := r.URL.Query()
	req := model.TransformRequest{
		Source: firstNonEmpty(q.Get("source-crs"), r.Header.Get(HeaderContentCRS)),
		Target: firstNonEmpty(q.Get("target-crs"), r.Header.Get(HeaderAcceptCRS)),
	}
	if req.Target == "" {
		return model.TransformRequest{}, ErrMissingTarget
	}
	if raw := strings.TrimSpace(q.Get("epoch")); raw != "" {
		e, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.TransformRequest{}, fmt.Errorf("invalid epoch: %w", err)
		}
		req.Epoch = &e
	}
	return req, nil
}

func ParsePointRequest(r *http.Request) (model.PointRequest, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("coordinates"))
	if raw == "" {
		return model.PointRequest{}, errors.New("missing required parameter: coordinates")
	}
	cs, err := ParseCoordinates(raw)
	if err != nil {
		return model.PointRequest{}, err
	}

	tr, err := ParseTransformRequest(r)
	if err != nil {
		return model.PointRequest{}, err
	}
	if tr.Source == "" {
		return model.PointRequest{}, ErrMissingSource
	}
	return model.PointRequest{TransformRequest: tr, Coordinates: cs}, nil
}

// ParseCoordinates accepts "x,y" or "x,y,z".
func ParseCoordinates(raw string) ([]float64, error) {
	if !coordinatesPattern.MatchString(raw) {
		return nil, fmt.Errorf("invalid coordinates %q: expected x,y or x,y,z", raw)
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
