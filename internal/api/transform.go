package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/crs-transform/internal/cache/keys"
	"github.com/mohammed-shakir/crs-transform/internal/cityjson"
	"github.com/mohammed-shakir/crs-transform/internal/coords"
	"github.com/mohammed-shakir/crs-transform/internal/core/model"
	"github.com/mohammed-shakir/crs-transform/internal/core/observability"
	"github.com/mohammed-shakir/crs-transform/internal/core/problem"
	"github.com/mohammed-shakir/crs-transform/internal/core/router"
	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/geojsoncrs"
	"github.com/mohammed-shakir/crs-transform/internal/logger"
	"github.com/mohammed-shakir/crs-transform/internal/transform"
)

const (
	kindPoint    = "point"
	kindGeoJSON  = "geojson"
	kindCityJSON = "cityjson"
)

var (
	errCityJSONMissingCRS = problem.BadRequest("metadata.referenceSystem field missing in CityJSON request body")
	errCollectionNoCRS    = problem.BadRequest("No source CRS found in request. Defining a source CRS is required through the provided object a query parameter source-crs or header content-crs")
)

// Document is a transformed POST /transform payload, as stored in the
// response cache.
type Document struct {
	ContentType string `json:"content_type"`
	ContentCRS  string `json:"content_crs,omitempty"`
	Body        []byte `json:"body"`
}

// pair resolves both identifiers and builds the transformer.
func (h *Handler) pair(ctx context.Context, source, target string, epoch *float64) (transform.Transformer, *crs.CRS, *crs.CRS, error) {
	src, err := h.provider.Lookup(source)
	if err != nil {
		return nil, nil, nil, err
	}
	dst, err := h.provider.Lookup(target)
	if err != nil {
		return nil, nil, nil, err
	}
	tr, err := transform.New(h.selector, src, dst, transform.Options{
		Epoch:      epoch,
		BaseDigits: h.cfg.Precision,
	})
	if err != nil {
		observability.ObserveSelection("error")
		h.log.DebugContext(logger.WithCRSPair(ctx, src.AuthorityCode(), dst.AuthorityCode()),
			"pipeline selection failed", "err", err)
		return nil, nil, nil, err
	}
	observability.ObserveSelection("ok")
	if h.log.Enabled(ctx, slog.LevelDebug) {
		h.log.DebugContext(logger.WithCRSPair(ctx, src.AuthorityCode(), dst.AuthorityCode()),
			"pipeline selected", "operations", transform.Operations(tr))
	}
	return tr, src, dst, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, kind string, err error) {
	p := problemFor(err)
	observability.ObserveTransform(kind, "error")
	if p.Status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "transform failed", "kind", kind, "err", err)
	} else {
		h.log.DebugContext(r.Context(), "transform rejected", "kind", kind, "status", p.Status, "err", err)
	}
	problem.Write(w, p)
}

func setTransformHeaders(w http.ResponseWriter, dst string, epoch *float64) {
	if dst != "" {
		w.Header().Set(router.HeaderContentCRS, dst)
	}
	if epoch != nil {
		w.Header().Set(headerEpoch, strconv.FormatFloat(*epoch, 'f', -1, 64))
	}
}

// TransformPoint transforms one position; the coordinate count must match
// the source dimensions.
func (h *Handler) TransformPoint(ctx context.Context, q model.PointRequest) (coords.Position, *crs.CRS, error) {
	tr, src, dst, err := h.pair(ctx, q.Source, q.Target, q.Epoch)
	if err != nil {
		return nil, nil, err
	}
	if len(q.Coordinates) != src.Dim() {
		return nil, nil, problem.BadRequest("number of coordinates must match number of dimensions of source-crs")
	}
	out, err := tr.Apply(coords.Position(q.Coordinates))
	if err != nil {
		return nil, nil, err
	}
	observability.AddTransformedPoints(1)
	return out, dst, nil
}

// HandlePoint serves GET /transform.
func (h *Handler) HandlePoint(ctx context.Context, w http.ResponseWriter, r *http.Request, q model.PointRequest) {
	out, dst, err := h.TransformPoint(ctx, q)
	if err != nil {
		h.fail(w, r, kindPoint, err)
		return
	}
	observability.ObserveTransform(kindPoint, "ok")

	setTransformHeaders(w, dst.URI(), q.Epoch)
	if strings.HasPrefix(r.Header.Get("Accept"), mediaWKT) {
		w.Header().Set("Content-Type", mediaWKT)
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, WKT(out))
		return
	}
	writeJSON(w, http.StatusOK, mediaJSON, map[string]any{
		"type":        "Point",
		"coordinates": []float64(out),
	})
}

// WKT renders a position as a WKT point.
func WKT(p coords.Position) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if len(p) == 3 {
		return "POINT Z(" + strings.Join(parts, " ") + ")"
	}
	return "POINT(" + strings.Join(parts, " ") + ")"
}

// transformDocument handles POST /transform with a GeoJSON or CityJSON body.
func (h *Handler) transformDocument(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		h.fail(w, r, kindGeoJSON, err)
		return
	}
	kind := kindGeoJSON
	if cityjson.IsCityJSON(body) {
		kind = kindCityJSON
	}
	q, err := router.ParseTransformRequest(r)
	if err != nil {
		h.fail(w, r, kind, err)
		return
	}

	key := keys.Key(keys.Request{
		Kind:       kind,
		Source:     q.Source,
		Target:     q.Target,
		Epoch:      q.Epoch,
		Precision:  h.cfg.Precision,
		Exclusions: h.selector.Exclusions().Load().Fingerprint(),
		Body:       body,
	})
	if raw, ok := h.cache.Get(r.Context(), key); ok {
		var cached Document
		if err := json.Unmarshal(raw, &cached); err == nil {
			observability.ObserveTransform(kind, "cached")
			h.write(w, cached, q.Epoch)
			return
		}
	}

	resp, err := h.Transform(r.Context(), body, q)
	if err != nil {
		h.fail(w, r, kind, err)
		return
	}
	observability.ObserveTransform(kind, "ok")

	if raw, err := json.Marshal(resp); err == nil {
		h.cache.Set(r.Context(), key, raw)
	}
	h.write(w, resp, q.Epoch)
}

// Transform runs a GeoJSON or CityJSON document to q.Target. The source is
// taken from the document first and from q.Source otherwise.
func (h *Handler) Transform(ctx context.Context, body []byte, q model.TransformRequest) (Document, error) {
	if cityjson.IsCityJSON(body) {
		return h.transformCityJSON(ctx, body, q)
	}
	return h.transformGeoJSON(ctx, body, q)
}

func (h *Handler) write(w http.ResponseWriter, resp Document, epoch *float64) {
	if resp.ContentCRS != "" {
		setTransformHeaders(w, resp.ContentCRS, epoch)
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body)
}

func (h *Handler) transformGeoJSON(ctx context.Context, body []byte, q model.TransformRequest) (Document, error) {
	obj, err := geojsoncrs.Decode(body)
	if err != nil {
		return Document{}, problem.BadRequest("invalid GeoJSON request body: " + err.Error())
	}
	source, ok, err := obj.SourceCRS()
	if err != nil {
		return Document{}, err
	}
	if !ok {
		source = q.Source
	}
	if source == "" {
		if obj.Kind == geojsoncrs.KindFeatureCollection {
			return Document{}, errCollectionNoCRS
		}
		return Document{}, router.ErrMissingSource
	}

	tr, _, dst, err := h.pair(ctx, source, q.Target, q.Epoch)
	if err != nil {
		return Document{}, err
	}
	if err := geojsoncrs.Transform(ctx, obj, tr, dst); err != nil {
		return Document{}, err
	}
	observability.AddTransformedPoints(obj.Points())

	out, err := json.Marshal(obj)
	if err != nil {
		return Document{}, fmt.Errorf("encode geojson: %w", err)
	}
	return Document{ContentType: mediaJSON, ContentCRS: dst.URI(), Body: out}, nil
}

func (h *Handler) transformCityJSON(ctx context.Context, body []byte, q model.TransformRequest) (Document, error) {
	doc, err := cityjson.Parse(body)
	if err != nil {
		return Document{}, problem.BadRequest("invalid CityJSON request body: " + err.Error())
	}
	if doc.Transform == nil {
		return Document{}, cityjson.ErrMissingTransform
	}
	source, err := doc.ReferenceSystem()
	switch {
	case errors.Is(err, cityjson.ErrMissingMetadata):
		source = q.Source
	case err != nil:
		return Document{}, fmt.Errorf("%w: %v", cityjson.ErrInvalidCRSIdentifier, err)
	}
	if source == "" {
		return Document{}, errCityJSONMissingCRS
	}

	tr, src, dst, err := h.pair(ctx, source, q.Target, q.Epoch)
	if err != nil {
		return Document{}, err
	}
	if dst.Dim() < 3 {
		return Document{}, problem.BadRequest("CityJSON requires a three-dimensional target-crs, got " + dst.AuthorityCode())
	}
	st, err := doc.CRSTransform(ctx, tr, src, dst)
	if err != nil {
		return Document{}, err
	}
	observability.AddTransformedPoints(st.Vertices)
	observability.AddVerticesRemoved("duplicate", st.DuplicatesRemoved)
	observability.AddVerticesRemoved("orphan", st.OrphansRemoved)
	h.log.DebugContext(logger.WithCRSPair(ctx, src.AuthorityCode(), dst.AuthorityCode()),
		"cityjson transformed",
		"vertices", st.Vertices,
		"duplicates_removed", st.DuplicatesRemoved,
		"orphans_removed", st.OrphansRemoved,
		"important_digits", st.ImportantDigits)

	out, err := json.Marshal(doc)
	if err != nil {
		return Document{}, fmt.Errorf("encode cityjson: %w", err)
	}
	return Document{ContentType: mediaCityJSON, ContentCRS: dst.URI(), Body: out}, nil
}
