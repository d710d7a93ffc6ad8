// Package api serves the coordinate transformation HTTP API: landing page,
// conformance, the supported CRS list and the GET/POST transform endpoints.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/crs-transform/internal/cache"
	"github.com/mohammed-shakir/crs-transform/internal/core/router"
	"github.com/mohammed-shakir/crs-transform/internal/geodesy"
	"github.com/mohammed-shakir/crs-transform/internal/transform"
)

const (
	mediaJSON     = "application/json"
	mediaCityJSON = "application/city+json"
	mediaWKT      = "text/plain"

	headerEpoch = "Epoch"
)

type Config struct {
	BaseURL string
	Title   string
	// Precision is the base number of decimals for metre based targets.
	Precision    int
	MaxBodyBytes int64
}

type Handler struct {
	cfg      Config
	provider geodesy.Provider
	selector *transform.Selector
	cache    cache.Interface
	log      *slog.Logger
}

// New builds the handler. A nil cache disables response caching.
func New(cfg Config, sel *transform.Selector, c cache.Interface, log *slog.Logger) *Handler {
	if cfg.Precision <= 0 {
		cfg.Precision = transform.DefaultDigits
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 2_000_000
	}
	if cfg.Title == "" {
		cfg.Title = "Coordinate Transformation API"
	}
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		cfg:      cfg,
		provider: sel.Provider(),
		selector: sel,
		cache:    c,
		log:      log,
	}
}

// Routes mounts the API endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.landing)
	r.Get("/conformance", h.conformance)
	r.Get("/crss", h.listCRSs)
	r.Get("/crss/{id}", h.getCRS)
	r.Get("/transform", router.HandlePoint(h.log, h))
	r.Post("/transform", h.transformDocument)
}
