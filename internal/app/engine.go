// Package app assembles the transformation engine from configuration.
package app

import (
	"fmt"
	"log/slog"

	"github.com/mohammed-shakir/crs-transform/internal/assets"
	"github.com/mohammed-shakir/crs-transform/internal/core/config"
	"github.com/mohammed-shakir/crs-transform/internal/geodesy"
	"github.com/mohammed-shakir/crs-transform/internal/transform"
)

type Engine struct {
	Provider   geodesy.Provider
	Exclusions *transform.ExclusionStore
	Selector   *transform.Selector
}

// NewEngine opens the configured provider and loads the exclusion list from
// CRSConfigPath, or from the embedded crs-config.yaml when it is empty.
// Provider implementations must be linked in with a blank import.
func NewEngine(cfg config.Config, logger *slog.Logger) (*Engine, error) {
	p, err := geodesy.Open(cfg.Provider, geodesy.ProviderConfig{CacheSize: cfg.ProviderCache}, logger)
	if err != nil {
		return nil, err
	}

	var ex *transform.Exclusions
	if cfg.CRSConfigPath != "" {
		ex, err = transform.LoadExclusions(cfg.CRSConfigPath)
	} else {
		ex, err = transform.ParseExclusions(assets.CRSConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("exclusions: %w", err)
	}
	for _, src := range ex.Sources() {
		if _, err := p.Lookup(src); err != nil {
			logger.Warn("crs config names an unsupported crs", "crs", src)
		}
	}

	store := transform.NewExclusionStore(ex)
	return &Engine{
		Provider:   p,
		Exclusions: store,
		Selector:   transform.NewSelector(p, store),
	}, nil
}
