package builtin

import "github.com/mohammed-shakir/crs-transform/internal/geodesy"

func init() {
	geodesy.Register(geodesy.DefaultProvider, func(cfg geodesy.ProviderConfig) (geodesy.Provider, error) {
		return New(cfg.CacheSize)
	})
}
