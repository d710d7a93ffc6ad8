package geodesy

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// DefaultProvider is used when the configured name is not registered.
const DefaultProvider = "builtin"

type ProviderConfig struct {
	// CacheSize bounds the candidate pipeline cache; <= 0 uses the
	// provider's default.
	CacheSize int
}

type Factory func(cfg ProviderConfig) (Provider, error)

var (
	regMu sync.RWMutex
	reg   = map[string]Factory{}
)

// Register makes a provider available by name. Implementations call it from
// an init function.
func Register(name string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	reg[name] = f
}

// Registered lists the registered provider names.
func Registered() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(reg))
	for name := range reg {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open builds the named provider, falling back to DefaultProvider.
func Open(name string, cfg ProviderConfig, logger *slog.Logger) (Provider, error) {
	regMu.RLock()
	f, ok := reg[name]
	def, hasDef := reg[DefaultProvider]
	regMu.RUnlock()

	if ok {
		return f(cfg)
	}
	if hasDef {
		if logger != nil {
			logger.Warn("unknown geodesy provider; falling back to default", "provider", name, "default", DefaultProvider)
		}
		return def(cfg)
	}
	return nil, fmt.Errorf("no geodesy provider %q and no %s registered", name, DefaultProvider)
}
