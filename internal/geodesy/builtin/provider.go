// Package builtin is a self-contained geodesy.Provider covering the WGS 84,
// ETRS89/ETRF2000, ITRF2014, Web Mercator, RD New, LV95 and NAP systems. It
// uses closed-form approximations instead of grid files, so results are
// metre-level outside the exact conversions.
package builtin

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/geodesy"
)

const DefaultCacheSize = 256

type Provider struct {
	defs  map[string]*definition
	list  []*crs.CRS
	cache *lru.Cache[string, []geodesy.Pipeline]
}

var _ geodesy.Provider = (*Provider)(nil)

// New builds the registry. cacheSize bounds the number of (source, target)
// candidate lists kept; values <= 0 use DefaultCacheSize.
func New(cacheSize int) (*Provider, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	c, err := lru.New[string, []geodesy.Pipeline](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("candidate cache: %w", err)
	}
	p := &Provider{defs: map[string]*definition{}, cache: c}
	for _, d := range definitions() {
		p.defs[d.crs.AuthorityCode()] = d
		p.list = append(p.list, d.crs)
	}
	sort.Slice(p.list, func(i, j int) bool {
		return codeLess(p.list[i], p.list[j])
	})
	return p, nil
}

func codeLess(a, b *crs.CRS) bool {
	if a.Authority != b.Authority {
		return a.Authority < b.Authority
	}
	if len(a.Code) != len(b.Code) {
		return len(a.Code) < len(b.Code)
	}
	return a.Code < b.Code
}

func (p *Provider) Lookup(id string) (*crs.CRS, error) {
	key, err := crs.Normalize(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", crs.ErrUnknownCRS, id)
	}
	d, ok := p.defs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", crs.ErrUnknownCRS, id)
	}
	return d.crs, nil
}

func (p *Provider) List() []*crs.CRS {
	out := make([]*crs.CRS, len(p.list))
	copy(out, p.list)
	return out
}

func (p *Provider) definition(c *crs.CRS) (*definition, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: <nil>", crs.ErrUnknownCRS)
	}
	d, ok := p.defs[strings.ToUpper(c.Authority)+":"+c.Code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", crs.ErrUnknownCRS, c.AuthorityCode())
	}
	return d, nil
}

// Candidates returns the pipelines from src to dst, best ranked first. An
// empty result means no path exists; vertical-only systems never have one.
func (p *Provider) Candidates(src, dst *crs.CRS) ([]geodesy.Pipeline, error) {
	s, err := p.definition(src)
	if err != nil {
		return nil, err
	}
	d, err := p.definition(dst)
	if err != nil {
		return nil, err
	}
	if s.verticalOnly || d.verticalOnly {
		return nil, nil
	}

	key := s.crs.AuthorityCode() + ">" + d.crs.AuthorityCode()
	if cached, ok := p.cache.Get(key); ok {
		return cached, nil
	}

	var out []geodesy.Pipeline
	for _, route := range frameRoutes(s.frame, d.frame) {
		out = append(out, buildPipeline(s, d, route))
	}
	p.cache.Add(key, out)
	return out, nil
}
