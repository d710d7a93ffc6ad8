package transform

import (
	"fmt"
	"os"
	"sort"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/mohammed-shakir/crs-transform/internal/crs"
)

// CRSConfigEntry is one entry of crs-config.yaml, keyed by AUTH:CODE.
type CRSConfigEntry struct {
	URI                    string   `yaml:"uri"`
	ExcludeTransformations []string `yaml:"exclude-transformations"`
}

// Exclusions is an immutable snapshot of excluded (source, target) pairs.
// Modifying methods return a new snapshot.
type Exclusions struct {
	pairs map[string]map[string]struct{}
}

func NewExclusions(pairs map[string][]string) *Exclusions {
	e := &Exclusions{pairs: make(map[string]map[string]struct{}, len(pairs))}
	for src, targets := range pairs {
		e.put(norm(src), targets)
	}
	return e
}

// ParseExclusions reads crs-config.yaml content.
func ParseExclusions(data []byte) (*Exclusions, error) {
	var cfg map[string]CRSConfigEntry
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse crs config: %w", err)
	}
	pairs := make(map[string][]string, len(cfg))
	for src, entry := range cfg {
		if _, err := crs.Normalize(src); err != nil {
			return nil, fmt.Errorf("crs config key %q: %w", src, err)
		}
		pairs[src] = entry.ExcludeTransformations
	}
	return NewExclusions(pairs), nil
}

func LoadExclusions(path string) (*Exclusions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crs config: %w", err)
	}
	return ParseExclusions(b)
}

func norm(id string) string {
	if n, err := crs.Normalize(id); err == nil {
		return n
	}
	return id
}

func (e *Exclusions) put(src string, targets []string) {
	if len(targets) == 0 {
		delete(e.pairs, src)
		return
	}
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[norm(t)] = struct{}{}
	}
	e.pairs[src] = set
}

// Excluded reports whether src -> dst (AUTH:CODE) is excluded.
func (e *Exclusions) Excluded(src, dst string) bool {
	if e == nil {
		return false
	}
	set, ok := e.pairs[norm(src)]
	if !ok {
		return false
	}
	_, ok = set[norm(dst)]
	return ok
}

// Targets returns the sorted excluded targets of src.
func (e *Exclusions) Targets(src string) []string {
	set := e.pairs[norm(src)]
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (e *Exclusions) Sources() []string {
	out := make([]string, 0, len(e.pairs))
	for s := range e.pairs {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Fingerprint hashes the excluded pairs in sorted order. Equal snapshots
// give equal fingerprints regardless of how they were built.
func (e *Exclusions) Fingerprint() uint64 {
	d := xxhash.New()
	if e == nil {
		return d.Sum64()
	}
	for _, src := range e.Sources() {
		_, _ = d.WriteString(src)
		_, _ = d.WriteString(">")
		for _, t := range e.Targets(src) {
			_, _ = d.WriteString(t)
			_, _ = d.WriteString(",")
		}
		_, _ = d.WriteString(";")
	}
	return d.Sum64()
}

func (e *Exclusions) clone() *Exclusions {
	c := &Exclusions{pairs: make(map[string]map[string]struct{}, len(e.pairs)+1)}
	for src, set := range e.pairs {
		cs := make(map[string]struct{}, len(set))
		for t := range set {
			cs[t] = struct{}{}
		}
		c.pairs[src] = cs
	}
	return c
}

// WithTargets replaces the excluded targets of src.
func (e *Exclusions) WithTargets(src string, targets []string) *Exclusions {
	c := e.clone()
	c.put(norm(src), targets)
	return c
}

func (e *Exclusions) WithAdded(src string, targets []string) *Exclusions {
	return e.WithTargets(src, append(e.Targets(src), targets...))
}

func (e *Exclusions) WithRemoved(src string, targets []string) *Exclusions {
	drop := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		drop[norm(t)] = struct{}{}
	}
	var keep []string
	for _, t := range e.Targets(src) {
		if _, ok := drop[t]; !ok {
			keep = append(keep, t)
		}
	}
	return e.WithTargets(src, keep)
}

// ExclusionStore holds the current snapshot. Readers never block; writers
// swap in a new snapshot.
type ExclusionStore struct {
	cur atomic.Pointer[Exclusions]
}

func NewExclusionStore(e *Exclusions) *ExclusionStore {
	if e == nil {
		e = NewExclusions(nil)
	}
	s := &ExclusionStore{}
	s.cur.Store(e)
	return s
}

func (s *ExclusionStore) Load() *Exclusions { return s.cur.Load() }

func (s *ExclusionStore) Store(e *Exclusions) { s.cur.Store(e) }

// Update applies fn to the current snapshot with compare-and-swap, retrying
// on concurrent writers.
func (s *ExclusionStore) Update(fn func(*Exclusions) *Exclusions) *Exclusions {
	for {
		old := s.cur.Load()
		next := fn(old)
		if s.cur.CompareAndSwap(old, next) {
			return next
		}
	}
}

func (s *ExclusionStore) Excluded(src, dst string) bool {
	return s.Load().Excluded(src, dst)
}
