package transform

import (
	"fmt"

	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/geodesy"
)

// Operation method codes of time-dependent and time-specific transformations.
var timeMethodCodes = map[string]struct{}{
	"1053": {}, "1054": {}, "1056": {}, "1057": {},
	"1065": {}, "1066": {},
}

// NeedsEpoch reports whether a pipeline only gives correct results for a
// specific observation epoch.
func NeedsEpoch(p geodesy.Pipeline) bool {
	if t := p.Target(); t != nil && t.Datum.Dynamic {
		return true
	}
	for _, op := range p.Operations() {
		switch op.Type {
		case geodesy.OpTransformation:
			if _, ok := timeMethodCodes[op.MethodCode]; ok {
				return true
			}
		case geodesy.OpOther:
			if op.RefEpoch != 0 {
				return true
			}
		}
	}
	return false
}

// Selector picks one pipeline per (source, target, epoch).
type Selector struct {
	provider   geodesy.Provider
	exclusions *ExclusionStore
}

func NewSelector(p geodesy.Provider, ex *ExclusionStore) *Selector {
	if ex == nil {
		ex = NewExclusionStore(nil)
	}
	return &Selector{provider: p, exclusions: ex}
}

func (s *Selector) Provider() geodesy.Provider { return s.provider }

func (s *Selector) Exclusions() *ExclusionStore { return s.exclusions }

func (s *Selector) checkPair(src, dst *crs.CRS) error {
	if s.exclusions.Excluded(src.AuthorityCode(), dst.AuthorityCode()) {
		return newTransformationError(ErrTransformationExcluded, src, dst, "Transformation Excluded")
	}
	if dst.Dim() > src.Dim() {
		return newTransformationError(ErrAxisMismatch, src, dst,
			fmt.Sprintf("number of dimensions source-crs: %d, number of dimensions target-crs: %d", src.Dim(), dst.Dim()))
	}
	return nil
}

// Select returns the best pipeline. Without an epoch the first candidate
// that does not need one wins; with an epoch rank 0 is always used.
func (s *Selector) Select(src, dst *crs.CRS, epoch *float64) (geodesy.Pipeline, error) {
	if err := s.checkPair(src, dst); err != nil {
		return nil, err
	}
	cands, err := s.provider.Candidates(src, dst)
	if err != nil {
		return nil, fmt.Errorf("candidates %s -> %s: %w", src, dst, err)
	}
	if len(cands) == 0 {
		return nil, newTransformationError(ErrNoTransformationPath, src, dst, "")
	}
	if epoch != nil {
		return cands[0], nil
	}
	for _, c := range cands {
		if !NeedsEpoch(c) {
			return c, nil
		}
	}
	return nil, newTransformationError(ErrEpochRequired, src, dst, "Transformation is not possible without an input epoch")
}
