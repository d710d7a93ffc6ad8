// Package transform selects epoch-safe transformation pipelines between two
// CRSs and applies them to single positions with per-axis rounding.
package transform

import (
	"math"

	"github.com/mohammed-shakir/crs-transform/internal/coords"
	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/geodesy"
)

const (
	// DefaultDigits is the horizontal rounding precision for metre based
	// targets; degree based targets get five more.
	DefaultDigits = 4
	HeightDigits  = 4
	degreeExtra   = 5
)

// PrecisionFor returns the horizontal rounding digits for target c.
func PrecisionFor(c *crs.CRS, base int) int {
	if c.IsAngular() {
		return base + degreeExtra
	}
	return base
}

// Transformer maps one x/lon-first position to the target CRS.
type Transformer interface {
	Apply(p coords.Position) (coords.Position, error)
}

type Options struct {
	// Precision overrides the horizontal rounding digits.
	Precision *int
	Epoch     *float64
	// BaseDigits replaces DefaultDigits when Precision is nil; values <= 0
	// keep DefaultDigits.
	BaseDigits int
}

// New builds the transformer for src -> dst. Compound endpoints are split
// into a horizontal and a vertical pipeline; at most two pipelines are
// selected and they are reused for every position.
func New(sel *Selector, src, dst *crs.CRS, opts Options) (Transformer, error) {
	base := opts.BaseDigits
	if base <= 0 {
		base = DefaultDigits
	}
	precision := PrecisionFor(dst, base)
	if opts.Precision != nil {
		precision = *opts.Precision
	}

	if err := sel.checkPair(src, dst); err != nil {
		return nil, err
	}

	if !src.Equal(dst) && (src.IsCompound() || dst.IsCompound()) {
		h, err := sel.Select(src, dst.To2D(), opts.Epoch)
		if err != nil {
			return nil, reraise(err, src, dst)
		}
		v, err := sel.Select(src, dst, opts.Epoch)
		if err != nil {
			return nil, reraise(err, src, dst)
		}
		return &CompoundTransformer{
			horizontal: h,
			vertical:   v,
			targetDim:  dst.Dim(),
			precision:  precision,
			epoch:      opts.Epoch,
		}, nil
	}

	p, err := sel.Select(src, dst, opts.Epoch)
	if err != nil {
		return nil, err
	}
	return &PositionTransformer{
		pipeline:  p,
		targetDim: dst.Dim(),
		precision: precision,
		epoch:     opts.Epoch,
	}, nil
}

// reraise reports a failed sub-selection against the original pair while
// keeping the kind and reason of the inner failure.
func reraise(err error, src, dst *crs.CRS) error {
	te, ok := err.(*TransformationError)
	if !ok {
		return err
	}
	return newTransformationError(te.Kind, src, dst, te.Reason)
}

// augment appends the epoch to a position. A 2D position gets a zero height
// first so the epoch is never read as a height.
func augment(p coords.Position, epoch *float64) []float64 {
	if epoch == nil {
		return p
	}
	switch len(p) {
	case 2:
		return []float64{p[0], p[1], 0, *epoch}
	case 3:
		return []float64{p[0], p[1], p[2], *epoch}
	}
	return p
}

func round(v float64, digits int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}

func invalid(v float64) bool { return math.IsInf(v, 0) || math.IsNaN(v) }

func checkHorizontal(out coords.Position) error {
	if len(out) < 2 || invalid(out[0]) || invalid(out[1]) {
		return &InvalidCoordinateError{Position: out}
	}
	return nil
}

// PositionTransformer runs a single pipeline.
type PositionTransformer struct {
	pipeline  geodesy.Pipeline
	targetDim int
	precision int
	epoch     *float64
}

func (t *PositionTransformer) Pipeline() geodesy.Pipeline { return t.pipeline }

func (t *PositionTransformer) Apply(p coords.Position) (coords.Position, error) {
	raw := t.pipeline.Transform(augment(p, t.epoch))
	if len(raw) > t.targetDim {
		raw = raw[:t.targetDim]
	}
	if len(raw) < 2 {
		return nil, &InvalidCoordinateError{Position: raw}
	}
	out := coords.Position{round(raw[0], t.precision), round(raw[1], t.precision)}
	if len(raw) >= 3 {
		h := round(round(raw[2], t.precision), HeightDigits)
		if !invalid(h) {
			out = append(out, h)
		}
	}
	if err := checkHorizontal(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CompoundTransformer combines the horizontal result of one pipeline with
// the height of another.
type CompoundTransformer struct {
	horizontal geodesy.Pipeline
	vertical   geodesy.Pipeline
	targetDim  int
	precision  int
	epoch      *float64
}

func (t *CompoundTransformer) Pipelines() (horizontal, vertical geodesy.Pipeline) {
	return t.horizontal, t.vertical
}

// Operations names the operation steps tr runs, horizontal steps first for a
// compound transformer. Other transformers give nil.
func Operations(tr Transformer) []string {
	var pipes []geodesy.Pipeline
	switch t := tr.(type) {
	case *PositionTransformer:
		pipes = append(pipes, t.Pipeline())
	case *CompoundTransformer:
		h, v := t.Pipelines()
		pipes = append(pipes, h, v)
	}
	var names []string
	for _, p := range pipes {
		for _, op := range p.Operations() {
			names = append(names, op.Name)
		}
	}
	return names
}

func (t *CompoundTransformer) Apply(p coords.Position) (coords.Position, error) {
	in := augment(p, t.epoch)
	hor := t.horizontal.Transform(in)
	if len(hor) < 2 {
		return nil, &InvalidCoordinateError{Position: hor}
	}
	out := coords.Position{round(hor[0], t.precision), round(hor[1], t.precision)}
	if t.targetDim == 3 {
		ver := t.vertical.Transform(in)
		if len(ver) >= 3 {
			if h := round(ver[2], HeightDigits); !invalid(h) {
				out = append(out, h)
			}
		}
	}
	if err := checkHorizontal(out); err != nil {
		return nil, err
	}
	return out, nil
}
