package builtin

import (
	"math"

	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/geodesy"
)

type point struct {
	x, y, z float64
	t       float64
	hasT    bool
}

type step struct {
	op    geodesy.Operation
	apply func(p *point)
}

type pipeline struct {
	src, dst *crs.CRS
	steps    []step
}

var _ geodesy.Pipeline = (*pipeline)(nil)

func (pl *pipeline) Source() *crs.CRS { return pl.src }
func (pl *pipeline) Target() *crs.CRS { return pl.dst }

func (pl *pipeline) Operations() []geodesy.Operation {
	ops := make([]geodesy.Operation, len(pl.steps))
	for i, s := range pl.steps {
		ops[i] = s.op
	}
	return ops
}

func (pl *pipeline) Transform(in []float64) []float64 {
	if len(in) < 2 {
		return []float64{inf, inf, inf}
	}
	p := point{x: in[0], y: in[1]}
	if len(in) >= 3 {
		p.z = in[2]
	}
	if len(in) >= 4 {
		p.t, p.hasT = in[3], true
	}
	for _, s := range pl.steps {
		s.apply(&p)
	}
	out := []float64{p.x, p.y, p.z}
	if p.hasT {
		out = append(out, p.t)
	}
	return out
}

func inverseProjectionStep(pr projection) step {
	return step{
		op: geodesy.Operation{Name: "Inverse of " + pr.name(), Type: geodesy.OpConversion, MethodCode: pr.methodCode()},
		apply: func(p *point) {
			p.x, p.y = pr.toGeographic(p.x, p.y)
		},
	}
}

func projectionStep(pr projection) step {
	return step{
		op: geodesy.Operation{Name: pr.name(), Type: geodesy.OpConversion, MethodCode: pr.methodCode()},
		apply: func(p *point) {
			p.x, p.y = pr.fromGeographic(p.x, p.y)
		},
	}
}

var (
	napToEllipsoidal = step{
		op: geodesy.Operation{Name: "NAP height to ETRS89 ellipsoidal height (quasi-geoid approximation)", Type: geodesy.OpTransformation},
		apply: func(p *point) {
			p.z += quasiGeoidHeight(p.x, p.y)
		},
	}
	ellipsoidalToNAP = step{
		op: geodesy.Operation{Name: "ETRS89 ellipsoidal height to NAP height (quasi-geoid approximation)", Type: geodesy.OpTransformation},
		apply: func(p *point) {
			if math.IsInf(p.z, 0) {
				return
			}
			p.z -= quasiGeoidHeight(p.x, p.y)
		},
	}
)

// helmertStep applies a time-dependent Helmert; without an observation epoch
// the parameters are evaluated at the reference epoch.
func helmertStep(name string, h helmert) step {
	return step{
		op: geodesy.Operation{Name: name, Type: geodesy.OpTransformation, MethodCode: "1053", RefEpoch: h.refEpoch},
		apply: func(p *point) {
			t := h.refEpoch
			if p.hasT {
				t = p.t
			}
			p.x, p.y, p.z = h.applyGeographic(p.x, p.y, p.z, t)
		},
	}
}

// nullStep is a zero-parameter geocentric translation between frames that
// are treated as coincident.
func nullStep(name string) step {
	return step{
		op:    geodesy.Operation{Name: name, Type: geodesy.OpTransformation, MethodCode: "9603"},
		apply: func(*point) {},
	}
}

var (
	etrsToITRF = helmertStep("ETRF2000 to ITRF2014 (EUREF)", itrf2014ToETRF2000.inverse())
	itrfToETRS = helmertStep("ITRF2014 to ETRF2000 (EUREF)", itrf2014ToETRF2000)
	itrfToWGS  = nullStep("ITRF2014 to WGS 84 (null)")
	wgsToITRF  = nullStep("WGS 84 to ITRF2014 (null)")
	etrsToWGS  = nullStep("ETRS89 to WGS 84 (1)")
	wgsToETRS  = nullStep("WGS 84 to ETRS89 (1)")
)

// frameRoutes lists the datum step sequences from one frame to another, best
// ranked first.
func frameRoutes(from, to frame) [][]step {
	if from == to {
		return [][]step{nil}
	}
	switch {
	case from == frameETRS89 && to == frameITRF2014:
		return [][]step{{etrsToITRF}}
	case from == frameITRF2014 && to == frameETRS89:
		return [][]step{{itrfToETRS}}
	case from == frameETRS89 && to == frameWGS84:
		return [][]step{{etrsToITRF, itrfToWGS}, {etrsToWGS}}
	case from == frameWGS84 && to == frameETRS89:
		return [][]step{{wgsToITRF, itrfToETRS}, {wgsToETRS}}
	case from == frameWGS84 && to == frameITRF2014:
		return [][]step{{wgsToITRF}}
	case from == frameITRF2014 && to == frameWGS84:
		return [][]step{{itrfToWGS}}
	}
	return nil
}

func buildPipeline(src, dst *definition, route []step) *pipeline {
	var steps []step
	if src.proj != nil {
		steps = append(steps, inverseProjectionStep(src.proj))
	}
	if src.height == heightNAP {
		steps = append(steps, napToEllipsoidal)
	}
	steps = append(steps, route...)
	if dst.height == heightNAP {
		steps = append(steps, ellipsoidalToNAP)
	}
	if dst.proj != nil {
		steps = append(steps, projectionStep(dst.proj))
	}
	return &pipeline{src: src.crs, dst: dst.crs, steps: steps}
}
