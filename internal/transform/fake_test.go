package transform

import (
	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/geodesy"
)

type fakePipeline struct {
	src, dst *crs.CRS
	ops      []geodesy.Operation
	fn       func(in []float64) []float64
	inputs   [][]float64
}

func (f *fakePipeline) Source() *crs.CRS                { return f.src }
func (f *fakePipeline) Target() *crs.CRS                { return f.dst }
func (f *fakePipeline) Operations() []geodesy.Operation { return f.ops }

func (f *fakePipeline) Transform(in []float64) []float64 {
	f.inputs = append(f.inputs, append([]float64(nil), in...))
	if f.fn != nil {
		return f.fn(in)
	}
	out := []float64{in[0], in[1], 0}
	if len(in) >= 3 {
		out[2] = in[2]
	}
	if len(in) >= 4 {
		out = append(out, in[3])
	}
	return out
}

type fakeProvider struct {
	cands map[string][]geodesy.Pipeline
	calls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{cands: map[string][]geodesy.Pipeline{}}
}

func (f *fakeProvider) add(src, dst *crs.CRS, ps ...geodesy.Pipeline) {
	key := src.AuthorityCode() + ">" + dst.AuthorityCode()
	f.cands[key] = append(f.cands[key], ps...)
}

func (f *fakeProvider) Lookup(string) (*crs.CRS, error) { return nil, crs.ErrUnknownCRS }
func (f *fakeProvider) List() []*crs.CRS                { return nil }

func (f *fakeProvider) Candidates(src, dst *crs.CRS) ([]geodesy.Pipeline, error) {
	f.calls++
	return f.cands[src.AuthorityCode()+">"+dst.AuthorityCode()], nil
}

func degreeCRS(code string, dim int) *crs.CRS {
	axes := []crs.Axis{
		{Abbrev: "Lat", UnitName: crs.UnitDegree},
		{Abbrev: "Lon", UnitName: crs.UnitDegree},
	}
	kind := crs.KindGeographic2D
	if dim == 3 {
		axes = append(axes, crs.Axis{Abbrev: "h", UnitName: crs.UnitMetre})
		kind = crs.KindGeographic3D
	}
	return &crs.CRS{Authority: "EPSG", Code: code, Kind: kind, Axes: axes}
}

func metreCRS(code string, dim int) *crs.CRS {
	axes := []crs.Axis{
		{Abbrev: "X", UnitName: crs.UnitMetre},
		{Abbrev: "Y", UnitName: crs.UnitMetre},
	}
	if dim == 3 {
		axes = append(axes, crs.Axis{Abbrev: "H", UnitName: crs.UnitMetre})
	}
	return &crs.CRS{Authority: "EPSG", Code: code, Kind: crs.KindProjected, Axes: axes}
}

func timeDependent(src, dst *crs.CRS) *fakePipeline {
	return &fakePipeline{src: src, dst: dst, ops: []geodesy.Operation{
		{Name: "td", Type: geodesy.OpTransformation, MethodCode: "1053", RefEpoch: 2010},
	}}
}

func static(src, dst *crs.CRS) *fakePipeline {
	return &fakePipeline{src: src, dst: dst, ops: []geodesy.Operation{
		{Name: "static", Type: geodesy.OpTransformation, MethodCode: "9603"},
	}}
}
