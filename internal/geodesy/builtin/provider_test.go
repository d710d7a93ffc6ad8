package builtin

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/crs-transform/internal/crs"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(0)
	require.NoError(t, err)
	return p
}

func lookup(t *testing.T, p *Provider, id string) *crs.CRS {
	t.Helper()
	c, err := p.Lookup(id)
	require.NoError(t, err)
	return c
}

func TestLookup(t *testing.T) {
	p := newProvider(t)

	for _, id := range []string{"EPSG:28992", "epsg:28992", "http://www.opengis.net/def/crs/EPSG/0/28992", "urn:ogc:def:crs:EPSG::28992"} {
		c := lookup(t, p, id)
		require.Equal(t, "EPSG:28992", c.AuthorityCode(), id)
	}

	_, err := p.Lookup("EPSG:99999")
	require.True(t, errors.Is(err, crs.ErrUnknownCRS))
	_, err = p.Lookup("garbage")
	require.True(t, errors.Is(err, crs.ErrUnknownCRS))

	c := lookup(t, p, "EPSG:7415")
	require.True(t, c.IsCompound())
	require.Equal(t, 3, c.Dim())
	require.Equal(t, "EPSG:28992", c.To2D().AuthorityCode())
	require.Equal(t, "EPSG:5709", c.Vertical.AuthorityCode())
}

func TestList_SortedByCode(t *testing.T) {
	p := newProvider(t)
	l := p.List()
	require.NotEmpty(t, l)
	for i := 1; i < len(l); i++ {
		require.True(t, codeLess(l[i-1], l[i]), "%s before %s", l[i-1], l[i])
	}
}

func TestWebMercator(t *testing.T) {
	p := newProvider(t)
	src, dst := lookup(t, p, "EPSG:4326"), lookup(t, p, "EPSG:3857")
	cands, err := p.Candidates(src, dst)
	require.NoError(t, err)
	require.Len(t, cands, 1)

	out := cands[0].Transform([]float64{180, 0})
	require.InDelta(t, 20037508.342789244, out[0], 1e-6)
	require.InDelta(t, 0, out[1], 1e-6)

	out = cands[0].Transform([]float64{0, 89.9})
	require.True(t, math.IsInf(out[1], 1))

	back, err := p.Candidates(dst, src)
	require.NoError(t, err)
	ll := back[0].Transform(cands[0].Transform([]float64{5.387, 52.156}))
	require.InDelta(t, 5.387, ll[0], 1e-9)
	require.InDelta(t, 52.156, ll[1], 1e-9)
}

func TestRDNew_Origin(t *testing.T) {
	p := newProvider(t)
	rd, etrs := lookup(t, p, "EPSG:28992"), lookup(t, p, "EPSG:4258")
	cands, err := p.Candidates(rd, etrs)
	require.NoError(t, err)
	require.Len(t, cands, 1)

	out := cands[0].Transform([]float64{155000, 463000})
	require.InDelta(t, rdLam0, out[0], 1e-9)
	require.InDelta(t, rdPhi0, out[1], 1e-9)

	fwd, err := p.Candidates(etrs, rd)
	require.NoError(t, err)
	xy := fwd[0].Transform([]float64{6.5, 53.0})
	ll := cands[0].Transform(xy)
	xy2 := fwd[0].Transform(ll)
	require.InDelta(t, xy[0], xy2[0], 1.0)
	require.InDelta(t, xy[1], xy2[1], 1.0)
}

func TestRDNew_OutsideAreaIsInfinite(t *testing.T) {
	p := newProvider(t)
	cands, err := p.Candidates(lookup(t, p, "EPSG:4326"), lookup(t, p, "EPSG:28992"))
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		out := c.Transform([]float64{-70.0, -30.0})
		require.True(t, math.IsInf(out[0], 1))
		require.True(t, math.IsInf(out[1], 1))
	}
}

func TestCandidates_ETRS89ToWGS84Ranking(t *testing.T) {
	p := newProvider(t)
	cands, err := p.Candidates(lookup(t, p, "EPSG:7415"), lookup(t, p, "EPSG:3857"))
	require.NoError(t, err)
	require.Len(t, cands, 2)

	var codes []string
	for _, op := range cands[0].Operations() {
		codes = append(codes, op.MethodCode)
	}
	require.Contains(t, codes, "1053")

	for _, op := range cands[1].Operations() {
		require.NotEqual(t, "1053", op.MethodCode)
	}
}

func TestCandidates_DynamicTargetOnlyTimeDependent(t *testing.T) {
	p := newProvider(t)
	src, dst := lookup(t, p, "EPSG:4937"), lookup(t, p, "EPSG:7912")
	cands, err := p.Candidates(src, dst)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	require.True(t, dst.Datum.Dynamic)

	at2010 := cands[0].Transform([]float64{5.387, 52.156, 50, 2010})
	at2020 := cands[0].Transform([]float64{5.387, 52.156, 50, 2020})
	require.Len(t, at2020, 4)
	require.Equal(t, 2020.0, at2020[3])

	// ITRF2014 drifts by roughly 2.5 cm/yr against ETRS89 in the Netherlands.
	dLon := (at2020[0] - at2010[0]) * 111320 * math.Cos(52.156*math.Pi/180)
	dLat := (at2020[1] - at2010[1]) * 110574
	drift := math.Hypot(dLon, dLat)
	require.Greater(t, drift, 0.1)
	require.Less(t, drift, 0.5)
}

func TestCandidates_VerticalOnlyHasNoPath(t *testing.T) {
	p := newProvider(t)
	cands, err := p.Candidates(lookup(t, p, "EPSG:5709"), lookup(t, p, "EPSG:4979"))
	require.NoError(t, err)
	require.Empty(t, cands)
}

func TestNAPHeight(t *testing.T) {
	p := newProvider(t)
	src, dst := lookup(t, p, "EPSG:4937"), lookup(t, p, "EPSG:9286")
	cands, err := p.Candidates(src, dst)
	require.NoError(t, err)
	require.Len(t, cands, 1)

	out := cands[0].Transform([]float64{geoidLon0, geoidLat0, 50})
	require.InDelta(t, 50-geoidN0, out[2], 1e-9)

	outside := cands[0].Transform([]float64{10.0, 45.0, 50})
	require.True(t, math.IsInf(outside[2], 0))
	require.InDelta(t, 10.0, outside[0], 1e-12)
}

func TestHelmert_InfiniteHeightKeepsHorizontal(t *testing.T) {
	lon, lat, h := itrf2014ToETRF2000.applyGeographic(5, 52, inf, 2020)
	require.False(t, math.IsInf(lon, 0) || math.IsNaN(lon))
	require.False(t, math.IsInf(lat, 0) || math.IsNaN(lat))
	require.True(t, math.IsInf(h, 1))
}

func TestGeocentricRoundTrip(t *testing.T) {
	x, y, z := toGeocentric(5.387, 52.156, 43.2)
	lon, lat, h := fromGeocentric(x, y, z)
	require.InDelta(t, 5.387, lon, 1e-10)
	require.InDelta(t, 52.156, lat, 1e-10)
	require.InDelta(t, 43.2, h, 1e-4)
}

func TestCandidates_Cached(t *testing.T) {
	p := newProvider(t)
	src, dst := lookup(t, p, "EPSG:4258"), lookup(t, p, "EPSG:4326")
	a, err := p.Candidates(src, dst)
	require.NoError(t, err)
	b, err := p.Candidates(src, dst)
	require.NoError(t, err)
	require.Same(t, a[0], b[0])
	require.Equal(t, 1, p.cache.Len())
}
