package geojsoncrs

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/crs-transform/internal/coords"
	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/geodesy/builtin"
	"github.com/mohammed-shakir/crs-transform/internal/transform"
)

type funcTransformer func(coords.Position) (coords.Position, error)

func (f funcTransformer) Apply(p coords.Position) (coords.Position, error) { return f(p) }

var shift = funcTransformer(func(p coords.Position) (coords.Position, error) {
	out := p.Clone()
	out[0] += 100
	out[1] += 10
	return out, nil
})

var wgs84 = &crs.CRS{Authority: "EPSG", Code: "4326"}

const collection = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::28992"}},
  "bbox": [0, 0, 0, 0],
  "features": [
    {"type": "Feature", "bbox": [0, 0, 0, 0], "properties": {"name": "a"},
     "geometry": {"type": "GeometryCollection", "geometries": [
       {"type": "Point", "coordinates": [1, 2]},
       {"type": "Polygon", "bbox": [0, 0, 0, 0], "coordinates": [[[0, 0], [4, 0], [4, 3], [0, 0]]]}
     ]}},
    {"type": "Feature", "properties": null, "geometry": {"type": "LineString", "coordinates": [[5, 5], [6, 7]]}},
    {"type": "Feature", "properties": {}, "geometry": null}
  ]
}`

func TestDecode_Kinds(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{`{"type":"Point","coordinates":[1,2]}`, KindGeometry},
		{`{"type":"GeometryCollection","geometries":[]}`, KindGeometry},
		{`{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]}`, KindGeometry},
		{`{"type":"Feature","properties":{},"geometry":null}`, KindFeature},
		{`{"type":"FeatureCollection","features":[]}`, KindFeatureCollection},
	}
	for _, c := range cases {
		obj, err := Decode([]byte(c.in))
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, obj.Kind, c.in)
	}

	_, err := Decode([]byte(`{"type":"Topology"}`))
	require.True(t, errors.Is(err, ErrUnsupportedType))
	_, err = Decode([]byte(`not json`))
	require.Error(t, err)
}

func TestSourceCRS(t *testing.T) {
	obj, err := Decode([]byte(collection))
	require.NoError(t, err)
	id, ok, err := obj.SourceCRS()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "EPSG:28992", id)

	obj, err = Decode([]byte(`{"type":"Point","coordinates":[1,2]}`))
	require.NoError(t, err)
	_, ok, err = obj.SourceCRS()
	require.NoError(t, err)
	require.False(t, ok)

	obj, err = Decode([]byte(`{"type":"FeatureCollection","features":[],"crs":{"type":"name","properties":{"name":"nonsense"}}}`))
	require.NoError(t, err)
	_, _, err = obj.SourceCRS()
	require.True(t, errors.Is(err, ErrInvalidCRS))
}

func TestTransform_FeatureCollection(t *testing.T) {
	obj, err := Decode([]byte(collection))
	require.NoError(t, err)
	require.NoError(t, Transform(context.Background(), obj, shift, wgs84))

	fc := obj.Collection
	gc := fc.Features[0].Geometry
	require.Equal(t, []float64{101, 12}, gc.Geometries[0].Point)
	require.Equal(t, []float64{100, 10, 104, 13}, gc.Geometries[1].BoundingBox)
	require.Equal(t, []float64{100, 10, 104, 13}, fc.Features[0].BoundingBox)
	require.Equal(t, [][]float64{{105, 15}, {106, 17}}, fc.Features[1].Geometry.LineString)
	require.Nil(t, fc.Features[1].BoundingBox)
	require.Equal(t, []float64{100, 10, 106, 17}, fc.BoundingBox)

	raw, err := json.Marshal(obj)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, "FeatureCollection", out["type"])
	name := out["crs"].(map[string]any)["properties"].(map[string]any)["name"]
	require.Equal(t, "urn:ogc:def:crs:EPSG::4326", name)
}

func TestTransform_MixedDimensionBBoxIs2D(t *testing.T) {
	obj, err := Decode([]byte(`{"type":"MultiPoint","bbox":[0,0,0,0],"coordinates":[[1,2,3],[4,5]]}`))
	require.NoError(t, err)
	require.NoError(t, Transform(context.Background(), obj, shift, nil))
	require.Equal(t, []float64{101, 12, 104, 15}, obj.Geometry.BoundingBox)
}

func TestTransform_InputUnchangedOnError(t *testing.T) {
	boom := errors.New("boom")
	failing := funcTransformer(func(p coords.Position) (coords.Position, error) {
		if p[0] > 3 {
			return nil, boom
		}
		return p, nil
	})
	obj, err := Decode([]byte(`{"type":"LineString","coordinates":[[1,1],[5,5]]}`))
	require.NoError(t, err)
	require.True(t, errors.Is(Transform(context.Background(), obj, failing, nil), boom))
	require.Equal(t, [][]float64{{1, 1}, {5, 5}}, obj.Geometry.LineString)
}

func TestTransform_InfiniteCoordinateRejected(t *testing.T) {
	toInf := funcTransformer(func(p coords.Position) (coords.Position, error) {
		return coords.Position{math.Inf(1), p[1]}, nil
	})
	obj, err := Decode([]byte(`{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}}`))
	require.NoError(t, err)
	var inv *transform.InvalidCoordinateError
	require.True(t, errors.As(Transform(context.Background(), obj, toInf, nil), &inv))
}

func TestPoints(t *testing.T) {
	obj, err := Decode([]byte(collection))
	require.NoError(t, err)
	require.Equal(t, 7, obj.Points())
}

func TestTransform_BuiltinRDToWGS84(t *testing.T) {
	p, err := builtin.New(0)
	require.NoError(t, err)
	src, err := p.Lookup("EPSG:28992")
	require.NoError(t, err)
	dst, err := p.Lookup("EPSG:4326")
	require.NoError(t, err)
	tr, err := transform.New(transform.NewSelector(p, nil), src, dst, transform.Options{})
	require.NoError(t, err)

	obj, err := Decode([]byte(`{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[155000,463000]}}`))
	require.NoError(t, err)
	require.NoError(t, Transform(context.Background(), obj, tr, dst))

	pt := obj.Feature.Geometry.Point
	require.Equal(t, geojson.GeometryPoint, obj.Feature.Geometry.Type)
	require.InDelta(t, 5.387, pt[0], 1e-2)
	require.InDelta(t, 52.155, pt[1], 1e-2)
	require.Nil(t, obj.CRS)
}

func TestTransform_StopsOnDoneContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	cancelling := funcTransformer(func(p coords.Position) (coords.Position, error) {
		calls++
		cancel()
		return p.Clone(), nil
	})
	obj, err := Decode([]byte(collection))
	require.NoError(t, err)
	require.ErrorIs(t, Transform(ctx, obj, cancelling, wgs84), context.Canceled)
	require.Equal(t, 1, calls)
	require.Equal(t, "urn:ogc:def:crs:EPSG::28992", obj.CRS.Properties.Name)
}
