// Package geojsoncrs runs GeoJSON objects through a coordinate transformer.
// Geometries, features and feature collections are decoded with go.geojson;
// the legacy named "crs" member and "bbox" members are maintained here.
package geojsoncrs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	geojson "github.com/paulmach/go.geojson"

	"github.com/mohammed-shakir/crs-transform/internal/coords"
	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/transform"
)

var (
	ErrUnsupportedType = errors.New("unsupported GeoJSON type")
	ErrInvalidCRS      = errors.New("invalid crs member")
)

type Kind string

const (
	KindGeometry          Kind = "Geometry"
	KindFeature           Kind = "Feature"
	KindFeatureCollection Kind = "FeatureCollection"
)

// NamedCRS is the GeoJSON 2008 "crs" member of type "name".
type NamedCRS struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

func namedCRS(name string) *NamedCRS {
	n := &NamedCRS{Type: "name"}
	n.Properties.Name = name
	return n
}

// Object is one decoded GeoJSON document. Exactly one of Geometry, Feature
// or Collection is set, matching Kind. A GeometryCollection is a Geometry.
type Object struct {
	Kind       Kind
	Geometry   *geojson.Geometry
	Feature    *geojson.Feature
	Collection *geojson.FeatureCollection
	CRS        *NamedCRS
}

var geometryTypes = map[string]struct{}{
	string(geojson.GeometryPoint):           {},
	string(geojson.GeometryMultiPoint):      {},
	string(geojson.GeometryLineString):      {},
	string(geojson.GeometryMultiLineString): {},
	string(geojson.GeometryPolygon):         {},
	string(geojson.GeometryMultiPolygon):    {},
	string(geojson.GeometryCollection):      {},
}

// Decode parses a GeoJSON document, switching on its "type" member.
func Decode(data []byte) (*Object, error) {
	var probe struct {
		Type string          `json:"type"`
		CRS  json.RawMessage `json:"crs"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	obj := &Object{}
	if len(probe.CRS) > 0 && string(probe.CRS) != "null" {
		var n NamedCRS
		if err := json.Unmarshal(probe.CRS, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCRS, err)
		}
		obj.CRS = &n
	}

	var err error
	switch probe.Type {
	case string(KindFeature):
		obj.Kind = KindFeature
		obj.Feature, err = geojson.UnmarshalFeature(data)
	case string(KindFeatureCollection):
		obj.Kind = KindFeatureCollection
		obj.Collection, err = geojson.UnmarshalFeatureCollection(data)
	default:
		if _, ok := geometryTypes[probe.Type]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, probe.Type)
		}
		obj.Kind = KindGeometry
		obj.Geometry, err = geojson.UnmarshalGeometry(data)
	}
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// SourceCRS returns the AUTH:CODE named by the crs member, if any.
func (o *Object) SourceCRS() (string, bool, error) {
	if o.CRS == nil {
		return "", false, nil
	}
	if o.CRS.Type != "name" || o.CRS.Properties.Name == "" {
		return "", false, fmt.Errorf("%w: expected a named crs", ErrInvalidCRS)
	}
	id, err := crs.Normalize(o.CRS.Properties.Name)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrInvalidCRS, err)
	}
	return id, true, nil
}

// SetCRS names dst in the crs member. Only feature collections carry one
// in the output; other kinds keep theirs only if the input had it.
func (o *Object) SetCRS(dst *crs.CRS) {
	if o.Kind != KindFeatureCollection && o.CRS == nil {
		return
	}
	o.CRS = namedCRS(urn(dst))
}

func urn(c *crs.CRS) string {
	return fmt.Sprintf("urn:ogc:def:crs:%s::%s", c.Authority, c.Code)
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch o.Kind {
	case KindFeature:
		raw, err = json.Marshal(o.Feature)
	case KindFeatureCollection:
		raw, err = json.Marshal(o.Collection)
	case KindGeometry:
		raw, err = json.Marshal(o.Geometry)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, o.Kind)
	}
	if err != nil || o.CRS == nil {
		return raw, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, err
	}
	if members["crs"], err = json.Marshal(o.CRS); err != nil {
		return nil, err
	}
	return json.Marshal(members)
}

// geometries visits every top-level geometry of the object.
func (o *Object) geometries(fn func(*geojson.Geometry) error) error {
	switch o.Kind {
	case KindGeometry:
		return fn(o.Geometry)
	case KindFeature:
		if o.Feature.Geometry == nil {
			return nil
		}
		return fn(o.Feature.Geometry)
	case KindFeatureCollection:
		for _, f := range o.Collection.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			if err := fn(f.Geometry); err != nil {
				return err
			}
		}
	}
	return nil
}

// Points counts the positions in the object.
func (o *Object) Points() int {
	n := 0
	_ = o.geometries(func(g *geojson.Geometry) error {
		n += len(positions(g))
		return nil
	})
	return n
}

// Transform replaces every position of obj by tr.Apply of it, recomputes
// the bbox members that were present and names dst in the crs member. A done
// ctx stops the walk between geometries with ctx.Err().
func Transform(ctx context.Context, o *Object, tr transform.Transformer, dst *crs.CRS) error {
	if err := o.geometries(func(g *geojson.Geometry) error {
		return transformGeometry(ctx, g, tr)
	}); err != nil {
		return err
	}
	if err := o.geometries(validate); err != nil {
		return err
	}
	o.updateBBoxes()
	if dst != nil {
		o.SetCRS(dst)
	}
	return nil
}

func transformGeometry(ctx context.Context, g *geojson.Geometry, tr transform.Transformer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.Type == geojson.GeometryCollection {
		for _, c := range g.Geometries {
			if c == nil {
				continue
			}
			if err := transformGeometry(ctx, c, tr); err != nil {
				return err
			}
		}
		return nil
	}
	n, err := toNode(g)
	if err != nil {
		return err
	}
	out, err := coords.Traverse(n, tr.Apply)
	if err != nil {
		return err
	}
	return fromNode(g, out)
}

// validate rejects any position left with an infinite or NaN coordinate.
func validate(g *geojson.Geometry) error {
	for _, p := range positions(g) {
		for _, v := range p {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return &transform.InvalidCoordinateError{Position: p}
			}
		}
	}
	return nil
}

func positions(g *geojson.Geometry) []coords.Position {
	if g.Type == geojson.GeometryCollection {
		var out []coords.Position
		for _, c := range g.Geometries {
			if c != nil {
				out = append(out, positions(c)...)
			}
		}
		return out
	}
	n, err := toNode(g)
	if err != nil {
		return nil
	}
	return coords.Explode(n)
}

func (o *Object) updateBBoxes() {
	var all []coords.Position
	update := func(bbox *[]float64, ps []coords.Position) {
		if *bbox == nil {
			return
		}
		if b, ok := bboxOf(ps); ok {
			*bbox = b
		}
	}
	_ = o.geometries(func(g *geojson.Geometry) error {
		updateGeometryBBox(g)
		return nil
	})
	switch o.Kind {
	case KindFeature:
		if o.Feature.Geometry != nil {
			all = positions(o.Feature.Geometry)
		}
		update(&o.Feature.BoundingBox, all)
	case KindFeatureCollection:
		for _, f := range o.Collection.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			ps := positions(f.Geometry)
			update(&f.BoundingBox, ps)
			all = append(all, ps...)
		}
		update(&o.Collection.BoundingBox, all)
	}
}

func updateGeometryBBox(g *geojson.Geometry) {
	if g.Type == geojson.GeometryCollection {
		for _, c := range g.Geometries {
			if c != nil {
				updateGeometryBBox(c)
			}
		}
	}
	if g.BoundingBox == nil {
		return
	}
	if b, ok := bboxOf(positions(g)); ok {
		g.BoundingBox = b
	}
}

// bboxOf computes a bbox over positions of the lowest shared dimension, so
// a mix of 2D and 3D positions gives a 2D box.
func bboxOf(ps []coords.Position) ([]float64, bool) {
	if len(ps) == 0 {
		return nil, false
	}
	dim := len(ps[0])
	for _, p := range ps[1:] {
		dim = min(dim, len(p))
	}
	if dim > 3 {
		dim = 3
	}
	trimmed := make([]coords.Position, len(ps))
	for i, p := range ps {
		trimmed[i] = p[:dim]
	}
	b, err := coords.BBox(trimmed)
	if err != nil {
		return nil, false
	}
	return b, true
}
