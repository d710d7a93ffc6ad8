package geojsoncrs

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"github.com/mohammed-shakir/crs-transform/internal/coords"
)

func toNode(g *geojson.Geometry) (coords.Node, error) {
	switch g.Type {
	case geojson.GeometryPoint:
		return coords.Leaf(g.Point), nil
	case geojson.GeometryMultiPoint:
		return level1(g.MultiPoint), nil
	case geojson.GeometryLineString:
		return level1(g.LineString), nil
	case geojson.GeometryMultiLineString:
		return level2(g.MultiLineString), nil
	case geojson.GeometryPolygon:
		return level2(g.Polygon), nil
	case geojson.GeometryMultiPolygon:
		children := make([]coords.Node, len(g.MultiPolygon))
		for i, p := range g.MultiPolygon {
			children[i] = level2(p)
		}
		return coords.List(children...), nil
	}
	return coords.Node{}, fmt.Errorf("%w: %q", ErrUnsupportedType, g.Type)
}

func fromNode(g *geojson.Geometry, n coords.Node) error {
	switch g.Type {
	case geojson.GeometryPoint:
		if !n.IsLeaf() {
			return fmt.Errorf("%w: point", coords.ErrMalformed)
		}
		g.Point = n.Position()
	case geojson.GeometryMultiPoint:
		g.MultiPoint = unwrap1(n)
	case geojson.GeometryLineString:
		g.LineString = unwrap1(n)
	case geojson.GeometryMultiLineString:
		g.MultiLineString = unwrap2(n)
	case geojson.GeometryPolygon:
		g.Polygon = unwrap2(n)
	case geojson.GeometryMultiPolygon:
		out := make([][][][]float64, len(n.Children()))
		for i, c := range n.Children() {
			out[i] = unwrap2(c)
		}
		g.MultiPolygon = out
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, g.Type)
	}
	return nil
}

func level1(ps [][]float64) coords.Node {
	children := make([]coords.Node, len(ps))
	for i, p := range ps {
		children[i] = coords.Leaf(p)
	}
	return coords.List(children...)
}

func level2(rings [][][]float64) coords.Node {
	children := make([]coords.Node, len(rings))
	for i, r := range rings {
		children[i] = level1(r)
	}
	return coords.List(children...)
}

func unwrap1(n coords.Node) [][]float64 {
	out := make([][]float64, len(n.Children()))
	for i, c := range n.Children() {
		out[i] = c.Position()
	}
	return out
}

func unwrap2(n coords.Node) [][][]float64 {
	out := make([][][]float64, len(n.Children()))
	for i, c := range n.Children() {
		out[i] = unwrap1(c)
	}
	return out
}
