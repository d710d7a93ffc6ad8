// Package coords walks arbitrarily nested coordinate arrays as found in
// GeoJSON geometries, preserving their shape.
package coords

import (
	"errors"
	"fmt"
)

// Position is a single coordinate tuple, x/longitude first.
type Position []float64

func (p Position) Clone() Position {
	out := make(Position, len(p))
	copy(out, p)
	return out
}

// Node is either a leaf holding a Position or an ordered list of children.
type Node struct {
	leaf     Position
	children []Node
	isLeaf   bool
}

func Leaf(p Position) Node { return Node{leaf: p, isLeaf: true} }

func List(children ...Node) Node {
	if children == nil {
		children = []Node{}
	}
	return Node{children: children}
}

func (n Node) IsLeaf() bool       { return n.isLeaf }
func (n Node) Position() Position { return n.leaf }
func (n Node) Children() []Node   { return n.children }

var ErrMalformed = errors.New("malformed coordinates")

// FromJSON builds a Node from decoded JSON (numbers as float64, arrays as
// []any). An array is a leaf when all of its elements are numbers.
func FromJSON(v any) (Node, error) {
	arr, ok := v.([]any)
	if !ok {
		return Node{}, fmt.Errorf("%w: expected array, got %T", ErrMalformed, v)
	}
	if len(arr) > 0 && allNumbers(arr) {
		p := make(Position, len(arr))
		for i, e := range arr {
			p[i] = e.(float64)
		}
		return Leaf(p), nil
	}
	children := make([]Node, 0, len(arr))
	for _, e := range arr {
		c, err := FromJSON(e)
		if err != nil {
			return Node{}, err
		}
		children = append(children, c)
	}
	return List(children...), nil
}

func allNumbers(arr []any) bool {
	for _, e := range arr {
		if _, ok := e.(float64); !ok {
			return false
		}
	}
	return true
}

// JSON returns the node as nested []any / []float64 values ready for
// encoding/json.
func (n Node) JSON() any {
	if n.isLeaf {
		return []float64(n.leaf)
	}
	out := make([]any, len(n.children))
	for i, c := range n.children {
		out[i] = c.JSON()
	}
	return out
}

// Traverse applies fn to every position and returns a new node of the same
// shape. The input is never modified. The first error aborts the walk.
func Traverse(n Node, fn func(Position) (Position, error)) (Node, error) {
	if n.isLeaf {
		p, err := fn(n.leaf)
		if err != nil {
			return Node{}, err
		}
		return Leaf(p), nil
	}
	children := make([]Node, len(n.children))
	for i, c := range n.children {
		nc, err := Traverse(c, fn)
		if err != nil {
			return Node{}, err
		}
		children[i] = nc
	}
	return List(children...), nil
}

// Explode flattens the node into its positions in document order.
func Explode(n Node) []Position {
	var out []Position
	var walk func(Node)
	walk = func(n Node) {
		if n.isLeaf {
			out = append(out, n.leaf)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(n)
	return out
}

var ErrMixedDimensions = errors.New("positions have mixed or unsupported dimensions")

// BBox returns [minx, miny, maxx, maxy] for 2D positions or
// [minx, miny, minz, maxx, maxy, maxz] for 3D ones.
func BBox(ps []Position) ([]float64, error) {
	if len(ps) == 0 {
		return nil, fmt.Errorf("%w: no positions", ErrMixedDimensions)
	}
	dim := len(ps[0])
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("%w: dimension %d", ErrMixedDimensions, dim)
	}
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	copy(lo, ps[0])
	copy(hi, ps[0])
	for _, p := range ps[1:] {
		if len(p) != dim {
			return nil, ErrMixedDimensions
		}
		for i, v := range p {
			lo[i] = min(lo[i], v)
			hi[i] = max(hi[i], v)
		}
	}
	return append(lo, hi...), nil
}
