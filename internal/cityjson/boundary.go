package cityjson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Boundary is a nested list of vertex indices (rings, surfaces, shells,
// solids). A leaf holds one index.
type Boundary struct {
	index    int
	children []Boundary
	leaf     bool
}

func Index(i int) Boundary { return Boundary{index: i, leaf: true} }

func Boundaries(children ...Boundary) Boundary {
	if children == nil {
		children = []Boundary{}
	}
	return Boundary{children: children}
}

func (b Boundary) IsLeaf() bool         { return b.leaf }
func (b Boundary) Index() int           { return b.index }
func (b Boundary) Children() []Boundary { return b.children }
func (b Boundary) IsZero() bool         { return !b.leaf && b.children == nil }

// Walk calls fn for every index in document order.
func (b Boundary) Walk(fn func(int)) {
	if b.leaf {
		fn(b.index)
		return
	}
	for _, c := range b.children {
		c.Walk(fn)
	}
}

// Remap returns a new boundary with every index replaced by fn(index).
func (b Boundary) Remap(fn func(int) int) Boundary {
	if b.leaf {
		return Index(fn(b.index))
	}
	if b.children == nil {
		return b
	}
	out := make([]Boundary, len(b.children))
	for i, c := range b.children {
		out[i] = c.Remap(fn)
	}
	return Boundaries(out...)
}

func (b Boundary) MarshalJSON() ([]byte, error) {
	if b.leaf {
		return []byte(fmt.Sprintf("%d", b.index)), nil
	}
	if b.children == nil {
		return []byte("null"), nil
	}
	return json.Marshal(b.children)
}

func (b *Boundary) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = Boundary{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var children []Boundary
		if err := json.Unmarshal(data, &children); err != nil {
			return err
		}
		*b = Boundaries(children...)
		return nil
	default:
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return fmt.Errorf("boundary index: %w", err)
		}
		*b = Index(i)
		return nil
	}
}
