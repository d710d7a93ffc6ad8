package cityjson

import (
	"context"
	"fmt"
	"math"

	"github.com/mohammed-shakir/crs-transform/internal/coords"
	"github.com/mohammed-shakir/crs-transform/internal/crs"
	"github.com/mohammed-shakir/crs-transform/internal/transform"
)

// Degrees carry five more significant decimals than metres
// (0.00001 degree is roughly one metre).
const unitDigitShift = 5

// ctxCheckEvery is how many vertices are transformed between checks of the
// request context.
const ctxCheckEvery = 256

// ImportantDigits derives the quantization precision from scale.x.
func (d *Document) ImportantDigits() int {
	if d.Transform == nil || d.Transform.Scale[0] <= 0 {
		return 0
	}
	// tolerate log10 noise so that 1e-5 gives 5, not 6
	return int(math.Ceil(math.Abs(math.Log10(d.Transform.Scale[0])) - 1e-9))
}

// SetReferenceSystem stores the OGC URI of authCode (AUTH:CODE) in
// metadata.referenceSystem, creating the metadata member when absent.
func (d *Document) SetReferenceSystem(authCode string) error {
	if !crs.IsAuthorityCode(authCode) {
		return fmt.Errorf("%w: %q", ErrInvalidCRSIdentifier, authCode)
	}
	auth, code, err := crs.ParseID(authCode)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCRSIdentifier, authCode)
	}
	if d.Metadata == nil {
		d.Metadata = &Metadata{}
	}
	d.Metadata.ReferenceSystem = crs.FormatURI(auth, code)
	return nil
}

// ReferenceSystem returns the AUTH:CODE of metadata.referenceSystem.
func (d *Document) ReferenceSystem() (string, error) {
	if d.Metadata == nil || d.Metadata.ReferenceSystem == "" {
		return "", ErrMissingMetadata
	}
	return crs.Normalize(d.Metadata.ReferenceSystem)
}

// Decompress replaces stored vertices with real coordinates. The transform
// member is left in place until Compress rewrites it.
func (d *Document) Decompress() {
	if d.Transform == nil || !d.Quantized {
		d.Quantized = false
		return
	}
	s, t := d.Transform.Scale, d.Transform.Translate
	for i, v := range d.Vertices {
		d.Vertices[i] = [3]float64{
			v[0]*s[0] + t[0],
			v[1]*s[1] + t[1],
			v[2]*s[2] + t[2],
		}
	}
	d.Quantized = false
}

// UpdateBBox recomputes metadata.geographicalExtent from real vertices; an
// empty vertex table yields six zeros.
func (d *Document) UpdateBBox() error {
	if d.Metadata == nil {
		return ErrMissingMetadata
	}
	if len(d.Vertices) == 0 {
		d.Metadata.GeographicalExtent = []float64{0, 0, 0, 0, 0, 0}
		return nil
	}
	lo, hi := d.Vertices[0], d.Vertices[0]
	for _, v := range d.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v[i])
			hi[i] = max(hi[i], v[i])
		}
	}
	d.Metadata.GeographicalExtent = []float64{lo[0], lo[1], lo[2], hi[0], hi[1], hi[2]}
	return nil
}

// geometryObjects visits the non-extension objects in document order.
func (d *Document) geometryObjects(fn func(o *CityObject)) {
	d.eachObject(func(_ string, o *CityObject) {
		if o == nil || o.IsExtension() {
			return
		}
		fn(o)
	})
}

func (d *Document) remapBoundaries(fn func(int) int) {
	d.geometryObjects(func(o *CityObject) {
		for gi := range o.Geometry {
			o.Geometry[gi].Boundaries = o.Geometry[gi].Boundaries.Remap(fn)
		}
	})
}

// RemoveDuplicateVertices merges identical vertices, keeping the first
// occurrence, and returns the number removed.
func (d *Document) RemoveDuplicateVertices() int {
	total := len(d.Vertices)
	seen := make(map[[3]float64]int, total)
	newIDs := make([]int, total)
	unique := make([][3]float64, 0, total)
	for i, v := range d.Vertices {
		if id, ok := seen[v]; ok {
			newIDs[i] = id
			continue
		}
		id := len(unique)
		seen[v] = id
		newIDs[i] = id
		unique = append(unique, v)
	}
	d.remapBoundaries(func(i int) int {
		if i < 0 || i >= total {
			return i
		}
		return newIDs[i]
	})
	d.Vertices = unique
	return total - len(unique)
}

// RemoveOrphanVertices drops vertices no geometry references and renumbers
// the rest in first-reference order. It returns the number removed.
func (d *Document) RemoveOrphanVertices() int {
	total := len(d.Vertices)
	oldToNew := map[int]int{}
	var order []int
	d.geometryObjects(func(o *CityObject) {
		for _, g := range o.Geometry {
			g.Boundaries.Walk(func(i int) {
				if _, ok := oldToNew[i]; ok || i < 0 || i >= total {
					return
				}
				oldToNew[i] = len(order)
				order = append(order, i)
			})
		}
	})
	d.remapBoundaries(func(i int) int {
		if n, ok := oldToNew[i]; ok {
			return n
		}
		return i
	})
	kept := make([][3]float64, len(order))
	for n, old := range order {
		kept[n] = d.Vertices[old]
	}
	d.Vertices = kept
	return total - len(kept)
}

// Compress quantizes the real vertices with 10^-digits as scale. The
// translate is the per-axis minimum unless given. Duplicate and orphan
// vertices are removed afterwards; the removal counts are returned.
func (d *Document) Compress(digits int, translate *[3]float64) (duplicates, orphans int) {
	var t [3]float64
	switch {
	case translate != nil:
		t = *translate
	case len(d.Vertices) > 0:
		t = d.Vertices[0]
		for _, v := range d.Vertices[1:] {
			for i := 0; i < 3; i++ {
				t[i] = min(t[i], v[i])
			}
		}
	}
	factor := math.Pow10(digits)
	for vi, v := range d.Vertices {
		for i := 0; i < 3; i++ {
			d.Vertices[vi][i] = math.Round((v[i] - t[i]) * factor)
		}
	}
	scale := math.Pow10(-digits)
	d.Transform = &Transform{Scale: [3]float64{scale, scale, scale}, Translate: t}
	d.Quantized = true

	duplicates = d.RemoveDuplicateVertices()
	orphans = d.RemoveOrphanVertices()
	return duplicates, orphans
}

// UpdateCityObjectsBBox recomputes geographicalExtent of every object that
// has one (or of all objects when addIfMissing). The extent spans the
// vertices referenced by all geometries of the object; objects without
// boundary data are left untouched.
func (d *Document) UpdateCityObjectsBBox(addIfMissing bool) {
	d.eachObject(func(_ string, o *CityObject) {
		if o == nil || o.IsExtension() {
			return
		}
		if !addIfMissing && o.GeographicalExtent == nil {
			return
		}
		lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
		hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
		found := false
		for _, g := range o.Geometry {
			g.Boundaries.Walk(func(i int) {
				if i < 0 || i >= len(d.Vertices) {
					return
				}
				v := d.realVertex(i)
				for k := 0; k < 3; k++ {
					lo[k] = min(lo[k], v[k])
					hi[k] = max(hi[k], v[k])
				}
				found = true
			})
		}
		if !found {
			return
		}
		o.GeographicalExtent = []float64{lo[0], lo[1], lo[2], hi[0], hi[1], hi[2]}
	})
}

func (d *Document) realVertex(i int) [3]float64 {
	v := d.Vertices[i]
	if !d.Quantized || d.Transform == nil {
		return v
	}
	s, t := d.Transform.Scale, d.Transform.Translate
	return [3]float64{v[0]*s[0] + t[0], v[1]*s[1] + t[1], v[2]*s[2] + t[2]}
}

// Stats reports what CRSTransform changed.
type Stats struct {
	Vertices          int
	DuplicatesRemoved int
	OrphansRemoved    int
	ImportantDigits   int
}

// CRSTransform moves the model from src to dst: derive precision, decompress,
// transform every vertex, tag the reference system, update the model bbox,
// shift precision for the unit change, compress (with deduplication and
// orphan removal) and update the object extents.
//
// The precision comes from the transform member, so a document without one
// is rejected with ErrMissingTransform and left unchanged. A done ctx stops
// the vertex loop with ctx.Err().
func (d *Document) CRSTransform(ctx context.Context, tr transform.Transformer, src, dst *crs.CRS) (Stats, error) {
	var st Stats
	if d.Transform == nil || d.Transform.Scale[0] <= 0 {
		return st, ErrMissingTransform
	}
	if err := ctx.Err(); err != nil {
		return st, err
	}
	digits := d.ImportantDigits()
	d.Decompress()

	for i, v := range d.Vertices {
		if i > 0 && i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
		}
		out, err := tr.Apply(coords.Position{v[0], v[1], v[2]})
		if err != nil {
			return st, fmt.Errorf("vertex %d: %w", i, err)
		}
		if len(out) != 3 {
			return st, fmt.Errorf("vertex %d: %w", i, &transform.InvalidCoordinateError{Position: out})
		}
		d.Vertices[i] = [3]float64{out[0], out[1], out[2]}
	}

	if err := d.SetReferenceSystem(dst.AuthorityCode()); err != nil {
		return st, err
	}
	if err := d.UpdateBBox(); err != nil {
		return st, err
	}

	srcUnit, err := src.XUnit()
	if err != nil {
		return st, err
	}
	dstUnit, err := dst.XUnit()
	if err != nil {
		return st, err
	}
	switch {
	case srcUnit == crs.UnitMetre && dstUnit == crs.UnitDegree:
		digits += unitDigitShift
	case srcUnit == crs.UnitDegree && dstUnit == crs.UnitMetre:
		digits -= unitDigitShift
	}

	st.DuplicatesRemoved, st.OrphansRemoved = d.Compress(digits, nil)
	d.UpdateCityObjectsBBox(false)
	st.Vertices = len(d.Vertices)
	st.ImportantDigits = digits
	return st, nil
}
