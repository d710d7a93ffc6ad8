// Package cityjson holds a CityJSON document model and the vertex-table
// lifecycle (decompress, transform, compress, deduplicate, remove orphans,
// bbox maintenance) used when transforming a model between CRSs.
package cityjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCRSIdentifier = errors.New("invalid crs identifier, expected AUTH:CODE")
	ErrMissingMetadata      = errors.New("cityjson metadata is missing")
	ErrMissingTransform     = errors.New("cityjson transform is missing")
	ErrNotCityJSON          = errors.New("document is not CityJSON")
)

// Transform is the quantization of the vertex table:
// real = stored * scale + translate.
type Transform struct {
	Scale     [3]float64 `json:"scale"`
	Translate [3]float64 `json:"translate"`
}

type Metadata struct {
	ReferenceSystem    string
	GeographicalExtent []float64
	Extra              map[string]json.RawMessage
}

type Geometry struct {
	Type       string
	Boundaries Boundary
	Extra      map[string]json.RawMessage
}

type CityObject struct {
	Type               string
	Geometry           []Geometry
	GeographicalExtent []float64
	Extra              map[string]json.RawMessage
}

// IsExtension reports whether the object is an extension type ("+Name").
// Those are skipped by vertex cleanup and bbox passes.
func (o *CityObject) IsExtension() bool { return strings.HasPrefix(o.Type, "+") }

// Document is a CityJSON model. Members that are not modelled are kept
// verbatim in Extra and CityObjects keep their document order.
type Document struct {
	Type        string
	Version     string
	Transform   *Transform
	Metadata    *Metadata
	CityObjects map[string]*CityObject
	ObjectIDs   []string
	Vertices    [][3]float64
	// Quantized is true while Vertices hold stored integer values.
	Quantized bool
	Extra     map[string]json.RawMessage
}

// Parse decodes a CityJSON document. Vertices are considered quantized when
// a transform member is present.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// IsCityJSON sniffs the top-level "type" member.
func IsCityJSON(data []byte) bool {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Type == "CityJSON"
}

func (d *Document) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	if _, err := take(fields, "type", &d.Type); err != nil {
		return err
	}
	if d.Type != "CityJSON" {
		return fmt.Errorf("%w: type %q", ErrNotCityJSON, d.Type)
	}
	if _, err := take(fields, "version", &d.Version); err != nil {
		return err
	}
	var tr Transform
	ok, err := take(fields, "transform", &tr)
	if err != nil {
		return err
	}
	if ok {
		d.Transform = &tr
		d.Quantized = true
	}
	if raw, ok := fields["metadata"]; ok && !isNull(raw) {
		d.Metadata = &Metadata{}
		if err := json.Unmarshal(raw, d.Metadata); err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
	}
	delete(fields, "metadata")

	if raw, ok := fields["CityObjects"]; ok {
		if d.ObjectIDs, d.CityObjects, err = decodeCityObjects(raw); err != nil {
			return err
		}
		delete(fields, "CityObjects")
	} else {
		d.CityObjects = map[string]*CityObject{}
	}

	var verts [][]float64
	if _, err := take(fields, "vertices", &verts); err != nil {
		return err
	}
	d.Vertices = make([][3]float64, len(verts))
	for i, v := range verts {
		if len(v) != 3 {
			return fmt.Errorf("vertex %d: expected 3 coordinates, got %d", i, len(v))
		}
		d.Vertices[i] = [3]float64{v[0], v[1], v[2]}
	}
	d.Extra = fields
	return nil
}

// decodeCityObjects keeps the key order of the CityObjects member, which
// defines the first-reference order used when renumbering vertices.
func decodeCityObjects(raw json.RawMessage) ([]string, map[string]*CityObject, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("CityObjects: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("CityObjects: expected object")
	}
	var ids []string
	objs := map[string]*CityObject{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("CityObjects: %w", err)
		}
		id, _ := tok.(string)
		var o CityObject
		if err := dec.Decode(&o); err != nil {
			return nil, nil, fmt.Errorf("CityObjects[%s]: %w", id, err)
		}
		if _, dup := objs[id]; !dup {
			ids = append(ids, id)
		}
		objs[id] = &o
	}
	return ids, objs, nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	var verts any
	if d.Quantized {
		iv := make([][3]int64, len(d.Vertices))
		for i, v := range d.Vertices {
			iv[i] = [3]int64{int64(v[0]), int64(v[1]), int64(v[2])}
		}
		verts = iv
	} else {
		verts = d.Vertices
	}

	objs := orderedObjects{ids: d.objectOrder(), objs: d.CityObjects}
	return encodeObject([]field{
		{"type", d.Type, false},
		{"version", d.Version, false},
		{"transform", d.Transform, d.Transform == nil},
		{"metadata", d.Metadata, d.Metadata == nil},
		{"CityObjects", objs, false},
		{"vertices", verts, false},
	}, d.Extra)
}

// objectOrder returns ObjectIDs extended with any objects added to the map
// without an entry there, in sorted order.
func (d *Document) objectOrder() []string {
	ids := make([]string, 0, len(d.CityObjects))
	seen := make(map[string]struct{}, len(d.ObjectIDs))
	for _, id := range d.ObjectIDs {
		if _, ok := d.CityObjects[id]; ok {
			ids = append(ids, id)
			seen[id] = struct{}{}
		}
	}
	var extra []string
	for id := range d.CityObjects {
		if _, ok := seen[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ids, extra...)
}

// eachObject visits city objects in document order.
func (d *Document) eachObject(fn func(id string, o *CityObject)) {
	for _, id := range d.objectOrder() {
		fn(id, d.CityObjects[id])
	}
}

type orderedObjects struct {
	ids  []string
	objs map[string]*CityObject
}

func (o orderedObjects) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range o.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.objs[id])
		if err != nil {
			return nil, fmt.Errorf("CityObjects[%s]: %w", id, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	if _, err := take(fields, "referenceSystem", &m.ReferenceSystem); err != nil {
		return err
	}
	if _, err := take(fields, "geographicalExtent", &m.GeographicalExtent); err != nil {
		return err
	}
	m.Extra = fields
	return nil
}

func (m *Metadata) MarshalJSON() ([]byte, error) {
	return encodeObject([]field{
		{"referenceSystem", m.ReferenceSystem, m.ReferenceSystem == ""},
		{"geographicalExtent", m.GeographicalExtent, m.GeographicalExtent == nil},
	}, m.Extra)
}

func (o *CityObject) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	if _, err := take(fields, "type", &o.Type); err != nil {
		return err
	}
	if _, err := take(fields, "geometry", &o.Geometry); err != nil {
		return err
	}
	if _, err := take(fields, "geographicalExtent", &o.GeographicalExtent); err != nil {
		return err
	}
	o.Extra = fields
	return nil
}

func (o *CityObject) MarshalJSON() ([]byte, error) {
	return encodeObject([]field{
		{"type", o.Type, false},
		{"geometry", o.Geometry, o.Geometry == nil},
		{"geographicalExtent", o.GeographicalExtent, o.GeographicalExtent == nil},
	}, o.Extra)
}

func (g *Geometry) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	if _, err := take(fields, "type", &g.Type); err != nil {
		return err
	}
	if _, err := take(fields, "boundaries", &g.Boundaries); err != nil {
		return err
	}
	g.Extra = fields
	return nil
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	return encodeObject([]field{
		{"type", g.Type, false},
		{"boundaries", g.Boundaries, g.Boundaries.IsZero()},
	}, g.Extra)
}

type field struct {
	key   string
	value any
	omit  bool
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// take decodes fields[key] into v and removes it from fields. It reports
// whether a non-null value was present.
func take(fields map[string]json.RawMessage, key string, v any) (bool, error) {
	raw, ok := fields[key]
	if !ok {
		return false, nil
	}
	delete(fields, key)
	if isNull(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return true, nil
}

// encodeObject writes the known fields in order followed by the extra
// members sorted by key.
func encodeObject(known []field, extra map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	write := func(key string, raw []byte) {
		if n > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(raw)
		n++
	}
	for _, f := range known {
		if f.omit {
			continue
		}
		raw, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
		write(f.key, raw)
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k, extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
