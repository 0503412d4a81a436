package points

import (
	"bytes"
	"encoding/json"
	"iter"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
)

// Set is an ordered collection of uniquely named points. It implements
// [anchor.Points].
type Set struct {
	order []point.ID
	byID  map[point.ID]*point.Point
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{byID: make(map[point.ID]*point.Point)}
}

// Add appends p under p.Meta.Name. A name already present is DUPLICATE_POINT.
func (s *Set) Add(p *point.Point) error {
	id := point.ParseID(p.Meta.Name)
	if _, ok := s.byID[id]; ok {
		return errors.New(errors.ErrCodeDuplicatePoint, "point %q defined more than once", p.Meta.Name)
	}
	s.order = append(s.order, id)
	s.byID[id] = p
	return nil
}

// Lookup returns the point with the given name.
func (s *Set) Lookup(name string) (*point.Point, bool) {
	p, ok := s.byID[point.ParseID(name)]
	return p, ok
}

// Get returns the named point, or nil.
func (s *Set) Get(name string) *point.Point {
	p, _ := s.Lookup(name)
	return p
}

// Has reports whether name is present.
func (s *Set) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Len returns the number of points.
func (s *Set) Len() int { return len(s.order) }

// Names returns point names in insertion order.
func (s *Set) Names() []string {
	out := make([]string, len(s.order))
	for i, id := range s.order {
		out[i] = id.String()
	}
	return out
}

// Points returns the points in insertion order.
func (s *Set) Points() []*point.Point {
	out := make([]*point.Point, len(s.order))
	for i, id := range s.order {
		out[i] = s.byID[id]
	}
	return out
}

// All iterates names and points in insertion order.
func (s *Set) All() iter.Seq2[string, *point.Point] {
	return func(yield func(string, *point.Point) bool) {
		for _, id := range s.order {
			if !yield(id.String(), s.byID[id]) {
				return
			}
		}
	}
}

// Filter returns a new set holding the points for which keep is true.
func (s *Set) Filter(keep func(*point.Point) bool) *Set {
	out := NewSet()
	for _, id := range s.order {
		if p := s.byID[id]; keep(p) {
			out.order = append(out.order, id)
			out.byID[id] = p
		}
	}
	return out
}

// Map returns the points keyed by name.
func (s *Set) Map() map[string]*point.Point {
	out := make(map[string]*point.Point, len(s.order))
	for _, id := range s.order {
		out[id.String()] = s.byID[id]
	}
	return out
}

// MarshalJSON encodes the set as an object in insertion order.
func (s *Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(id.String())
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.byID[id])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the encoding produced by MarshalJSON, keeping the
// object's key order as insertion order.
func (s *Set) UnmarshalJSON(data []byte) error {
	var m config.Map
	if err := m.UnmarshalJSON(data); err != nil {
		return err
	}
	out := NewSet()
	for name, v := range m.All() {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var p point.Point
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if p.Meta.Name == "" {
			p.Meta.Name = name
		}
		if err := out.Add(&p); err != nil {
			return err
		}
	}
	*s = *out
	return nil
}
