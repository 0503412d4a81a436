package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Map is an insertion-ordered string-keyed map of nodes.
// The zero value is not usable; create maps with [NewMap].
type Map struct {
	keys []string
	vals map[string]Node
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Node)}
}

// MapOf builds a map from alternating key/value arguments.
// It panics on malformed input and is intended for tests and literals.
func MapOf(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("config.MapOf: odd argument count")
	}
	m := NewMap()
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i].(string), FromValue(kv[i+1]))
	}
	return m
}

// Kind implements Node.
func (m *Map) Kind() Kind { return KindMap }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string { return slices.Clone(m.keys) }

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Node, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Value returns the value stored under key, or nil when absent.
func (m *Map) Value(key string) Node {
	return m.vals[key]
}

// Set stores v under key. New keys are appended; existing keys keep their position.
func (m *Map) Set(key string, v Node) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Delete removes key if present.
func (m *Map) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// All iterates over entries in insertion order.
func (m *Map) All() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	out := &Map{
		keys: slices.Clone(m.keys),
		vals: make(map[string]Node, len(m.vals)),
	}
	for k, v := range m.vals {
		out.vals[k] = Clone(v)
	}
	return out
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v := m.vals[k]
		if v == nil {
			v = Null{}
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (m *Map) UnmarshalJSON(data []byte) error {
	n, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	src, ok := n.(*Map)
	if !ok {
		return fmt.Errorf("expected a JSON object, got %s", TypeName(n))
	}
	*m = *src
	return nil
}
