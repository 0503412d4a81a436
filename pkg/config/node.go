package config

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies the variant held by a [Node].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// String returns the name used for a kind in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "array"
	case KindMap:
		return "object"
	}
	return "unknown"
}

// Node is a config tree value. A nil Node means "absent".
type Node interface {
	Kind() Kind
}

// Null is an explicit null value.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Number is a numeric scalar.
type Number float64

// String is a string scalar.
type String string

// List is an ordered sequence of nodes.
type List []Node

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }

// MarshalJSON encodes Null as JSON null.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON encodes the list, keeping nil entries as null.
func (l List) MarshalJSON() ([]byte, error) {
	out := make([]any, len(l))
	for i, n := range l {
		if n == nil {
			out[i] = Null{}
			continue
		}
		out[i] = n
	}
	return json.Marshal(out)
}

// TypeName returns the kind name of n, or "undefined" when n is absent.
func TypeName(n Node) string {
	if n == nil {
		return "undefined"
	}
	return n.Kind().String()
}

// IsNull reports whether n is absent or an explicit null.
func IsNull(n Node) bool {
	return n == nil || n.Kind() == KindNull
}

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Map:
		return v.Clone()
	case List:
		out := make(List, len(v))
		for i, e := range v {
			out[i] = Clone(e)
		}
		return out
	}
	return n
}

// Equal reports whether a and b are structurally equal.
// Map key order is not significant.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Map:
		bv := b.(*Map)
		if av.Len() != bv.Len() {
			return false
		}
		for k, v := range av.All() {
			w, ok := bv.Get(k)
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

// Text renders a scalar the way it reads in a config file. Numbers use the
// shortest representation that round-trips; non-scalars are JSON encoded.
func Text(n Node) string {
	switch v := n.(type) {
	case nil, Null:
		return ""
	case String:
		return string(v)
	case Bool:
		return strconv.FormatBool(bool(v))
	case Number:
		return FormatNumber(float64(v))
	}
	data, err := json.Marshal(n)
	if err != nil {
		return ""
	}
	return string(data)
}

// FormatNumber formats f without a trailing ".0" for whole numbers.
func FormatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
