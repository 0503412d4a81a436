package config

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// FromValue converts a plain Go value (as produced by encoding/json or a
// TOML/YAML decoder into any) into a Node. Maps with unordered keys are
// converted in sorted key order. Unsupported values become their %v text.
func FromValue(v any) Node {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Node:
		return t
	case bool:
		return Bool(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case string:
		return String(t)
	case time.Time:
		return String(t.Format(time.RFC3339))
	case []any:
		out := make(List, len(t))
		for i, e := range t {
			out[i] = FromValue(e)
		}
		return out
	case []string:
		out := make(List, len(t))
		for i, e := range t {
			out[i] = String(e)
		}
		return out
	case []map[string]any:
		out := make(List, len(t))
		for i, e := range t {
			out[i] = FromValue(e)
		}
		return out
	case map[string]any:
		m := NewMap()
		for _, k := range slices.Sorted(maps.Keys(t)) {
			m.Set(k, FromValue(t[k]))
		}
		return m
	}
	return String(fmt.Sprintf("%v", v))
}

// ToValue converts a Node into plain Go values: nil, bool, float64, string,
// []any and map[string]any. Map order is lost.
func ToValue(n Node) any {
	switch v := n.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(v)
	case Number:
		return float64(v)
	case String:
		return string(v)
	case List:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = ToValue(e)
		}
		return out
	case *Map:
		out := make(map[string]any, v.Len())
		for k, e := range v.All() {
			out[k] = ToValue(e)
		}
		return out
	}
	return nil
}
