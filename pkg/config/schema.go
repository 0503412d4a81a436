package config

import (
	"slices"
	"strings"

	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
)

// AsMap returns n as a map or a TYPE_MISMATCH error located at path.
func AsMap(n Node, path Path) (*Map, error) {
	m, ok := n.(*Map)
	if !ok {
		return nil, typeError(path, "object", n)
	}
	return m, nil
}

// OptionalMap is like [AsMap] but treats an absent or null node as an empty map.
func OptionalMap(n Node, path Path) (*Map, error) {
	if IsNull(n) {
		return NewMap(), nil
	}
	return AsMap(n, path)
}

// Unexpected rejects any key of m outside allowed.
func Unexpected(m *Map, path Path, allowed ...string) error {
	for _, k := range m.Keys() {
		if !slices.Contains(allowed, k) {
			return errors.New(errors.ErrCodeUnexpectedKey,
				"unexpected key %q (allowed: %s)", k, strings.Join(allowed, ", ")).At(path)
		}
	}
	return nil
}

// Closed checks that n is a map containing only allowed keys and returns it.
func Closed(n Node, path Path, allowed ...string) (*Map, error) {
	m, err := AsMap(n, path)
	if err != nil {
		return nil, err
	}
	if err := Unexpected(m, path, allowed...); err != nil {
		return nil, err
	}
	return m, nil
}

// AsBool returns n as a bool. An absent or null node yields def.
func AsBool(n Node, path Path, def bool) (bool, error) {
	if IsNull(n) {
		return def, nil
	}
	b, ok := n.(Bool)
	if !ok {
		return false, typeError(path, "boolean", n)
	}
	return bool(b), nil
}

// AsString returns n as a string.
func AsString(n Node, path Path) (string, error) {
	s, ok := n.(String)
	if !ok {
		return "", typeError(path, "string", n)
	}
	return string(s), nil
}

// AsList returns n as a list.
func AsList(n Node, path Path) (List, error) {
	l, ok := n.(List)
	if !ok {
		return nil, typeError(path, "array", n)
	}
	return l, nil
}

// StringList returns n as a list of strings. Null entries become "".
func StringList(n Node, path Path) ([]string, error) {
	l, err := AsList(n, path)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(l))
	for i, e := range l {
		if IsNull(e) {
			continue
		}
		s, ok := e.(String)
		if !ok {
			return nil, errors.New(errors.ErrCodeTypeMismatch,
				"should contain strings, found %s", TypeName(e)).At(path.Index(i))
		}
		out[i] = string(s)
	}
	return out, nil
}

// OneOf checks that s is one of allowed.
func OneOf(s string, path Path, allowed ...string) error {
	if !slices.Contains(allowed, s) {
		return errors.New(errors.ErrCodeInvalidValue,
			"%q should be one of [%s]", s, strings.Join(allowed, ", ")).At(path)
	}
	return nil
}

func typeError(path Path, want string, got Node) error {
	return errors.New(errors.ErrCodeTypeMismatch,
		"should be of type %s, found %s", want, TypeName(got)).At(path)
}
