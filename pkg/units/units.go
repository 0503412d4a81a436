// Package units builds the units dictionary and coerces numeric config
// fields through it.
//
// A units dictionary maps names such as "u" or "$default_spread" to
// resolved numbers. It is seeded with built-in defaults, overlaid with the
// config's "units" and then "variables" maps, and evaluated in declaration
// order so that later entries may reference earlier ones:
//
//	units:
//	  kx: u + 1
//	  ky: kx - 2
//
// The dictionary is immutable once [Parse] returns.
package units

import (
	"encoding/json"
	"slices"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/expr"
)

// Defaults returns the built-in unit entries, in evaluation order.
func Defaults() *config.Map {
	return config.MapOf(
		"U", 19.05,
		"u", 19,
		"cx", 18,
		"cy", 17,
		"$default_stagger", 0,
		"$default_spread", "u",
		"$default_splay", 0,
		"$default_height", "u-1",
		"$default_width", "u-1",
		"$default_padding", "u",
		"$default_autobind", 10,
	)
}

// Units is an ordered, resolved units dictionary. It implements [expr.Scope].
type Units struct {
	names  []string
	values map[string]float64
}

// New returns a dictionary holding exactly the given values, in the given
// name order. Names missing from values are ignored.
func New(names []string, values map[string]float64) *Units {
	u := &Units{values: make(map[string]float64, len(values))}
	for _, n := range names {
		if v, ok := values[n]; ok {
			u.set(n, v)
		}
	}
	return u
}

// Parse builds the units dictionary from a config root. Both "units" and
// "variables" are optional objects; variables win over units, and both win
// over the defaults.
func Parse(root *config.Map) (*Units, error) {
	user, err := config.OptionalMap(root.Value("units"), config.Path{"units"})
	if err != nil {
		return nil, err
	}
	vars, err := config.OptionalMap(root.Value("variables"), config.Path{"variables"})
	if err != nil {
		return nil, err
	}
	merged := config.Extend(Defaults(), user, vars).(*config.Map)

	u := &Units{values: make(map[string]float64, merged.Len())}
	for name, val := range merged.All() {
		path := config.Path{"units", name}
		if vars.Has(name) {
			path = config.Path{"variables", name}
		}
		if _, isList := val.(config.List); isList {
			return nil, errors.New(errors.ErrCodeTypeMismatch,
				"unit should be a number or expression, found array").At(path)
		}
		f, err := u.Number(val, path)
		if err != nil {
			return nil, err
		}
		u.set(name, f)
	}
	return u, nil
}

func (u *Units) set(name string, v float64) {
	if _, ok := u.values[name]; !ok {
		u.names = append(u.names, name)
	}
	u.values[name] = v
}

// Lookup implements [expr.Scope].
func (u *Units) Lookup(name string) (float64, bool) {
	if u == nil {
		return 0, false
	}
	v, ok := u.values[name]
	return v, ok
}

// Get returns the value of name, or 0 if it is not defined.
func (u *Units) Get(name string) float64 {
	v, _ := u.Lookup(name)
	return v
}

// Names returns unit names in declaration order.
func (u *Units) Names() []string { return slices.Clone(u.names) }

// Len returns the number of units.
func (u *Units) Len() int { return len(u.names) }

// Map returns a copy of the dictionary as a plain map.
func (u *Units) Map() map[string]float64 {
	out := make(map[string]float64, len(u.values))
	for k, v := range u.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the dictionary as an object in declaration order.
func (u *Units) MarshalJSON() ([]byte, error) {
	m := config.NewMap()
	for _, n := range u.names {
		m.Set(n, config.Number(u.values[n]))
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object of numbers, keeping key order.
func (u *Units) UnmarshalJSON(data []byte) error {
	n, err := config.DecodeJSON(data)
	if err != nil {
		return err
	}
	m, err := config.AsMap(n, config.Path{"units"})
	if err != nil {
		return err
	}
	*u = Units{values: make(map[string]float64, m.Len())}
	for k, v := range m.All() {
		f, ok := v.(config.Number)
		if !ok {
			return errors.New(errors.ErrCodeTypeMismatch, "unit should be a number").At(config.Path{"units", k})
		}
		u.set(k, float64(f))
	}
	return nil
}

var _ expr.Scope = (*Units)(nil)
