package pipeline

import (
	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/points"
	"github.com/fcoury/ergogen-rs-sub000/pkg/prepare"
	"github.com/fcoury/ergogen-rs-sub000/pkg/units"
)

// Prepare decodes data and expands its macros. The root must be an object.
func Prepare(data []byte, format config.Format) (*config.Map, error) {
	raw, err := config.Decode(data, format)
	if err != nil {
		return nil, err
	}
	prepared, err := prepare.Prepare(raw)
	if err != nil {
		return nil, err
	}
	root, ok := prepared.(*config.Map)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"config root should be an object, found %s", config.TypeName(prepared))
	}
	return root, nil
}

// ParseUnits evaluates the units dictionary of a prepared root.
func ParseUnits(root *config.Map) (*units.Units, error) {
	return units.Parse(root)
}

// Layout lays out the points of a prepared root.
func Layout(root *config.Map, u *units.Units) (*points.Set, error) {
	return points.Layout(root, u)
}

// zoneCount returns how many zones the points clause declares.
func zoneCount(root *config.Map) int {
	p, ok := root.Value("points").(*config.Map)
	if !ok {
		return 0
	}
	z, ok := p.Value("zones").(*config.Map)
	if !ok {
		return 0
	}
	return z.Len()
}

// distinctZones counts the zones represented in a point set.
func distinctZones(s *points.Set) int {
	seen := make(map[string]bool)
	for _, p := range s.Points() {
		seen[p.Meta.Zone.Name] = true
	}
	return len(seen)
}
