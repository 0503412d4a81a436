// Package anchor resolves anchor specifications into points.
//
// An anchor describes a pose relative to already placed points:
//
//	anchor:
//	  ref: matrix_inner_home    # start from a named point
//	  shift: [0.5u, -1u]        # move in its frame
//	  rotate: -15               # then turn
//
// A plain string is shorthand for {ref: ...}, and a list chains anchors,
// each step starting from the result of the previous one. Instead of ref,
// an "aggregate" combines several anchors by averaging them or by
// intersecting their y-axes. After the base is found, orient, shift,
// rotate and affect are applied in that order.
package anchor

import (
	"strings"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
	"github.com/fcoury/ergogen-rs-sub000/pkg/units"
)

// Points looks up already resolved points by name.
type Points interface {
	Lookup(name string) (*point.Point, bool)
}

// Map is a Points backed by a plain map.
type Map map[string]*point.Point

// Lookup implements Points.
func (m Map) Lookup(name string) (*point.Point, bool) {
	p, ok := m[name]
	return p, ok
}

var anchorKeys = []string{"ref", "aggregate", "orient", "shift", "rotate", "affect", "resist"}

// Resolver evaluates anchors against a snapshot of points and a units
// dictionary. It never modifies the points it reads.
type Resolver struct {
	Points Points
	Units  *units.Units
}

// New returns a Resolver. A nil pts resolves no references.
func New(pts Points, u *units.Units) *Resolver {
	if pts == nil {
		pts = Map{}
	}
	return &Resolver{Points: pts, Units: u}
}

// Resolve evaluates raw starting from start. When mirror is set, named
// references are looked up on the opposite mirror side. The returned point
// is always a fresh value; start is not modified.
func (r *Resolver) Resolve(raw config.Node, path config.Path, start *point.Point, mirror bool) (*point.Point, error) {
	if start == nil {
		start = point.Origin()
	}
	switch v := raw.(type) {
	case nil, config.Null:
		return start.Clone(), nil
	case config.List:
		cur := start.Clone()
		for i, step := range v {
			next, err := r.Resolve(step, path.Index(i), cur, mirror)
			if err != nil {
				return nil, err
			}
			cur = next
		}
		return cur, nil
	case config.String:
		return r.resolveMap(config.MapOf("ref", string(v)), path, start, mirror)
	case *config.Map:
		return r.resolveMap(v, path, start, mirror)
	}
	return nil, errors.New(errors.ErrCodeTypeMismatch,
		"anchor should be a string, an object or an array, found %s", config.TypeName(raw)).At(path)
}

func (r *Resolver) resolveMap(m *config.Map, path config.Path, start *point.Point, mirror bool) (*point.Point, error) {
	if err := config.Unexpected(m, path, anchorKeys...); err != nil {
		return nil, err
	}
	resist, err := config.AsBool(m.Value("resist"), path.Key("resist"), false)
	if err != nil {
		return nil, err
	}

	ref, agg := m.Value("ref"), m.Value("aggregate")
	if ref != nil && agg != nil {
		return nil, errors.New(errors.ErrCodeAmbiguousSpec,
			`fields "ref" and "aggregate" cannot appear together`).At(path)
	}

	p := start.Clone()
	switch {
	case ref != nil:
		if p, err = r.reference(ref, path.Key("ref"), start, mirror); err != nil {
			return nil, err
		}
	case agg != nil:
		if p, err = r.aggregate(agg, path.Key("aggregate"), start, mirror); err != nil {
			return nil, err
		}
	}

	if n := m.Value("orient"); n != nil {
		if err := r.rotator(n, path.Key("orient"), p, start, mirror, resist); err != nil {
			return nil, err
		}
	}
	if n := m.Value("shift"); n != nil {
		s, err := r.Units.WH(n, path.Key("shift"))
		if err != nil {
			return nil, err
		}
		p.Shift(s, true, resist)
	}
	if n := m.Value("rotate"); n != nil {
		if err := r.rotator(n, path.Key("rotate"), p, start, mirror, resist); err != nil {
			return nil, err
		}
	}
	if n := m.Value("affect"); n != nil {
		if p, err = affect(n, path.Key("affect"), p, start); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *Resolver) reference(n config.Node, path config.Path, start *point.Point, mirror bool) (*point.Point, error) {
	s, ok := n.(config.String)
	if !ok {
		return r.Resolve(n, path, start, mirror)
	}
	name := point.MirrorName(string(s), mirror)
	p, ok := r.Points.Lookup(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownReference, "unknown point reference %q", name).At(path)
	}
	return p.Clone(), nil
}

// rotator applies a numeric rotation, or aims p at a target anchor.
func (r *Resolver) rotator(n config.Node, path config.Path, p, start *point.Point, mirror, resist bool) error {
	if r.Units.IsNumber(n) {
		angle, err := r.Units.Number(n, path)
		if err != nil {
			return err
		}
		p.Rotate(angle, nil, resist)
		return nil
	}
	target, err := r.Resolve(n, path, start, mirror)
	if err != nil {
		return err
	}
	p.R = p.Angle(target)
	return nil
}

func affect(n config.Node, path config.Path, candidate, start *point.Point) (*point.Point, error) {
	var comps []string
	if s, ok := n.(config.String); ok {
		comps = strings.Split(string(s), "")
	} else {
		var err error
		if comps, err = config.StringList(n, path); err != nil {
			return nil, err
		}
	}

	p := start.Clone()
	p.Meta = candidate.Meta
	for i, c := range comps {
		switch c {
		case "x":
			p.X = candidate.X
		case "y":
			p.Y = candidate.Y
		case "r":
			p.R = candidate.R
		default:
			return nil, config.OneOf(c, path.Index(i), "x", "y", "r")
		}
	}
	return p, nil
}
