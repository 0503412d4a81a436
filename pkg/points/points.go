// Package points lays out key zones into a named set of points.
//
// Zones are processed in declaration order. Each zone's anchor may refer
// to points of earlier zones. Within a zone, columns advance by spread and
// stagger, splay turns the current and all later columns, and rows advance
// by padding along the running key's own y-axis:
//
//	points:
//	  zones:
//	    matrix:
//	      columns:
//	        pinky:
//	        ring.key.stagger: 5
//	      rows:
//	        bottom:
//	        home:
//
// produces matrix_pinky_bottom, matrix_pinky_home, matrix_ring_bottom and
// matrix_ring_home. Zones may be rotated and mirrored, and a final pass
// binds neighbouring keys (see [Autobind]).
package points

import (
	"github.com/fcoury/ergogen-rs-sub000/pkg/anchor"
	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
	"github.com/fcoury/ergogen-rs-sub000/pkg/units"
)

// Layout lays out the "points" clause of a prepared config root.
func Layout(root *config.Map, u *units.Units) (*Set, error) {
	n := root.Value("points")
	if config.IsNull(n) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "config has no points clause")
	}
	return Parse(n, u)
}

// Parse lays out a points clause. The first failure aborts the whole
// layout; no partial set is returned.
func Parse(n config.Node, u *units.Units) (*Set, error) {
	path := config.Path{"points"}
	cfg, err := config.Closed(n, path, "zones", "key", "rotate", "mirror")
	if err != nil {
		return nil, err
	}
	zones, err := config.AsMap(cfg.Value("zones"), path.Key("zones"))
	if err != nil {
		return nil, err
	}
	globalKey, err := config.OptionalMap(cfg.Value("key"), path.Key("key"))
	if err != nil {
		return nil, err
	}
	globalRotate, err := u.NumberOr(cfg.Value("rotate"), path.Key("rotate"), 0)
	if err != nil {
		return nil, err
	}

	pts := NewSet()
	for name, raw := range zones.All() {
		if err := layoutZone(pts, name, raw, globalKey, u); err != nil {
			return nil, err
		}
	}

	if globalRotate != 0 {
		for _, p := range pts.Points() {
			p.Rotate(globalRotate, &[2]float64{}, false)
		}
	}

	axis, ok, err := parseAxis(cfg.Value("mirror"), path.Key("mirror"), pts, u)
	if err != nil {
		return nil, err
	}
	if ok {
		var pending []*point.Point
		for _, p := range pts.Points() {
			if p.Meta.Mirrored == nil {
				pending = append(pending, p)
			}
		}
		if err := mirrorInto(pts, pending, axis, path.Key("mirror"), u); err != nil {
			return nil, err
		}
	}

	out := pts.Filter(func(p *point.Point) bool { return !p.Meta.Skip })
	if out.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout produced no points").At(path)
	}
	Autobind(out)
	return out, nil
}

// layoutZone renders one zone and folds its points, then their mirror
// images, into pts.
func layoutZone(pts *Set, name string, raw config.Node, globalKey *config.Map, u *units.Units) error {
	path := config.Path{"points", "zones", name}
	zcfg, err := config.OptionalMap(raw, path)
	if err != nil {
		return err
	}

	origin, err := anchor.New(pts, u).Resolve(zcfg.Value("anchor"), path.Key("anchor"), point.Origin(), false)
	if err != nil {
		return err
	}
	rotate, err := u.NumberOr(zcfg.Value("rotate"), path.Key("rotate"), 0)
	if err != nil {
		return err
	}
	mirror := zcfg.Value("mirror")

	body := zcfg.Clone()
	body.Delete("anchor")
	body.Delete("rotate")
	body.Delete("mirror")

	z := &zone{name: name, path: path, cfg: body, globalKey: globalKey, units: u}
	created, err := z.render(origin)
	if err != nil {
		return err
	}

	for _, p := range created {
		if pts.Has(p.Meta.Name) {
			return errors.New(errors.ErrCodeDuplicatePoint,
				"point %q defined more than once", p.Meta.Name).At(path)
		}
		if rotate != 0 {
			p.Rotate(rotate, &[2]float64{}, false)
		}
	}
	for _, p := range created {
		if err := pts.Add(p); err != nil {
			return err
		}
	}

	axis, ok, err := parseAxis(mirror, path.Key("mirror"), pts, u)
	if err != nil || !ok {
		return err
	}
	return mirrorInto(pts, created, axis, path.Key("mirror"), u)
}
