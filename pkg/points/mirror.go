package points

import (
	"github.com/fcoury/ergogen-rs-sub000/pkg/anchor"
	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
	"github.com/fcoury/ergogen-rs-sub000/pkg/units"
)

// parseAxis resolves a mirror setting to the x position of the mirror
// axis. ok is false when no mirroring is requested.
//
// A number or expression is the axis itself, true means x = 0, and an
// object is an anchor whose x (plus half of an optional "distance") gives
// the axis.
func parseAxis(n config.Node, path config.Path, pts anchor.Points, u *units.Units) (axis float64, ok bool, err error) {
	switch v := n.(type) {
	case nil, config.Null:
		return 0, false, nil
	case config.Bool:
		return 0, bool(v), nil
	case config.Number, config.String:
		axis, err = u.Number(v, path)
		return axis, err == nil, err
	case *config.Map:
		spec := v.Clone()
		distance, err := u.NumberOr(spec.Value("distance"), path.Key("distance"), 0)
		if err != nil {
			return 0, false, err
		}
		spec.Delete("distance")
		p, err := anchor.New(pts, u).Resolve(spec, path, point.Origin(), false)
		if err != nil {
			return 0, false, err
		}
		return p.X + distance/2, true, nil
	}
	return 0, false, errors.New(errors.ErrCodeTypeMismatch,
		"mirror should be a boolean, a number or an anchor, found %s", config.TypeName(n)).At(path)
}

// mirrorPoint marks p as an original and returns its reflected
// counterpart, or nil when p is source-only. A clone-only original is
// marked to be skipped.
func mirrorPoint(p *point.Point, axis float64, path config.Path, u *units.Units) (*point.Point, error) {
	p.Meta.SetMirrored(false)
	if p.Meta.Asym == point.AsymSource {
		return nil, nil
	}

	mp := p.Clone().Mirror(axis)
	if !config.IsNull(p.Meta.Mirror) && p.Meta.Config != nil {
		overrides, err := config.AsMap(p.Meta.Mirror, path.Key("mirror"))
		if err != nil {
			return nil, err
		}
		cfg, err := config.AsMap(config.Extend(p.Meta.Config, overrides), path)
		if err != nil {
			return nil, err
		}
		if err := normalizeKey(cfg, path, u); err != nil {
			return nil, err
		}
		mp.Meta = metaFromKey(cfg)
	}

	mp.Meta.Name = point.ParseID(p.Meta.Name).Toggle().String()
	mp.Meta.Colrow = point.MirrorPrefix + p.Meta.Colrow
	if mp.Meta.Config != nil {
		mp.Meta.Config.Set("name", config.String(mp.Meta.Name))
		mp.Meta.Config.Set("colrow", config.String(mp.Meta.Colrow))
	}
	mp.Meta.SetMirrored(true)

	if p.Meta.Asym == point.AsymClone {
		p.Meta.Skip = true
	}
	return mp, nil
}

// mirrorInto mirrors each of src across axis and appends the counterparts
// to dst. A counterpart whose name is already taken is dropped.
func mirrorInto(dst *Set, src []*point.Point, axis float64, path config.Path, u *units.Units) error {
	for _, p := range src {
		mp, err := mirrorPoint(p, axis, path, u)
		if err != nil {
			return err
		}
		if mp == nil || dst.Has(mp.Meta.Name) {
			continue
		}
		if err := dst.Add(mp); err != nil {
			return err
		}
	}
	return nil
}
