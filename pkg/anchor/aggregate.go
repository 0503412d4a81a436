package anchor

import (
	"math"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
)

// IntersectReach is how far each intersect line extends from its point in
// either direction.
const IntersectReach = 1000

type aggregator func(parts []*point.Point, path config.Path) (*point.Point, error)

var aggregators = map[string]aggregator{
	"average":   average,
	"intersect": intersect,
}

func (r *Resolver) aggregate(n config.Node, path config.Path, start *point.Point, mirror bool) (*point.Point, error) {
	m, err := config.Closed(n, path, "parts", "method")
	if err != nil {
		return nil, err
	}

	method := "average"
	if v := m.Value("method"); v != nil {
		if method, err = config.AsString(v, path.Key("method")); err != nil {
			return nil, err
		}
	}
	fn, ok := aggregators[method]
	if !ok {
		return nil, config.OneOf(method, path.Key("method"), "average", "intersect")
	}

	var raw config.List
	if v := m.Value("parts"); !config.IsNull(v) {
		if raw, err = config.AsList(v, path.Key("parts")); err != nil {
			return nil, err
		}
	}
	parts := make([]*point.Point, len(raw))
	for i, part := range raw {
		if parts[i], err = r.Resolve(part, path.Key("parts").Index(i), start, mirror); err != nil {
			return nil, err
		}
	}
	return fn(parts, path)
}

func average(parts []*point.Point, _ config.Path) (*point.Point, error) {
	p := point.Origin()
	if len(parts) == 0 {
		return p, nil
	}
	for _, part := range parts {
		p.X += part.X
		p.Y += part.Y
		p.R += part.R
	}
	n := float64(len(parts))
	p.X /= n
	p.Y /= n
	p.R /= n
	return p, nil
}

// intersect finds where the y-axes of two points cross. Each axis is a
// segment reaching IntersectReach in both directions from its point.
func intersect(parts []*point.Point, path config.Path) (*point.Point, error) {
	if len(parts) != 2 {
		return nil, errors.New(errors.ErrCodeArityMismatch,
			"intersect expects exactly two parts, got %d", len(parts)).At(path.Key("parts"))
	}
	a, b := parts[0], parts[1]
	da := point.RotateVector([2]float64{0, 1}, a.R)
	db := point.RotateVector([2]float64{0, 1}, b.R)

	cross := da[0]*db[1] - da[1]*db[0]
	if math.Abs(cross) < point.Epsilon {
		return nil, errors.New(errors.ErrCodeNoIntersection, "parts do not intersect (parallel)").At(path.Key("parts"))
	}
	wx, wy := b.X-a.X, b.Y-a.Y
	t := (wx*db[1] - wy*db[0]) / cross
	s := (wx*da[1] - wy*da[0]) / cross
	if math.Abs(t) > IntersectReach+point.Epsilon || math.Abs(s) > IntersectReach+point.Epsilon {
		return nil, errors.New(errors.ErrCodeNoIntersection, "parts do not intersect").At(path.Key("parts"))
	}
	return point.New(a.X+t*da[0], a.Y+t*da[1], 0, point.NewMeta()), nil
}
