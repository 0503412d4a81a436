package units

import (
	"math"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/expr"
)

// Number coerces n to a float. Numbers pass through; strings are evaluated
// as expressions against u. Anything else is a TYPE_MISMATCH.
func (u *Units) Number(n config.Node, path config.Path) (float64, error) {
	switch v := n.(type) {
	case config.Number:
		return float64(v), nil
	case config.String:
		f, err := expr.Eval(string(v), u)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidExpression, err,
				"could not evaluate %q", string(v)).At(path)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, errors.New(errors.ErrCodeInvalidExpression,
				"%q evaluates to %v", string(v), f).At(path)
		}
		return f, nil
	}
	return 0, errors.New(errors.ErrCodeTypeMismatch,
		"should be a number or expression, found %s", config.TypeName(n)).At(path)
}

// NumberOr is like [Units.Number] but yields def for an absent or null node.
func (u *Units) NumberOr(n config.Node, path config.Path, def float64) (float64, error) {
	if config.IsNull(n) {
		return def, nil
	}
	return u.Number(n, path)
}

// IsNumber reports whether n coerces to a number without error.
func (u *Units) IsNumber(n config.Node) bool {
	_, err := u.Number(n, config.Root)
	return err == nil
}

// XY coerces a two-element list of numbers.
func (u *Units) XY(n config.Node, path config.Path) ([2]float64, error) {
	var out [2]float64
	l, ok := n.(config.List)
	if !ok || len(l) != 2 {
		return out, errors.New(errors.ErrCodeTypeMismatch,
			"should be an array of 2 numbers, found %s", config.TypeName(n)).At(path)
	}
	for i := range out {
		f, err := u.Number(l[i], path.Index(i))
		if err != nil {
			return out, err
		}
		out[i] = f
	}
	return out, nil
}

// WH coerces a width/height pair. A single number applies to both.
func (u *Units) WH(n config.Node, path config.Path) ([2]float64, error) {
	if _, ok := n.(config.List); !ok {
		f, err := u.Number(n, path)
		if err != nil {
			return [2]float64{}, err
		}
		return [2]float64{f, f}, nil
	}
	return u.XY(n, path)
}

// TRBL coerces a top/right/bottom/left tuple. A single number applies to
// all sides, and a pair [v, h] expands to [v, h, v, h].
func (u *Units) TRBL(n config.Node, path config.Path) ([4]float64, error) {
	var out [4]float64
	l, ok := n.(config.List)
	if !ok {
		f, err := u.Number(n, path)
		if err != nil {
			return out, err
		}
		return [4]float64{f, f, f, f}, nil
	}
	if len(l) != 2 && len(l) != 4 {
		return out, errors.New(errors.ErrCodeTypeMismatch,
			"should be a number or an array of 2 or 4 numbers, found %d elements", len(l)).At(path)
	}
	for i := range out {
		f, err := u.Number(l[i%len(l)], path.Index(i%len(l)))
		if err != nil {
			return out, err
		}
		out[i] = f
	}
	return out, nil
}
