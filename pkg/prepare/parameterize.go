package prepare

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
)

// Parameterize instantiates templates.
//
// A map with both "$params" and "$args" has each parameter substituted by
// the argument at the same index. Substitution is structural: a string
// equal to a parameter name is replaced by a copy of the argument node,
// and a parameter occurring inside a longer string or a map key is
// replaced by the argument's text. Longer parameter names take precedence
// over their prefixes.
//
// A map with "$params" but no "$args" is a template definition and is
// removed, as is any map with "$skip: true". "$args" without "$params"
// is an error.
func Parameterize(root config.Node) (config.Node, error) {
	return traverse(root, config.Root, func(n config.Node, path config.Path) (config.Node, error) {
		m, ok := n.(*config.Map)
		if !ok {
			return n, nil
		}
		return instantiate(m, path)
	})
}

func instantiate(m *config.Map, path config.Path) (config.Node, error) {
	if m.Has(SkipKey) {
		skip, err := config.AsBool(m.Value(SkipKey), path.Key(SkipKey), false)
		if err != nil {
			return nil, err
		}
		if skip {
			return nil, nil
		}
		m = m.Clone()
		m.Delete(SkipKey)
	}

	hasParams, hasArgs := m.Has(ParamsKey), m.Has(ArgsKey)
	switch {
	case !hasParams && !hasArgs:
		return m, nil
	case !hasParams:
		return nil, errors.New(errors.ErrCodeInvalidTemplate,
			"%s given without %s", ArgsKey, ParamsKey).At(path.Key(ArgsKey))
	case !hasArgs:
		return nil, nil
	}

	params, err := config.StringList(m.Value(ParamsKey), path.Key(ParamsKey))
	if err != nil {
		return nil, err
	}
	args, err := config.AsList(m.Value(ArgsKey), path.Key(ArgsKey))
	if err != nil {
		return nil, err
	}
	if len(params) != len(args) {
		return nil, errors.New(errors.ErrCodeArityMismatch,
			"%d parameters but %d arguments", len(params), len(args)).At(path)
	}

	body := m.Clone()
	body.Delete(ParamsKey)
	body.Delete(ArgsKey)

	s := newSubstituter(params, args)
	return s.node(body, path)
}

type substituter struct {
	exact    map[string]config.Node
	replacer *strings.Replacer
}

func newSubstituter(params []string, args config.List) *substituter {
	s := &substituter{exact: make(map[string]config.Node, len(params))}
	order := make([]int, len(params))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(len(params[b]), len(params[a]))
	})

	pairs := make([]string, 0, 2*len(params))
	for _, i := range order {
		p := params[i]
		if p == "" {
			continue
		}
		if _, dup := s.exact[p]; dup {
			continue
		}
		s.exact[p] = args[i]
		pairs = append(pairs, p, config.Text(args[i]))
	}
	s.replacer = strings.NewReplacer(pairs...)
	return s
}

func (s *substituter) node(n config.Node, path config.Path) (config.Node, error) {
	switch v := n.(type) {
	case config.String:
		if arg, ok := s.exact[string(v)]; ok {
			return config.Clone(arg), nil
		}
		return config.String(s.replacer.Replace(string(v))), nil
	case config.List:
		out := make(config.List, len(v))
		for i, e := range v {
			r, err := s.node(e, path.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case *config.Map:
		out := config.NewMap()
		for k, e := range v.All() {
			key := s.replacer.Replace(k)
			if out.Has(key) {
				return nil, errors.New(errors.ErrCodeInvalidTemplate,
					"substitution produced duplicate key %q", key).At(path.Key(k))
			}
			r, err := s.node(e, path.Key(k))
			if err != nil {
				return nil, err
			}
			out.Set(key, r)
		}
		return out, nil
	}
	return n, nil
}
