package prepare

import (
	"slices"
	"strings"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
)

// Inherit replaces every map carrying "$extends" with the left fold of
// [config.Extend] over its ancestors and itself, so that nearer definitions
// win. "$extends" holds one dotted path into root or a list of them.
//
// Ancestors are collected breadth-first: the direct parents in the order
// given, then their parents, and so on. Each one found is prepended to the
// fold, making later-discovered ancestors the more general ones. Ancestor
// subtrees are themselves resolved, so no "$extends" survives the pass.
//
// A reference that names nothing is UNKNOWN_REFERENCE; a chain that leads
// back to a node already being resolved is CIRCULAR_INHERITANCE.
func Inherit(root config.Node) (config.Node, error) {
	in := &inheritor{root: root}
	return in.walk(root, config.Root, nil)
}

type inheritor struct {
	root config.Node
}

// candidate is a pending ancestor together with the resolution chain that
// reached it.
type candidate struct {
	target string
	chain  []string
}

func (in *inheritor) walk(n config.Node, base config.Path, active []string) (config.Node, error) {
	return traverse(n, base, func(n config.Node, path config.Path) (config.Node, error) {
		m, ok := n.(*config.Map)
		if !ok || !m.Has(ExtendsKey) {
			return n, nil
		}
		return in.resolve(m, path, active)
	})
}

func (in *inheritor) resolve(m *config.Map, path config.Path, active []string) (config.Node, error) {
	at := path.Key(ExtendsKey)
	targets, err := extendsTargets(m.Value(ExtendsKey), at)
	if err != nil {
		return nil, err
	}

	self := m.Clone()
	self.Delete(ExtendsKey)
	list := []config.Node{self}

	origin := append(slices.Clone(active), path.String())
	queue := make([]candidate, 0, len(targets))
	for _, t := range targets {
		queue = append(queue, candidate{target: t, chain: origin})
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		if slices.Contains(c.chain, c.target) {
			return nil, errors.New(errors.ErrCodeCircularInheritance,
				"circular inheritance: %s -> %s", strings.Join(c.chain, " -> "), c.target).At(at)
		}
		targetPath := config.ParsePath(c.target)
		raw := config.Lookup(in.root, targetPath)
		if raw == nil {
			return nil, errors.New(errors.ErrCodeUnknownReference,
				"%q does not name a valid inheritance target", c.target).At(at)
		}

		chain := append(slices.Clone(c.chain), c.target)
		ancestor := raw
		if am, ok := raw.(*config.Map); ok && am.Has(ExtendsKey) {
			parents, err := extendsTargets(am.Value(ExtendsKey), targetPath.Key(ExtendsKey))
			if err != nil {
				return nil, err
			}
			for _, p := range parents {
				queue = append(queue, candidate{target: p, chain: chain})
			}
			am = am.Clone()
			am.Delete(ExtendsKey)
			ancestor = am
		}

		resolved, err := in.walk(ancestor, targetPath, chain)
		if err != nil {
			return nil, err
		}
		list = append([]config.Node{resolved}, list...)
	}

	return config.Extend(list...), nil
}

func extendsTargets(n config.Node, path config.Path) ([]string, error) {
	if s, ok := n.(config.String); ok {
		return []string{string(s)}, nil
	}
	return config.StringList(n, path)
}
