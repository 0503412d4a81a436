// Package prepare expands the macro constructs of a raw config tree.
//
// Three passes run in a fixed order:
//
//   - [Unnest] expands dotted keys ("a.b.c": v becomes {a: {b: {c: v}}}).
//   - [Inherit] resolves "$extends" references against the root tree.
//   - [Parameterize] instantiates "$params"/"$args" templates and drops
//     uninstantiated template definitions and "$skip" nodes.
//
// Each pass returns a new tree; the input is never modified. The first
// violation aborts the pass with an error carrying the breadcrumb path of
// the offending node.
package prepare

import "github.com/fcoury/ergogen-rs-sub000/pkg/config"

// Special keys recognized on map nodes.
const (
	ExtendsKey = "$extends"
	ParamsKey  = "$params"
	ArgsKey    = "$args"
	SkipKey    = "$skip"
)

// Prepare runs all three passes over root.
func Prepare(root config.Node) (config.Node, error) {
	out, err := Unnest(root)
	if err != nil {
		return nil, err
	}
	if out, err = Inherit(out); err != nil {
		return nil, err
	}
	return Parameterize(out)
}

// visitFunc rewrites a node whose children have already been visited.
// Returning nil removes the node from its parent.
type visitFunc func(n config.Node, path config.Path) (config.Node, error)

// traverse rebuilds n bottom-up, calling fn on every node after its children.
func traverse(n config.Node, path config.Path, fn visitFunc) (config.Node, error) {
	switch v := n.(type) {
	case *config.Map:
		out := config.NewMap()
		for k, child := range v.All() {
			c, err := traverse(child, path.Key(k), fn)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out.Set(k, c)
			}
		}
		n = out
	case config.List:
		out := make(config.List, 0, len(v))
		for i, child := range v {
			c, err := traverse(child, path.Index(i), fn)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out = append(out, c)
			}
		}
		n = out
	}
	return fn(n, path)
}
