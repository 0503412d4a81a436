package prepare

import (
	"strings"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
)

// Unnest expands every map key containing a dot into nested maps. Keys are
// processed in order, so a later key overwrites an earlier value at the
// same position while sibling keys of a shared prefix are merged.
func Unnest(root config.Node) (config.Node, error) {
	return traverse(root, config.Root, func(n config.Node, path config.Path) (config.Node, error) {
		m, ok := n.(*config.Map)
		if !ok {
			return n, nil
		}
		return unnestMap(m, path)
	})
}

func unnestMap(m *config.Map, path config.Path) (*config.Map, error) {
	out := config.NewMap()
	for k, v := range m.All() {
		if !strings.Contains(k, ".") {
			out.Set(k, v)
			continue
		}
		parts := strings.Split(k, ".")
		cur := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur.Get(p)
			if !ok {
				nm := config.NewMap()
				cur.Set(p, nm)
				cur = nm
				continue
			}
			nm, isMap := next.(*config.Map)
			if !isMap {
				return nil, errors.New(errors.ErrCodeTypeMismatch,
					"cannot nest under %q, which is of type %s", p, config.TypeName(next)).At(path.Key(k))
			}
			cur = nm
		}
		cur.Set(parts[len(parts)-1], v)
	}
	return out, nil
}
