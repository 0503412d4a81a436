package config

import (
	"strconv"
	"strings"
)

// Path is a breadcrumb trail into a config tree. Paths are values: Key and
// Index return extended copies and never modify the receiver.
type Path []string

// Root is the empty path.
var Root = Path(nil)

// ParsePath splits a dotted path such as "points.zones.matrix".
func ParsePath(s string) Path {
	if s == "" {
		return Root
	}
	return Path(strings.Split(s, "."))
}

// Key returns p extended by a map key.
func (p Path) Key(k string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, k)
}

// Index returns p extended by a list index.
func (p Path) Index(i int) Path {
	return p.Key("[" + strconv.Itoa(i) + "]")
}

// String renders p in dot/bracket notation, e.g. "points.zones[0].anchor".
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Lookup walks p from root and returns the node found there, or nil.
// Index segments address list elements.
func Lookup(root Node, p Path) Node {
	cur := root
	for _, seg := range p {
		switch v := cur.(type) {
		case *Map:
			cur = v.Value(seg)
		case List:
			if !strings.HasPrefix(seg, "[") || !strings.HasSuffix(seg, "]") {
				return nil
			}
			i, err := strconv.Atoi(seg[1 : len(seg)-1])
			if err != nil || i < 0 || i >= len(v) {
				return nil
			}
			cur = v[i]
		default:
			return nil
		}
	}
	return cur
}
