package config

// Unset is the sentinel string that deletes a key during [Merge].
const Unset = "$unset"

// Merge deep-merges from onto to and returns the result.
// A nil result means "absent": the caller must delete the key.
func Merge(to, from Node) Node {
	if IsNull(from) {
		return Clone(to)
	}
	if s, ok := from.(String); ok && string(s) == Unset {
		return nil
	}
	if to == nil || to.Kind() != from.Kind() {
		return Clone(from)
	}
	switch f := from.(type) {
	case *Map:
		res := to.(*Map).Clone()
		for k, v := range f.All() {
			merged := Merge(res.Value(k), v)
			if merged == nil {
				res.Delete(k)
				continue
			}
			res.Set(k, merged)
		}
		return res
	case List:
		res := Clone(to).(List)
		for i, v := range f {
			var cur Node
			if i < len(res) {
				cur = res[i]
			}
			merged := Merge(cur, v)
			if merged == nil {
				merged = Null{}
			}
			if i < len(res) {
				res[i] = merged
			} else {
				res = append(res, merged)
			}
		}
		return res
	}
	return from
}

// Extend folds [Merge] over nodes from left to right, so later nodes win.
// A node that is the very same map as the running result is skipped.
func Extend(nodes ...Node) Node {
	if len(nodes) == 0 {
		return nil
	}
	res, merged := nodes[0], false
	for _, n := range nodes[1:] {
		if sameRef(res, n) {
			continue
		}
		res, merged = Merge(res, n), true
	}
	if !merged {
		return Clone(res)
	}
	return res
}

func sameRef(a, b Node) bool {
	am, ok := a.(*Map)
	if !ok {
		return false
	}
	bm, ok := b.(*Map)
	return ok && am == bm
}
