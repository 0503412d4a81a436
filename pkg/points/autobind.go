package points

import (
	"math"
	"slices"

	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
)

type columnKey struct {
	zone string // prefixed with "mirror_" for mirrored points
	col  string
}

type bounds struct {
	min, max float64
}

func (b bounds) contains(y float64) bool { return y >= b.min && y <= b.max }

// Autobind fills unset bind sides. Top and bottom bind when the point is
// not the extreme of its column; left and right bind when the neighbouring
// column of the same zone exists and spans the point's y. Mirrored and
// unmirrored halves of a zone are treated as separate zones. Points with
// autobind 0 get every unset side set to 0.
func Autobind(s *Set) {
	colBounds := make(map[columnKey]bounds)
	colLists := make(map[string][]string)
	zoneOf := func(p *point.Point) string {
		if p.IsMirrored() {
			return point.MirrorPrefix + p.Meta.Zone.Name
		}
		return p.Meta.Zone.Name
	}

	for _, p := range s.Points() {
		z := zoneOf(p)
		k := columnKey{z, p.Meta.Col}
		b, ok := colBounds[k]
		if !ok {
			b = bounds{min: math.Inf(1), max: math.Inf(-1)}
		}
		b.min = math.Min(b.min, p.Y)
		b.max = math.Max(b.max, p.Y)
		colBounds[k] = b
		if _, ok := colLists[z]; !ok {
			colLists[z] = p.Meta.Zone.Columns
		}
	}

	for _, p := range s.Points() {
		bind := &p.Meta.Bind
		ab := p.Meta.Autobind
		if ab == 0 {
			for i, v := range bind {
				if v == point.Unbound {
					bind[i] = 0
				}
			}
			continue
		}

		z := zoneOf(p)
		own := colBounds[columnKey{z, p.Meta.Col}]
		cols := colLists[z]
		idx := slices.Index(cols, p.Meta.Col)
		neighbour := func(offset int) bool {
			i := idx + offset
			if idx < 0 || i < 0 || i >= len(cols) {
				return false
			}
			b, ok := colBounds[columnKey{z, cols[i]}]
			return ok && b.contains(p.Y)
		}
		choose := func(cond bool) float64 {
			if cond {
				return ab
			}
			return 0
		}

		if bind[0] == point.Unbound {
			bind[0] = choose(p.Y < own.max)
		}
		if bind[2] == point.Unbound {
			bind[2] = choose(p.Y > own.min)
		}
		if bind[3] == point.Unbound {
			bind[3] = choose(neighbour(-1))
		}
		if bind[1] == point.Unbound {
			bind[1] = choose(neighbour(1))
		}
	}
}
