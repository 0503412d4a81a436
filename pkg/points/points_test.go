package points

import (
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
	"github.com/fcoury/ergogen-rs-sub000/pkg/prepare"
	"github.com/fcoury/ergogen-rs-sub000/pkg/units"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func layout(t *testing.T, src string) (*Set, error) {
	t.Helper()
	raw, err := config.DecodeYAML([]byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	prepared, err := prepare.Prepare(raw)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	root := prepared.(*config.Map)
	u, err := units.Parse(root)
	if err != nil {
		t.Fatalf("units: %v", err)
	}
	return Layout(root, u)
}

func mustLayout(t *testing.T, src string) *Set {
	t.Helper()
	pts, err := layout(t, src)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return pts
}

type pose struct {
	name    string
	x, y, r float64
}

func checkPoses(t *testing.T, pts *Set, want []pose) {
	t.Helper()
	names := make([]string, len(want))
	for i, w := range want {
		names[i] = w.name
	}
	if got := pts.Names(); !slices.Equal(got, names) {
		t.Fatalf("names = %v, want %v", got, names)
	}
	for _, w := range want {
		p := pts.Get(w.name)
		if !near(p.X, w.x) || !near(p.Y, w.y) || !near(p.R, w.r) {
			t.Errorf("%s = (%v, %v, %v), want (%v, %v, %v)", w.name, p.X, p.Y, p.R, w.x, w.y, w.r)
		}
	}
}

func TestLayoutTwoRows(t *testing.T) {
	pts := mustLayout(t, `
units:
  u: 19
points:
  zones:
    zone:
      columns:
        default:
      rows:
        home:
        bottom:
      key:
        padding: 1u
`)
	checkPoses(t, pts, []pose{
		{"zone_home", 0, 0, 0},
		{"zone_bottom", 0, 19, 0},
	})
	home := pts.Get("zone_home")
	if home.Meta.Row != "home" || home.Meta.Col != "default" || home.Meta.Zone.Name != "zone" {
		t.Errorf("meta = %+v", home.Meta)
	}
	if home.Meta.Width != 18 || home.Meta.Height != 18 {
		t.Errorf("size = %v x %v, want 18 x 18", home.Meta.Width, home.Meta.Height)
	}
}

func TestLayoutNames(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"bare zone", "points.zones.thumb:", []string{"thumb"}},
		{"columns only", "points.zones.m.columns: {a: null, b: null}", []string{"m_a", "m_b"}},
		{"rows only", "points.zones.m.rows: {top: null, bottom: null}", []string{"m_top", "m_bottom"}},
		{
			"grid",
			"points.zones.m: {columns: {a: null, b: null}, rows: {x: null, y: null}}",
			[]string{"m_a_x", "m_a_y", "m_b_x", "m_b_y"},
		},
		{
			"column-specific rows",
			"points.zones.m: {columns: {a: null, b: {rows: {extra: null}}}, rows: {x: null}}",
			[]string{"m_a_x", "m_b_x", "m_b_extra"},
		},
		{"custom name", "points.zones.m.key.name: k_{{row}}", []string{"k_default"}},
		{"custom name with default segment", "points.zones.m.key.name: key_default_x", []string{"key_default_x"}},
		{"default segment in zone name", "points.zones.thumb_default_fan.rows: {home: null}", []string{"thumb_default_fan_home"}},
		{"default column", "points.zones.m: {columns: {default: null}, rows: {home: null, bottom: null}}", []string{"m_home", "m_bottom"}},
		{
			"zone names differing by a default segment",
			"points.zones: {a_default_b: null, a_b: null}",
			[]string{"a_default_b", "a_b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := mustLayout(t, tt.src)
			if got := pts.Names(); !slices.Equal(got, tt.want) {
				t.Errorf("names = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLayoutColumns(t *testing.T) {
	pts := mustLayout(t, `
points.zones.m.columns:
  a:
  b.key.stagger: 5
  c.key.spread: 20
`)
	checkPoses(t, pts, []pose{
		{"m_a", 0, 0, 0},
		{"m_b", 19, 5, 0},
		{"m_c", 39, 5, 0},
	})
}

func TestLayoutSplay(t *testing.T) {
	pts := mustLayout(t, `
points.zones.m.columns:
  a:
  b.key.splay: 90
  c:
`)
	checkPoses(t, pts, []pose{
		{"m_a", 0, 0, 0},
		{"m_b", 19, 0, 90},
		{"m_c", 19, 19, 90},
	})
}

func TestLayoutKeyAdjustments(t *testing.T) {
	pts := mustLayout(t, `
points.zones.m:
  rows:
    one:
      orient: 90
      shift: [1, 0]
    two:
      adjust:
        shift: [0, 100]
    three:
`)
	// orient turns before the shift, so [1, 0] moves along +y. The next
	// rows inherit the turned frame; padding then moves along -x.
	checkPoses(t, pts, []pose{
		{"m_one", 0, 1, 90},
		{"m_two", -119, 1, 90},
		{"m_three", -38, 1, 90},
	})
}

func TestLayoutAnchorsAndRotation(t *testing.T) {
	pts := mustLayout(t, `
points:
  zones:
    first:
    second:
      anchor:
        ref: first
        shift: [0, -20]
    turned:
      rotate: 90
      columns: {a: null, b: null}
`)
	checkPoses(t, pts, []pose{
		{"first", 0, 0, 0},
		{"second", 0, -20, 0},
		{"turned_a", 0, 0, 90},
		{"turned_b", 0, 19, 90},
	})
}

func TestLayoutGlobalRotate(t *testing.T) {
	pts := mustLayout(t, `
points:
  rotate: -90
  zones.m.columns: {a: null, b: null}
`)
	checkPoses(t, pts, []pose{
		{"m_a", 0, 0, -90},
		{"m_b", 0, -19, -90},
	})
}

func TestLayoutMirror(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []pose
	}{
		{
			"numeric axis",
			"points.zones.m: {mirror: 10, key.rotate: 15}",
			[]pose{{"m", 0, 0, 15}, {"mirror_m", 20, 0, -15}},
		},
		{
			"boolean axis",
			"points.zones.m: {anchor.shift: [5, 0], mirror: true}",
			[]pose{{"m", 5, 0, 0}, {"mirror_m", -5, 0, 0}},
		},
		{
			"anchor axis with distance",
			"points.zones.m: {mirror: {ref: m, distance: 20}}",
			[]pose{{"m", 0, 0, 0}, {"mirror_m", 20, 0, 0}},
		},
		{
			"global axis",
			"points: {mirror: 10, zones.m: null}",
			[]pose{{"m", 0, 0, 0}, {"mirror_m", 20, 0, 0}},
		},
		{
			"source only",
			"points.zones.m: {mirror: 10, key.asym: left}",
			[]pose{{"m", 0, 0, 0}},
		},
		{
			"clone only",
			"points.zones.m: {mirror: 10, key.asym: clone}",
			[]pose{{"mirror_m", 20, 0, 0}},
		},
		{
			"disabled",
			"points.zones.m: {mirror: false}",
			[]pose{{"m", 0, 0, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkPoses(t, mustLayout(t, tt.src), tt.want)
		})
	}
}

func TestLayoutMirrorMeta(t *testing.T) {
	pts := mustLayout(t, `
points:
  zones:
    m:
      mirror: 10
      key:
        tags: [main]
        mirror:
          width: 5
    next:
      anchor: m
      mirror: 10
`)
	m, mm := pts.Get("m"), pts.Get("mirror_m")
	if m.Meta.Mirrored == nil || *m.Meta.Mirrored || !mm.IsMirrored() {
		t.Errorf("mirrored flags: %v %v", m.Meta.Mirrored, mm.Meta.Mirrored)
	}
	if m.Meta.Width != 18 || mm.Meta.Width != 5 {
		t.Errorf("width = %v / %v, want 18 / 5", m.Meta.Width, mm.Meta.Width)
	}
	if mm.Meta.Colrow != "mirror_default_default" {
		t.Errorf("colrow = %q", mm.Meta.Colrow)
	}
	if _, ok := mm.Meta.Extra.Value("tags").(config.List); !ok {
		t.Errorf("user keys lost on mirror: %v", mm.Meta.Extra)
	}

	// Mirroring the counterpart back lands on the original.
	back := mm.Clone().Mirror(10)
	if !back.Equals(m) {
		t.Errorf("round trip = %+v, want %+v", back, m)
	}
	if back.Meta.Mirrored == nil || back.IsMirrored() {
		t.Errorf("mirrored after round trip = %v, want false", back.Meta.Mirrored)
	}
	if !pts.Has("mirror_next") {
		t.Errorf("names = %v", pts.Names())
	}
}

func TestLayoutSkip(t *testing.T) {
	pts := mustLayout(t, "points.zones.m.rows: {a: {skip: true}, b: null}")
	if got := pts.Names(); !slices.Equal(got, []string{"m_b"}) {
		t.Errorf("names = %v", got)
	}
}

func TestLayoutTemplates(t *testing.T) {
	pts := mustLayout(t, `
points.zones.m:
  columns: {pinky: null}
  rows: {home: null}
  key:
    label: "{{col.name}}/{{row}}"
    zero: "{{orient}}"
    expr: u/2
`)
	p := pts.Get("m_pinky_home")
	if p == nil {
		t.Fatalf("names = %v", pts.Names())
	}
	tests := map[string]string{
		"label": "pinky/home",
		"zero":  "",
		"expr":  "u/2",
	}
	for k, want := range tests {
		if got := config.Text(p.Meta.Extra.Value(k)); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"no points", "units: {}", errors.ErrCodeInvalidInput},
		{"no zones", "points: {}", errors.ErrCodeTypeMismatch},
		{"empty zones", "points: {zones: {}}", errors.ErrCodeInvalidInput},
		{"all skipped", "points.zones.m.key.skip: true", errors.ErrCodeInvalidInput},
		{"duplicate across zones", "points.zones: {a: {key.name: dup}, b: {key.name: dup}}", errors.ErrCodeDuplicatePoint},
		{"duplicate in zone", "points.zones.a: {columns: {x: null, y: null}, key.name: dup}", errors.ErrCodeDuplicatePoint},
		{"simplified collision", "points.zones: {a.columns.x: null, a_x: null}", errors.ErrCodeDuplicatePoint},
		{"unexpected points key", "points: {zones: {a: null}, extra: 1}", errors.ErrCodeUnexpectedKey},
		{"unexpected zone key", "points.zones.a.scale: 2", errors.ErrCodeUnexpectedKey},
		{"unexpected column key", "points.zones.a.columns.c.stagger: 2", errors.ErrCodeUnexpectedKey},
		{"unknown anchor", "points.zones.a.anchor: nowhere", errors.ErrCodeUnknownReference},
		{"adjust cannot reference", "points.zones.a.key.adjust: a", errors.ErrCodeUnknownReference},
		{"bad stagger", "points.zones.a.key.stagger: 1v", errors.ErrCodeInvalidExpression},
		{"bad asym", "points.zones.a.key.asym: middle", errors.ErrCodeInvalidValue},
		{"bad mirror", "points.zones.a.mirror: [1]", errors.ErrCodeTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := layout(t, tt.src)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLayoutErrorPath(t *testing.T) {
	_, err := layout(t, "points.zones.matrix.columns.pinky.rows.home.shift: [1, x]")
	if got, want := errors.GetPath(err), "points.zones.matrix.columns.pinky.rows.home.shift[1]"; got != want {
		t.Errorf("path = %q, want %q (err %v)", got, want, err)
	}
}

func TestSet(t *testing.T) {
	s := NewSet()
	for _, n := range []string{"b", "a", "mirror_a"} {
		p := point.Origin()
		p.Meta.Name = n
		if err := s.Add(p); err != nil {
			t.Fatal(err)
		}
	}
	dup := point.Origin()
	dup.Meta.Name = "a"
	if err := s.Add(dup); !errors.Is(err, errors.ErrCodeDuplicatePoint) {
		t.Errorf("Add duplicate err = %v", err)
	}
	if got := s.Names(); !slices.Equal(got, []string{"b", "a", "mirror_a"}) {
		t.Errorf("Names() = %v", got)
	}
	if !s.Has("mirror_a") || s.Has("mirror_b") {
		t.Error("Has mismatch")
	}
	filtered := s.Filter(func(p *point.Point) bool { return p.Meta.Name != "a" })
	if filtered.Len() != 2 || s.Len() != 3 {
		t.Errorf("Filter lens = %d, %d", filtered.Len(), s.Len())
	}
}

func TestSetJSONRoundTrip(t *testing.T) {
	s := mustLayout(t, `
points:
  zones:
    matrix:
      columns:
        a: null
        b: null
      rows:
        bottom: null
        home: null
  mirror: 100
`)
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var got Set
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.Names(), s.Names()) {
		t.Fatalf("Names() = %v, want %v", got.Names(), s.Names())
	}
	for name, p := range s.All() {
		q := got.Get(name)
		if !q.Equals(p) || q.Meta.Bind != p.Meta.Bind || q.IsMirrored() != p.IsMirrored() {
			t.Errorf("%s: got %+v, want %+v", name, q, p)
		}
	}
}
