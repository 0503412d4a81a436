package point

import (
	"encoding/json"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestShift(t *testing.T) {
	tests := []struct {
		name     string
		r        float64
		mirrored bool
		relative bool
		resist   bool
		s        [2]float64
		wantX    float64
		wantY    float64
	}{
		{"plain", 0, false, true, false, [2]float64{5, 2}, 5, 2},
		{"mirrored flips x", 0, true, true, false, [2]float64{5, 0}, -5, 0},
		{"mirrored resist", 0, true, true, true, [2]float64{5, 0}, 5, 0},
		{"rotated relative", 90, false, true, false, [2]float64{1, 0}, 0, 1},
		{"rotated absolute", 90, false, false, false, [2]float64{1, 0}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(0, 0, tt.r, NewMeta())
			if tt.mirrored {
				p.Meta.SetMirrored(true)
			}
			p.Shift(tt.s, tt.relative, tt.resist)
			if !near(p.X, tt.wantX) || !near(p.Y, tt.wantY) {
				t.Errorf("Shift = (%v, %v), want (%v, %v)", p.X, p.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestRotate(t *testing.T) {
	p := New(1, 0, 0, NewMeta())
	p.Rotate(90, &[2]float64{0, 0}, false)
	if !near(p.X, 0) || !near(p.Y, 1) || !near(p.R, 90) {
		t.Errorf("Rotate around origin = %+v", p)
	}

	q := New(1, 0, 10, NewMeta())
	q.Rotate(20, nil, false)
	if q.X != 1 || q.Y != 0 || q.R != 30 {
		t.Errorf("Rotate without origin = %+v", q)
	}

	m := New(0, 0, 0, NewMeta())
	m.Meta.SetMirrored(true)
	m.Rotate(15, nil, false)
	if m.R != -15 {
		t.Errorf("mirrored Rotate r = %v, want -15", m.R)
	}
	m.Rotate(15, nil, true)
	if m.R != 0 {
		t.Errorf("resisted Rotate r = %v, want 0", m.R)
	}
}

func TestMirrorRoundTrip(t *testing.T) {
	p := New(3, 4, 12, NewMeta())
	c := p.Clone().Mirror(10)
	if c.X != 17 || c.R != -12 || c.Y != 4 {
		t.Fatalf("Mirror = %+v", c)
	}
	c.Mirror(10)
	if !c.Equals(p) {
		t.Errorf("round trip = %+v, want %+v", c, p)
	}
	if c.Meta.Mirrored != nil {
		t.Errorf("unset mirrored flag became %v", *c.Meta.Mirrored)
	}

	p.Meta.SetMirrored(false)
	m := p.Clone().Mirror(10)
	if !m.IsMirrored() {
		t.Error("Mirror did not set the mirrored flag")
	}
	if m.Mirror(10); m.IsMirrored() || m.Meta.Mirrored == nil {
		t.Errorf("mirrored flag after round trip = %v, want false", m.Meta.Mirrored)
	}
}

func TestAngle(t *testing.T) {
	p := Origin()
	tests := []struct {
		x, y float64
		want float64
	}{
		{0, 1, 0},
		{1, 0, -90},
		{-1, 0, 90},
	}
	for _, tt := range tests {
		if got := p.Angle(New(tt.x, tt.y, 0, NewMeta())); !near(got, tt.want) {
			t.Errorf("Angle(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := Origin()
	p.Meta.SetMirrored(false)
	p.Meta.Zone.Columns = []string{"a"}
	p.Meta.Extra = config.MapOf("tags", []string{"x"})

	c := p.Clone()
	c.Meta.SetMirrored(true)
	c.Meta.Zone.Columns[0] = "b"
	c.Meta.Extra.Set("tags", config.String("y"))
	c.X = 5

	if p.IsMirrored() || p.Meta.Zone.Columns[0] != "a" || p.X != 0 {
		t.Errorf("clone aliased original: %+v", p)
	}
	if _, ok := p.Meta.Extra.Value("tags").(config.List); !ok {
		t.Errorf("clone aliased extra keys")
	}
}

func TestID(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		mirrored bool
		toggled  string
	}{
		{"thumb", "thumb", false, "mirror_thumb"},
		{"mirror_thumb", "thumb", true, "thumb"},
		{"mirror_mirror_x", "mirror_x", true, "mirror_x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := ParseID(tt.name)
			if id.Base != tt.base || id.Mirrored != tt.mirrored {
				t.Errorf("ParseID = %+v", id)
			}
			if id.String() != tt.name {
				t.Errorf("String() = %q", id.String())
			}
			if got := id.Toggle().String(); got != tt.toggled {
				t.Errorf("Toggle() = %q, want %q", got, tt.toggled)
			}
		})
	}
	if MirrorName("a", false) != "a" || MirrorName("a", true) != "mirror_a" {
		t.Error("MirrorName mismatch")
	}
}

func TestParseAsym(t *testing.T) {
	for alias, want := range map[string]Asym{
		"left": AsymSource, "primary": AsymSource, "right": AsymClone,
		"image": AsymClone, "both": AsymBoth,
	} {
		if got, ok := ParseAsym(alias); !ok || got != want {
			t.Errorf("ParseAsym(%q) = %v, %v", alias, got, ok)
		}
	}
	if _, ok := ParseAsym("middle"); ok {
		t.Error("ParseAsym accepted unknown value")
	}
}

func TestMetaJSON(t *testing.T) {
	m := NewMeta()
	m.Name = "matrix_a_home"
	m.Extra = config.MapOf("tags", []string{"home"})
	data, err := json.Marshal(New(1, 2, 0, m))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{
		`"x":1`, `"name":"matrix_a_home"`, `"bind":[-1,-1,-1,-1]`, `"tags":["home"]`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "mirrored") {
		t.Errorf("unset mirrored flag was encoded: %s", s)
	}
}

func TestMetaJSONRoundTrip(t *testing.T) {
	m := NewMeta()
	m.Name = "mirror_matrix_a_home"
	m.Zone = Zone{Name: "matrix", Columns: []string{"a", "b"}}
	m.Col, m.Row = "a", "home"
	m.Shift = [2]float64{1, -2}
	m.Bind = [4]float64{0, 5, -1, 2}
	m.Asym = AsymClone
	m.SetMirrored(true)
	m.Extra = config.MapOf("tags", []string{"home"})

	data, err := json.Marshal(New(3, 4, 15, m))
	if err != nil {
		t.Fatal(err)
	}
	var got Point
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.X != 3 || got.Y != 4 || got.R != 15 {
		t.Errorf("pose = %v,%v,%v", got.X, got.Y, got.R)
	}
	g := got.Meta
	if g.Name != m.Name || g.Col != "a" || g.Row != "home" || g.Zone.Name != "matrix" {
		t.Errorf("names = %+v", g)
	}
	if !slices.Equal(g.Zone.Columns, []string{"a", "b"}) {
		t.Errorf("columns = %v", g.Zone.Columns)
	}
	if g.Shift != m.Shift || g.Bind != m.Bind || g.Asym != AsymClone {
		t.Errorf("fields = %v %v %v", g.Shift, g.Bind, g.Asym)
	}
	if g.Mirrored == nil || !*g.Mirrored {
		t.Error("mirrored flag lost")
	}
	if g.Extra == nil || !config.Equal(g.Extra.Value("tags"), config.List{config.String("home")}) {
		t.Errorf("extra = %v", g.Extra)
	}
}
