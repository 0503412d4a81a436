package units

import (
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
)

func mustParse(t *testing.T, src string) *Units {
	t.Helper()
	root, err := config.DecodeYAML([]byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m, ok := root.(*config.Map)
	if !ok {
		m = config.NewMap()
	}
	u, err := Parse(m)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return u
}

func TestParseDefaults(t *testing.T) {
	u := mustParse(t, "points: {}")

	want := map[string]float64{
		"U":                 19.05,
		"u":                 19,
		"cx":                18,
		"cy":                17,
		"$default_stagger":  0,
		"$default_spread":   19,
		"$default_splay":    0,
		"$default_height":   18,
		"$default_width":    18,
		"$default_padding":  19,
		"$default_autobind": 10,
	}
	for name, v := range want {
		if got := u.Get(name); got != v {
			t.Errorf("%s = %v, want %v", name, got, v)
		}
	}
	if u.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", u.Len(), len(want))
	}
}

func TestParseUserUnits(t *testing.T) {
	u := mustParse(t, `
units:
  u: 19
  kx: 2u-1
  ky: kx / 37
variables:
  u: 18
`)
	tests := []struct {
		name string
		want float64
	}{
		{"u", 18},
		{"kx", 35},
		{"ky", 35.0 / 37},
		{"$default_spread", 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := u.Get(tt.name); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	names := u.Names()
	if i, j := slices.Index(names, "$default_autobind"), slices.Index(names, "kx"); i > j {
		t.Errorf("user units should follow defaults, got %v", names)
	}
}

func TestParseExample(t *testing.T) {
	u := mustParse(t, "units: {u: 19}")
	got, err := u.Number(config.String("2u-1"), config.Root)
	if err != nil {
		t.Fatal(err)
	}
	if got != 37 {
		t.Errorf("2u-1 = %v, want 37", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
		path string
	}{
		{"array unit", "units: {a: [1, 2]}", errors.ErrCodeTypeMismatch, "units.a"},
		{"bad expression", "units: {a: 2u+}", errors.ErrCodeInvalidExpression, "units.a"},
		{"unknown symbol", "variables: {a: nope}", errors.ErrCodeInvalidExpression, "variables.a"},
		{"forward reference", "units: {a: b, b: 1}", errors.ErrCodeInvalidExpression, "units.a"},
		{"boolean unit", "units: {a: true}", errors.ErrCodeTypeMismatch, "units.a"},
		{"units not object", "units: [1]", errors.ErrCodeTypeMismatch, "units"},
		{"division by zero", "units: {a: 1/0}", errors.ErrCodeInvalidExpression, "units.a"},
		{"not a number", "units: {a: 0/0}", errors.ErrCodeInvalidExpression, "units.a"},
		{"infinite variable", "variables: {a: 1, b: -a/0}", errors.ErrCodeInvalidExpression, "variables.b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := config.DecodeYAML([]byte(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			_, err = Parse(root.(*config.Map))
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if got := errors.GetPath(err); got != tt.path {
				t.Errorf("path = %q, want %q", got, tt.path)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	u := New([]string{"u"}, map[string]float64{"u": 19})

	wh, err := u.WH(config.String("u"), config.Root)
	if err != nil || wh != [2]float64{19, 19} {
		t.Errorf("WH(u) = %v, %v", wh, err)
	}
	wh, err = u.WH(config.List{config.Number(1), config.String("u/2")}, config.Root)
	if err != nil || wh != [2]float64{1, 9.5} {
		t.Errorf("WH([1, u/2]) = %v, %v", wh, err)
	}

	tests := []struct {
		name string
		in   config.Node
		want [4]float64
	}{
		{"single", config.Number(2), [4]float64{2, 2, 2, 2}},
		{"pair", config.List{config.Number(1), config.Number(2)}, [4]float64{1, 2, 1, 2}},
		{"full", config.List{config.Number(1), config.Number(2), config.Number(3), config.Number(4)}, [4]float64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := u.TRBL(tt.in, config.Root)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("TRBL = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := u.TRBL(config.List{config.Number(1), config.Number(2), config.Number(3)}, config.Root); !errors.Is(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("3-element TRBL err = %v", err)
	}
	if _, err := u.XY(config.Number(1), config.Root); !errors.Is(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("XY(1) err = %v", err)
	}
	if !u.IsNumber(config.String("u*2")) || u.IsNumber(config.String("{{name}}")) {
		t.Error("IsNumber mismatch")
	}
}

func TestUnitsJSON(t *testing.T) {
	u := New([]string{"u", "a"}, map[string]float64{"u": 19, "a": 0.5})
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"u":19,"a":0.5}` {
		t.Errorf("Marshal = %s", data)
	}

	var back Units
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(back.Names(), []string{"u", "a"}) || back.Get("a") != 0.5 {
		t.Errorf("round trip = %v %v", back.Names(), back.Map())
	}
}
