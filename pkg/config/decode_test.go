package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
)

func TestDecodeYAMLPreservesOrder(t *testing.T) {
	src := `
points:
  zones:
    zeta: {}
    alpha:
      columns:
        pinky:
        ring:
        middle:
units:
  kx: u+2
  flag: true
  n: 3
  nothing: ~
`
	n, err := DecodeYAML([]byte(src))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	zones := Lookup(n, ParsePath("points.zones")).(*Map)
	if got := zones.Keys(); !slices.Equal(got, []string{"zeta", "alpha"}) {
		t.Errorf("zone order = %v", got)
	}
	cols := Lookup(n, ParsePath("points.zones.alpha.columns")).(*Map)
	if got := cols.Keys(); !slices.Equal(got, []string{"pinky", "ring", "middle"}) {
		t.Errorf("column order = %v", got)
	}
	if !IsNull(cols.Value("pinky")) {
		t.Errorf("empty column should decode as null, got %s", TypeName(cols.Value("pinky")))
	}

	units := Lookup(n, ParsePath("units")).(*Map)
	if !Equal(units.Value("kx"), String("u+2")) {
		t.Errorf("kx = %v", units.Value("kx"))
	}
	if !Equal(units.Value("flag"), Bool(true)) {
		t.Errorf("flag = %v", units.Value("flag"))
	}
	if !Equal(units.Value("n"), Number(3)) {
		t.Errorf("n = %v", units.Value("n"))
	}
	if !IsNull(units.Value("nothing")) {
		t.Errorf("nothing = %v", units.Value("nothing"))
	}
}

func TestDecodeYAMLMergeKeys(t *testing.T) {
	src := `
base: &base
  width: 18
  height: 17
key:
  <<: *base
  height: 14
`
	n, err := DecodeYAML([]byte(src))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	key := Lookup(n, ParsePath("key"))
	want := MapOf("height", 14, "width", 18)
	if !Equal(key, want) {
		t.Errorf("key = %s, want %s", Text(key), Text(want))
	}
}

func TestDecodeJSONPreservesOrder(t *testing.T) {
	n, err := DecodeJSON([]byte(`{"b": 1, "a": [1, "x", null, false], "c": {"z": 1, "y": 2}}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	m := n.(*Map)
	if got := m.Keys(); !slices.Equal(got, []string{"b", "a", "c"}) {
		t.Errorf("keys = %v", got)
	}
	want := List{Number(1), String("x"), Null{}, Bool(false)}
	if !Equal(m.Value("a"), want) {
		t.Errorf("a = %s", Text(m.Value("a")))
	}
	if got := m.Value("c").(*Map).Keys(); !slices.Equal(got, []string{"z", "y"}) {
		t.Errorf("nested keys = %v", got)
	}
}

func TestDecodeJSONTrailingData(t *testing.T) {
	if _, err := DecodeJSON([]byte(`{} {}`)); err == nil {
		t.Error("expected error for trailing data")
	}
}

func TestDecodeTOMLPreservesOrder(t *testing.T) {
	src := `
[units]
kx = "u+2"
n = 3

[points.zones.zeta]

[points.zones.alpha.columns.pinky]
[points.zones.alpha.columns.ring]
key = { stagger = 5, spread = "u" }
`
	n, err := DecodeTOML([]byte(src))
	if err != nil {
		t.Fatalf("DecodeTOML: %v", err)
	}
	root := n.(*Map)
	if got := root.Keys(); !slices.Equal(got, []string{"units", "points"}) {
		t.Errorf("root keys = %v", got)
	}
	zones := Lookup(n, ParsePath("points.zones")).(*Map)
	if got := zones.Keys(); !slices.Equal(got, []string{"zeta", "alpha"}) {
		t.Errorf("zone order = %v", got)
	}
	cols := Lookup(n, ParsePath("points.zones.alpha.columns")).(*Map)
	if got := cols.Keys(); !slices.Equal(got, []string{"pinky", "ring"}) {
		t.Errorf("column order = %v", got)
	}
	key := Lookup(n, ParsePath("points.zones.alpha.columns.ring.key"))
	if !Equal(key, MapOf("stagger", 5, "spread", "u")) {
		t.Errorf("inline table = %s", Text(key))
	}
	if !Equal(Lookup(n, ParsePath("units.n")), Number(3)) {
		t.Errorf("units.n = %s", Text(Lookup(n, ParsePath("units.n"))))
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	if err := os.WriteFile(path, []byte(`{"points": {"zones": {}}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	n, format, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if format != FormatJSON {
		t.Errorf("format = %v, want json", format)
	}
	if Lookup(n, ParsePath("points.zones")) == nil {
		t.Error("points.zones missing")
	}

	_, _, err = Load(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"bad json", `{"a":`, FormatJSON},
		{"bad yaml", "a: [1, 2", FormatYAML},
		{"bad toml", "a = ", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Decode() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

// aliasBomb builds a document of levels nested alias lists, each level
// referencing the previous one ten times.
func aliasBomb(levels int) string {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= levels; i++ {
		ref := fmt.Sprintf("*l%d", i-1)
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, strings.TrimSuffix(strings.Repeat(ref+", ", 10), ", "))
	}
	return b.String()
}

func TestDecodeYAMLAliasBudget(t *testing.T) {
	t.Run("small expansion", func(t *testing.T) {
		n, err := Decode([]byte(aliasBomb(2)), FormatYAML)
		if err != nil {
			t.Fatal(err)
		}
		if l, ok := Lookup(n, Path{"l2"}).(List); !ok || len(l) != 10 {
			t.Errorf("l2 = %v", Lookup(n, Path{"l2"}))
		}
	})

	t.Run("excessive expansion", func(t *testing.T) {
		_, err := Decode([]byte(aliasBomb(6)), FormatYAML)
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Fatalf("err = %v, want INVALID_FORMAT", err)
		}
		if !stderrors.Is(err, ErrExcessiveAliasing) {
			t.Errorf("err = %v, want ErrExcessiveAliasing", err)
		}
	})
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"board.yaml", FormatYAML},
		{"board.YML", FormatYAML},
		{"board.json", FormatJSON},
		{"board.toml", FormatTOML},
		{"board", FormatYAML},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
