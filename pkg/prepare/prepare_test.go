package prepare

import (
	"encoding/json"
	"testing"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
)

func yamlNode(t *testing.T, src string) config.Node {
	t.Helper()
	n, err := config.DecodeYAML([]byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return n
}

func jsonString(t *testing.T, n config.Node) string {
	t.Helper()
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestUnnest(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"flat", "a: 1", `{"a":1}`},
		{"dotted", "a.b.c: 1", `{"a":{"b":{"c":1}}}`},
		{"merges siblings", "a.b: 1\na.c: 2", `{"a":{"b":1,"c":2}}`},
		{"into existing", "a: {x: 1}\na.y: 2", `{"a":{"x":1,"y":2}}`},
		{"nested maps", "z: {a.b: 1}", `{"z":{"a":{"b":1}}}`},
		{"inside lists", "l: [{a.b: 1}]", `{"l":[{"a":{"b":1}}]}`},
		{"later wins", "a.b: 1\na.b: 2", `{"a":{"b":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unnest(yamlNode(t, tt.in))
			if err != nil {
				t.Fatal(err)
			}
			if s := jsonString(t, got); s != tt.want {
				t.Errorf("Unnest = %s, want %s", s, tt.want)
			}
		})
	}
}

func TestUnnestTypeMismatch(t *testing.T) {
	_, err := Unnest(yamlNode(t, "a: 1\na.b: 2"))
	if !errors.Is(err, errors.ErrCodeTypeMismatch) {
		t.Fatalf("err = %v, want TYPE_MISMATCH", err)
	}
}

func TestInherit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		path string
		want string
	}{
		{
			name: "child overrides",
			in:   "A: {v: 1}\nB: {$extends: A, v: 2}",
			path: "B",
			want: `{"v":2}`,
		},
		{
			name: "inherits missing keys",
			in:   "A: {v: 1, w: 3}\nB: {$extends: A, v: 2}",
			path: "B",
			want: `{"v":2,"w":3}`,
		},
		{
			name: "transitive",
			in:   "A: {a: 1}\nB: {$extends: A, b: 2}\nC: {$extends: B, c: 3}",
			path: "C",
			want: `{"a":1,"b":2,"c":3}`,
		},
		{
			name: "multiple parents, first wins",
			in:   "A: {v: a}\nB: {v: b}\nC: {$extends: [A, B]}",
			path: "C",
			want: `{"v":"a"}`,
		},
		{
			name: "diamond",
			in:   "D: {d: 1}\nA: {$extends: D, a: 1}\nB: {$extends: D, b: 1}\nC: {$extends: [A, B]}",
			path: "C",
			want: `{"d":1,"b":1,"a":1}`,
		},
		{
			name: "dotted target",
			in:   "defs: {k: {v: 1}}\nuse: {$extends: defs.k}",
			path: "use",
			want: `{"v":1}`,
		},
		{
			name: "ancestor subtree resolved",
			in:   "base: {v: 1}\nA: {inner: {$extends: base}}\nB: {$extends: A}",
			path: "B",
			want: `{"inner":{"v":1}}`,
		},
		{
			name: "unset removes inherited key",
			in:   "A: {v: 1, w: 2}\nB: {$extends: A, w: $unset}",
			path: "B",
			want: `{"v":1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Inherit(yamlNode(t, tt.in))
			if err != nil {
				t.Fatal(err)
			}
			node := config.Lookup(got, config.ParsePath(tt.path))
			if s := jsonString(t, node); s != tt.want {
				t.Errorf("%s = %s, want %s", tt.path, s, tt.want)
			}
		})
	}
}

func TestInheritErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
		path string
	}{
		{"circular", "A: {$extends: B}\nB: {$extends: A}", errors.ErrCodeCircularInheritance, "A.$extends"},
		{"self", "A: {$extends: A}", errors.ErrCodeCircularInheritance, "A.$extends"},
		{"nested self", "A: {x: {$extends: A}}", errors.ErrCodeCircularInheritance, "A.x.$extends"},
		{"unknown", "A: {$extends: nowhere}", errors.ErrCodeUnknownReference, "A.$extends"},
		{"bad type", "A: {$extends: 3}", errors.ErrCodeTypeMismatch, "A.$extends"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inherit(yamlNode(t, tt.in))
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if got := errors.GetPath(err); got != tt.path {
				t.Errorf("path = %q, want %q", got, tt.path)
			}
		})
	}
}

func TestParameterize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare placeholder keeps argument type",
			in:   "k: {$params: [W], $args: [[1, 2]], width: W}",
			want: `{"k":{"width":[1,2]}}`,
		},
		{
			name: "embedded placeholder",
			in:   "k: {$params: [ROW], $args: [home], name: key_ROW}",
			want: `{"k":{"name":"key_home"}}`,
		},
		{
			name: "keys are substituted",
			in:   "k: {$params: [C], $args: [pinky], C_key: 1}",
			want: `{"k":{"pinky_key":1}}`,
		},
		{
			name: "longest parameter wins",
			in:   "k: {$params: [X, XX], $args: [a, b], v: XX-X}",
			want: `{"k":{"v":"b-a"}}`,
		},
		{
			name: "no rescanning of arguments",
			in:   "k: {$params: [A, B], $args: [B, 1], v: A}",
			want: `{"k":{"v":"B"}}`,
		},
		{
			name: "template definitions dropped",
			in:   "t: {$params: [X], v: X}\nk: 1",
			want: `{"k":1}`,
		},
		{
			name: "skip",
			in:   "a: {$skip: true, v: 1}\nb: {$skip: false, v: 2}\nl: [{$skip: true}, 3]",
			want: `{"b":{"v":2},"l":[3]}`,
		},
		{
			name: "untouched",
			in:   "a: {b: [1, x]}",
			want: `{"a":{"b":[1,"x"]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parameterize(yamlNode(t, tt.in))
			if err != nil {
				t.Fatal(err)
			}
			if s := jsonString(t, got); s != tt.want {
				t.Errorf("Parameterize = %s, want %s", s, tt.want)
			}
		})
	}
}

func TestParameterizeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"arity", "k: {$params: [x], $args: [1, 2]}", errors.ErrCodeArityMismatch},
		{"args without params", "k: {$args: [1]}", errors.ErrCodeInvalidTemplate},
		{"key collision", "k: {$params: [A], $args: [b], A: 1, b: 2}", errors.ErrCodeInvalidTemplate},
		{"params not strings", "k: {$params: [1], $args: [1]}", errors.ErrCodeTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parameterize(yamlNode(t, tt.in))
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	in := yamlNode(t, `
templates:
  key:
    $params: [ROW]
    name: key_ROW
    width: 18
keys.home:
  $extends: templates.key
  $args: [home]
  width: 19
`)
	got, err := Prepare(in)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"templates":{},"keys":{"home":{"name":"key_home","width":19}}}`
	if s := jsonString(t, got); s != want {
		t.Errorf("Prepare = %s, want %s", s, want)
	}
}

func TestPrepareDoesNotModifyInput(t *testing.T) {
	in := yamlNode(t, "A: {v: 1}\nB: {$extends: A}\nc.d: 1")
	before := jsonString(t, in)
	if _, err := Prepare(in); err != nil {
		t.Fatal(err)
	}
	if after := jsonString(t, in); after != before {
		t.Errorf("input modified: %s -> %s", before, after)
	}
}
