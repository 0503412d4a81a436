package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
)

// Format identifies a config document encoding.
type Format string

// Supported input formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from a file extension. Unknown extensions
// map to YAML, which also accepts JSON documents.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	}
	return FormatYAML
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (must be one of: yaml, json, toml)", s)
}

// Load reads and decodes the config file at path.
func Load(path string) (Node, Format, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	format := FormatFromPath(path)
	n, err := Decode(data, format)
	if err != nil {
		return nil, "", err
	}
	return n, format, nil
}

// Decode parses data in the given format into a Node tree.
func Decode(data []byte, format Format) (Node, error) {
	var (
		n   Node
		err error
	)
	switch format {
	case FormatJSON:
		n, err = DecodeJSON(data)
	case FormatTOML:
		n, err = DecodeTOML(data)
	case FormatYAML, "":
		n, err = DecodeYAML(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return n, nil
}

// =============================================================================
// JSON
// =============================================================================

// DecodeJSON parses a single JSON value, preserving object key order.
func DecodeJSON(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return n, nil
}

func decodeJSONValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", kt)
				}
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			l := List{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				l = append(l, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return l, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// =============================================================================
// YAML
// =============================================================================

// DecodeYAML parses a YAML document using the node API so that mapping order
// survives. Aliases are expanded and "<<" merge keys are honoured.
func DecodeYAML(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return Null{}, nil
	}
	d := &yamlDecoder{budget: yamlNodeBudget(countYAML(&doc))}
	return d.fromYAML(&doc, 0)
}

const (
	// maxAliasDepth bounds alias expansion against self-referencing documents.
	maxAliasDepth = 64

	// Alias expansion may grow a document to at most aliasExpansion times
	// its own node count, plus minAliasBudget nodes.
	aliasExpansion = 10
	minAliasBudget = 10000
)

// ErrExcessiveAliasing reports a YAML document whose aliases expand past
// the node budget.
var ErrExcessiveAliasing = stderrors.New("excessive aliasing")

func yamlNodeBudget(nodes int) int {
	return minAliasBudget + aliasExpansion*nodes
}

// countYAML counts the nodes of a document without following aliases.
func countYAML(n *yaml.Node) int {
	c := 1
	for _, child := range n.Content {
		c += countYAML(child)
	}
	return c
}

// yamlDecoder converts yaml nodes, charging every produced node against
// budget so that nested aliases cannot expand without bound.
type yamlDecoder struct {
	budget int
}

func (d *yamlDecoder) fromYAML(n *yaml.Node, depth int) (Node, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("line %d: alias nesting too deep", n.Line)
	}
	if d.budget--; d.budget < 0 {
		return nil, fmt.Errorf("line %d: %w", n.Line, ErrExcessiveAliasing)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return d.fromYAML(n.Content[0], depth)
	case yaml.AliasNode:
		return d.fromYAML(n.Alias, depth+1)
	case yaml.SequenceNode:
		l := make(List, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.fromYAML(c, depth)
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}
		return l, nil
	case yaml.MappingNode:
		m := NewMap()
		var merges []*Map
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			val, err := d.fromYAML(v, depth)
			if err != nil {
				return nil, err
			}
			if k.ShortTag() == "!!merge" {
				merges = append(merges, mergeSources(val)...)
				continue
			}
			m.Set(k.Value, val)
		}
		for _, src := range merges {
			for k, v := range src.All() {
				if !m.Has(k) {
					m.Set(k, Clone(v))
				}
			}
		}
		return m, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return Null{}, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return Bool(b), nil
		case "!!int", "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return nil, err
			}
			return Number(f), nil
		}
		return String(n.Value), nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

func mergeSources(n Node) []*Map {
	switch v := n.(type) {
	case *Map:
		return []*Map{v}
	case List:
		var out []*Map
		for _, e := range v {
			if m, ok := e.(*Map); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// =============================================================================
// TOML
// =============================================================================

// DecodeTOML parses a TOML document. Table key order is recovered from the
// decoder metadata; tables nested inside arrays fall back to sorted keys.
func DecodeTOML(data []byte) (Node, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	root := NewMap()
	for _, key := range md.Keys() {
		placeTOMLKey(root, raw, key)
	}
	fillTOML(root, raw)
	return root, nil
}

// fillTOML adds entries the metadata did not list (inline tables).
func fillTOML(dst *Map, src map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(src)) {
		v := src[k]
		existing, ok := dst.Get(k)
		if !ok {
			dst.Set(k, FromValue(v))
			continue
		}
		sub, isTable := v.(map[string]any)
		next, isMap := existing.(*Map)
		if isTable && isMap {
			fillTOML(next, sub)
		}
	}
}

func placeTOMLKey(root *Map, raw map[string]any, key toml.Key) {
	dst, src := root, raw
	for i, seg := range key {
		v, ok := src[seg]
		if !ok {
			return
		}
		last := i == len(key)-1
		sub, isTable := v.(map[string]any)
		if !isTable {
			if last && !dst.Has(seg) {
				dst.Set(seg, FromValue(v))
			}
			return
		}
		next, ok := dst.Value(seg).(*Map)
		if !ok {
			next = NewMap()
			dst.Set(seg, next)
		}
		dst, src = next, sub
	}
}
