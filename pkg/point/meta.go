package point

import (
	"encoding/json"
	"slices"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
)

// Asym selects which side of a mirror a point appears on.
type Asym string

const (
	AsymBoth   Asym = "both"
	AsymSource Asym = "source"
	AsymClone  Asym = "clone"
)

var asymAliases = map[string]Asym{
	"both":      AsymBoth,
	"source":    AsymSource,
	"origin":    AsymSource,
	"base":      AsymSource,
	"primary":   AsymSource,
	"left":      AsymSource,
	"clone":     AsymClone,
	"image":     AsymClone,
	"derived":   AsymClone,
	"secondary": AsymClone,
	"right":     AsymClone,
}

// AsymNames lists every accepted asym spelling.
func AsymNames() []string {
	names := make([]string, 0, len(asymAliases))
	for k := range asymAliases {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// ParseAsym resolves an asym value or one of its aliases.
func ParseAsym(s string) (Asym, bool) {
	a, ok := asymAliases[s]
	return a, ok
}

// Unbound marks a bind side that autobind should compute.
const Unbound = -1

// Zone identifies the zone a point was generated in.
type Zone struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Meta is the metadata attached to a key point.
type Meta struct {
	Name     string
	Colrow   string
	Zone     Zone
	Col      string
	Row      string
	Stagger  float64
	Spread   float64
	Splay    float64
	Origin   [2]float64
	Orient   float64
	Shift    [2]float64
	Rotate   float64
	Width    float64
	Height   float64
	Padding  float64
	Autobind float64
	Bind     [4]float64 // top, right, bottom, left
	Skip     bool
	Asym     Asym
	Mirrored *bool // nil until a mirror pass has looked at the point

	// Adjust and Mirror hold the raw per-key adjust anchor and mirror
	// overrides. Config is the fully templated key config the fields were
	// decoded from; Extra holds its user-defined keys.
	Adjust config.Node
	Mirror config.Node
	Config *config.Map
	Extra  *config.Map
}

// NewMeta returns metadata with every bind side unset.
func NewMeta() Meta {
	return Meta{
		Asym: AsymBoth,
		Bind: [4]float64{Unbound, Unbound, Unbound, Unbound},
	}
}

// Clone returns a deep copy of m.
func (m Meta) Clone() Meta {
	c := m
	c.Zone.Columns = slices.Clone(m.Zone.Columns)
	if m.Mirrored != nil {
		v := *m.Mirrored
		c.Mirrored = &v
	}
	c.Adjust = config.Clone(m.Adjust)
	c.Mirror = config.Clone(m.Mirror)
	if m.Config != nil {
		c.Config = m.Config.Clone()
	}
	if m.Extra != nil {
		c.Extra = m.Extra.Clone()
	}
	return c
}

// SetMirrored sets the mirrored flag.
func (m *Meta) SetMirrored(v bool) { m.Mirrored = &v }

// Node renders m as an ordered config map: the known fields first, then
// the user-defined keys.
func (m Meta) Node() *config.Map {
	out := config.MapOf(
		"name", m.Name,
		"colrow", m.Colrow,
		"zone", config.MapOf("name", m.Zone.Name, "columns", m.Zone.Columns),
		"col", m.Col,
		"row", m.Row,
		"stagger", m.Stagger,
		"spread", m.Spread,
		"splay", m.Splay,
		"origin", pair(m.Origin),
		"orient", m.Orient,
		"shift", pair(m.Shift),
		"rotate", m.Rotate,
		"width", m.Width,
		"height", m.Height,
		"padding", m.Padding,
		"autobind", m.Autobind,
		"bind", config.List{
			config.Number(m.Bind[0]), config.Number(m.Bind[1]),
			config.Number(m.Bind[2]), config.Number(m.Bind[3]),
		},
		"skip", m.Skip,
		"asym", string(m.Asym),
	)
	if m.Mirrored != nil {
		out.Set("mirrored", config.Bool(*m.Mirrored))
	}
	if m.Extra != nil {
		for k, v := range m.Extra.All() {
			if !out.Has(k) {
				out.Set(k, config.Clone(v))
			}
		}
	}
	return out
}

// MarshalJSON encodes m via [Meta.Node].
func (m Meta) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Node())
}

var nodeFields = []string{
	"name", "colrow", "zone", "col", "row", "stagger", "spread", "splay",
	"origin", "orient", "shift", "rotate", "width", "height", "padding",
	"autobind", "bind", "skip", "asym", "mirrored",
}

// MetaFromNode is the inverse of [Meta.Node]. Missing fields keep their
// [NewMeta] defaults; keys outside the known set land in Extra. Adjust,
// Mirror and Config are not part of the encoding and stay nil.
func MetaFromNode(n *config.Map) Meta {
	m := NewMeta()
	m.Name = config.Text(n.Value("name"))
	m.Colrow = config.Text(n.Value("colrow"))
	m.Col = config.Text(n.Value("col"))
	m.Row = config.Text(n.Value("row"))
	if z, ok := n.Value("zone").(*config.Map); ok {
		m.Zone.Name = config.Text(z.Value("name"))
		if cols, ok := z.Value("columns").(config.List); ok {
			for _, c := range cols {
				m.Zone.Columns = append(m.Zone.Columns, config.Text(c))
			}
		}
	}

	num := func(k string) float64 {
		v, _ := n.Value(k).(config.Number)
		return float64(v)
	}
	m.Stagger, m.Spread, m.Splay = num("stagger"), num("spread"), num("splay")
	m.Orient, m.Rotate = num("orient"), num("rotate")
	m.Width, m.Height, m.Padding = num("width"), num("height"), num("padding")
	m.Autobind = num("autobind")
	m.Origin = numbers2(n.Value("origin"))
	m.Shift = numbers2(n.Value("shift"))
	if l, ok := n.Value("bind").(config.List); ok && len(l) == 4 {
		for i := range m.Bind {
			v, _ := l[i].(config.Number)
			m.Bind[i] = float64(v)
		}
	}
	if b, ok := n.Value("skip").(config.Bool); ok {
		m.Skip = bool(b)
	}
	if a, ok := ParseAsym(config.Text(n.Value("asym"))); ok {
		m.Asym = a
	}
	if b, ok := n.Value("mirrored").(config.Bool); ok {
		m.SetMirrored(bool(b))
	}

	for k, v := range n.All() {
		if slices.Contains(nodeFields, k) {
			continue
		}
		if m.Extra == nil {
			m.Extra = config.NewMap()
		}
		m.Extra.Set(k, config.Clone(v))
	}
	return m
}

// UnmarshalJSON decodes the encoding produced by MarshalJSON.
func (m *Meta) UnmarshalJSON(data []byte) error {
	n := config.NewMap()
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = MetaFromNode(n)
	return nil
}

func numbers2(n config.Node) [2]float64 {
	var out [2]float64
	l, _ := n.(config.List)
	for i := 0; i < len(l) && i < 2; i++ {
		v, _ := l[i].(config.Number)
		out[i] = float64(v)
	}
	return out
}

func pair(v [2]float64) config.List {
	return config.List{config.Number(v[0]), config.Number(v[1])}
}
