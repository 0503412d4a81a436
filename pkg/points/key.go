package points

import (
	"regexp"
	"slices"
	"strings"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
	"github.com/fcoury/ergogen-rs-sub000/pkg/units"
)

// knownKeyFields are the key config fields decoded into [point.Meta].
// Anything else is carried through as a user-defined key.
var knownKeyFields = []string{
	"name", "colrow", "zone", "col", "row",
	"stagger", "spread", "splay", "origin", "orient", "shift", "rotate",
	"adjust", "width", "height", "padding", "autobind", "bind",
	"skip", "asym", "mirror",
}

var numberFields = []string{
	"stagger", "spread", "splay", "orient", "rotate",
	"width", "height", "padding", "autobind",
}

// defaultKey returns the lowest level of the key config chain.
func defaultKey(u *units.Units) *config.Map {
	return config.MapOf(
		"stagger", u.Get("$default_stagger"),
		"spread", u.Get("$default_spread"),
		"splay", u.Get("$default_splay"),
		"origin", []any{0, 0},
		"orient", 0,
		"shift", []any{0, 0},
		"rotate", 0,
		"adjust", config.NewMap(),
		"width", u.Get("$default_width"),
		"height", u.Get("$default_height"),
		"padding", u.Get("$default_padding"),
		"autobind", u.Get("$default_autobind"),
		"skip", false,
		"asym", string(point.AsymBoth),
		"colrow", "{{col.name}}_{{row}}",
		"name", "{{zone.name}}_{{colrow}}",
	)
}

// normalizeKey evaluates the typed fields of a key config in place, so
// that later templating and decoding see plain numbers.
func normalizeKey(cfg *config.Map, path config.Path, u *units.Units) error {
	for _, f := range numberFields {
		v, err := u.NumberOr(cfg.Value(f), path.Key(f), 0)
		if err != nil {
			return err
		}
		cfg.Set(f, config.Number(v))
	}
	for _, f := range []string{"origin", "shift"} {
		var v [2]float64
		if n := cfg.Value(f); !config.IsNull(n) {
			var err error
			if v, err = u.WH(n, path.Key(f)); err != nil {
				return err
			}
		}
		cfg.Set(f, config.List{config.Number(v[0]), config.Number(v[1])})
	}

	bind := [4]float64{point.Unbound, point.Unbound, point.Unbound, point.Unbound}
	if n := cfg.Value("bind"); !config.IsNull(n) {
		var err error
		if bind, err = u.TRBL(n, path.Key("bind")); err != nil {
			return err
		}
	}
	bl := make(config.List, 4)
	for i, b := range bind {
		bl[i] = config.Number(b)
	}
	cfg.Set("bind", bl)

	skip, err := config.AsBool(cfg.Value("skip"), path.Key("skip"), false)
	if err != nil {
		return err
	}
	cfg.Set("skip", config.Bool(skip))

	asym := string(point.AsymBoth)
	if n := cfg.Value("asym"); !config.IsNull(n) {
		if asym, err = config.AsString(n, path.Key("asym")); err != nil {
			return err
		}
	}
	a, ok := point.ParseAsym(asym)
	if !ok {
		return config.OneOf(asym, path.Key("asym"), point.AsymNames()...)
	}
	cfg.Set("asym", config.String(a))
	return nil
}

var placeholder = regexp.MustCompile(`\{\{([^}]*)\}\}`)

// templateKey expands "{{path}}" placeholders in every top-level string
// field that is not a numeric expression. Fields are expanded in order,
// each against the config as updated so far, so a later field sees the
// expanded value of an earlier one.
func templateKey(cfg *config.Map, u *units.Units) {
	for _, k := range cfg.Keys() {
		s, ok := cfg.Value(k).(config.String)
		if !ok || u.IsNumber(s) {
			continue
		}
		cfg.Set(k, config.String(Template(string(s), cfg)))
	}
}

// Template replaces each "{{a.b}}" in s with the value found at that path
// in vals. Missing and falsy values (0, false, "") expand to "".
func Template(s string, vals config.Node) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		path := strings.TrimSpace(m[2 : len(m)-2])
		v := config.Lookup(vals, config.ParsePath(path))
		switch t := v.(type) {
		case config.Number:
			if t == 0 {
				return ""
			}
		case config.Bool:
			if !t {
				return ""
			}
		}
		return config.Text(v)
	})
}

// metaFromKey decodes a normalized key config.
func metaFromKey(cfg *config.Map) point.Meta {
	m := point.NewMeta()
	m.Name = config.Text(cfg.Value("name"))
	m.Colrow = config.Text(cfg.Value("colrow"))
	if z, ok := cfg.Value("zone").(*config.Map); ok {
		m.Zone.Name = config.Text(z.Value("name"))
		if cols, ok := z.Value("columns").(*config.Map); ok {
			m.Zone.Columns = cols.Keys()
		}
	}
	if c, ok := cfg.Value("col").(*config.Map); ok {
		m.Col = config.Text(c.Value("name"))
	}
	m.Row = config.Text(cfg.Value("row"))

	num := func(k string) float64 {
		n, _ := cfg.Value(k).(config.Number)
		return float64(n)
	}
	pair := func(k string) [2]float64 {
		l, _ := cfg.Value(k).(config.List)
		var out [2]float64
		for i := 0; i < len(l) && i < 2; i++ {
			n, _ := l[i].(config.Number)
			out[i] = float64(n)
		}
		return out
	}
	m.Stagger, m.Spread, m.Splay = num("stagger"), num("spread"), num("splay")
	m.Origin, m.Shift = pair("origin"), pair("shift")
	m.Orient, m.Rotate = num("orient"), num("rotate")
	m.Width, m.Height, m.Padding = num("width"), num("height"), num("padding")
	m.Autobind = num("autobind")
	if l, ok := cfg.Value("bind").(config.List); ok && len(l) == 4 {
		for i := range m.Bind {
			n, _ := l[i].(config.Number)
			m.Bind[i] = float64(n)
		}
	}
	skip, _ := cfg.Value("skip").(config.Bool)
	m.Skip = bool(skip)
	asym, _ := cfg.Value("asym").(config.String)
	m.Asym = point.Asym(asym)

	m.Adjust = cfg.Value("adjust")
	m.Mirror = cfg.Value("mirror")
	m.Config = cfg
	m.Extra = config.NewMap()
	for k, v := range cfg.All() {
		if !slices.Contains(knownKeyFields, k) {
			m.Extra.Set(k, v)
		}
	}
	return m
}
