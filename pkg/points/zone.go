package points

import (
	"strings"

	"github.com/fcoury/ergogen-rs-sub000/pkg/anchor"
	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
	"github.com/fcoury/ergogen-rs-sub000/pkg/units"
)

const defaultName = "default"

// rotation is a pending turn of every later column around origin.
type rotation struct {
	angle  float64
	origin [2]float64
}

// pushRotation appends a rotation whose origin is first carried through
// the rotations already in the list.
func pushRotation(list []rotation, angle float64, origin [2]float64) []rotation {
	for _, r := range list {
		origin = point.RotateAround(origin, r.angle, r.origin)
	}
	return append(list, rotation{angle: angle, origin: origin})
}

// zone is one entry of points.zones after the anchor, rotate and mirror
// keys have been handled by the caller.
type zone struct {
	name      string
	path      config.Path
	cfg       *config.Map // columns, rows, key
	globalKey *config.Map
	units     *units.Units
}

type column struct {
	name string
	path config.Path
	cfg  *config.Map
	rows *config.Map
	key  *config.Map
}

// render lays out the zone's keys starting from origin and returns them in
// column-major order.
func (z *zone) render(origin *point.Point) ([]*point.Point, error) {
	if err := config.Unexpected(z.cfg, z.path, "columns", "rows", "key"); err != nil {
		return nil, err
	}
	cols, err := config.OptionalMap(z.cfg.Value("columns"), z.path.Key("columns"))
	if err != nil {
		return nil, err
	}
	zoneRows, err := rowMaps(z.cfg.Value("rows"), z.path.Key("rows"))
	if err != nil {
		return nil, err
	}
	zoneKey, err := config.OptionalMap(z.cfg.Value("key"), z.path.Key("key"))
	if err != nil {
		return nil, err
	}
	if cols.Len() == 0 {
		cols.Set(defaultName, config.NewMap())
	}

	// The zone as seen by templates: its columns, rows and key plus its name.
	zoneNode := z.cfg.Clone()
	zoneNode.Set("columns", cols)
	zoneNode.Set("name", config.String(z.name))

	running := origin.Clone()
	rotations := []rotation{{angle: running.R, origin: running.Pos()}}
	running.R = 0

	var out []*point.Point
	names := make(map[string]bool)
	first := true
	for colName, raw := range cols.All() {
		col, err := z.column(colName, raw)
		if err != nil {
			return nil, err
		}

		rowNames := config.Extend(zoneRows, col.rows).(*config.Map).Keys()
		if len(rowNames) == 0 {
			rowNames = []string{defaultName}
		}

		var keys []point.Meta
		for _, row := range rowNames {
			meta, err := z.key(zoneNode, col, row, zoneKey, zoneRows)
			if err != nil {
				return nil, err
			}
			keys = append(keys, meta)
		}

		lead := keys[0]
		if !first {
			running.X += lead.Spread
		}
		running.Y += lead.Stagger
		colAnchor := running.Clone()

		if lead.Splay != 0 {
			pivot := colAnchor.Clone().Shift(lead.Origin, false, false).Pos()
			rotations = pushRotation(rotations, lead.Splay, pivot)
		}

		cursor := colAnchor.Clone()
		for _, r := range rotations {
			cursor.Rotate(r.angle, &r.origin, false)
		}

		adjuster := anchor.New(nil, z.units)
		for _, meta := range keys {
			p := cursor.Clone()
			p.R += meta.Orient
			p.Shift(meta.Shift, true, false)
			p.R += meta.Rotate
			cursor = p.Clone()

			rowPath := col.path.Key("rows").Key(meta.Row)
			key, err := adjuster.Resolve(meta.Adjust, rowPath.Key("adjust"), p, false)
			if err != nil {
				return nil, err
			}
			key.Meta = meta

			if names[meta.Name] {
				return nil, errors.New(errors.ErrCodeDuplicatePoint,
					"point %q defined more than once", meta.Name).At(rowPath)
			}
			names[meta.Name] = true
			out = append(out, key)

			cursor.Shift([2]float64{0, meta.Padding}, true, false)
		}
		first = false
	}

	return out, nil
}

func (z *zone) column(name string, raw config.Node) (*column, error) {
	path := z.path.Key("columns").Key(name)
	cfg, err := config.OptionalMap(raw, path)
	if err != nil {
		return nil, err
	}
	if err := config.Unexpected(cfg, path, "rows", "key"); err != nil {
		return nil, err
	}
	rows, err := rowMaps(cfg.Value("rows"), path.Key("rows"))
	if err != nil {
		return nil, err
	}
	key, err := config.OptionalMap(cfg.Value("key"), path.Key("key"))
	if err != nil {
		return nil, err
	}
	node := cfg.Clone()
	node.Set("rows", rows)
	node.Set("key", key)
	node.Set("name", config.String(name))
	return &column{name: name, path: path, cfg: node, rows: rows, key: key}, nil
}

// key builds the config of one key by extending, from general to
// specific: defaults, global key, zone key, column key, zone row, column row.
func (z *zone) key(zoneNode *config.Map, col *column, row string, zoneKey, zoneRows *config.Map) (point.Meta, error) {
	path := col.path.Key("rows").Key(row)
	merged := config.Extend(
		defaultKey(z.units),
		z.globalKey,
		zoneKey,
		col.key,
		rowOrEmpty(zoneRows, row),
		rowOrEmpty(col.rows, row),
	)
	cfg, err := config.AsMap(merged, path)
	if err != nil {
		return point.Meta{}, err
	}
	cfg.Set("zone", zoneNode.Clone())
	cfg.Set("col", col.cfg.Clone())
	cfg.Set("row", config.String(row))

	if err := normalizeKey(cfg, path, z.units); err != nil {
		return point.Meta{}, err
	}
	templateKey(cfg, z.units)
	simplifyName(cfg, z.name, col.name, row)
	return metaFromKey(cfg), nil
}

// rowMaps validates a rows object, turning null row entries into empty maps.
func rowMaps(n config.Node, path config.Path) (*config.Map, error) {
	rows, err := config.OptionalMap(n, path)
	if err != nil {
		return nil, err
	}
	out := config.NewMap()
	for name, v := range rows.All() {
		row, err := config.OptionalMap(v, path.Key(name))
		if err != nil {
			return nil, err
		}
		out.Set(name, row)
	}
	return out, nil
}

func rowOrEmpty(rows *config.Map, name string) config.Node {
	if v := rows.Value(name); v != nil {
		return v
	}
	return config.NewMap()
}

// simplifyName drops the "default" column and row segments from a name
// generated by the default template, so that "thumb_default_default"
// becomes "thumb" and "m_default_home" becomes "m_home". Any other name,
// including one from a custom template, is kept as written.
func simplifyName(cfg *config.Map, zone, col, row string) {
	if config.Text(cfg.Value("name")) != strings.Join([]string{zone, col, row}, "_") {
		return
	}
	parts := []string{zone}
	for _, seg := range []string{col, row} {
		if seg != defaultName {
			parts = append(parts, seg)
		}
	}
	cfg.Set("name", config.String(strings.Join(parts, "_")))
}
