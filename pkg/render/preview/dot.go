package preview

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/fcoury/ergogen-rs-sub000/pkg/point"
	"github.com/fcoury/ergogen-rs-sub000/pkg/points"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatDOT = "dot"
)

// DefaultScale converts millimetres to Graphviz points.
const DefaultScale = 72 / 25.4

// Options configures preview rendering.
type Options struct {
	Format string  `json:"format,omitempty"`
	Binds  bool    `json:"binds,omitempty"`
	Scale  float64 `json:"scale,omitempty"` // output points per millimetre
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// Validate checks the format and scale.
func (o Options) Validate() error {
	if o.Format != FormatSVG && o.Format != FormatDOT {
		return fmt.Errorf("invalid preview format: %q (must be one of: svg, dot)", o.Format)
	}
	if o.Scale < 0 {
		return fmt.Errorf("invalid preview scale: %v", o.Scale)
	}
	return nil
}

// Render produces the preview in opts.Format.
func Render(ctx context.Context, pts *points.Set, opts Options) ([]byte, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	dot := ToDOT(pts, opts)
	if opts.Format == FormatDOT {
		return []byte(dot), nil
	}
	return RenderSVG(ctx, dot)
}

// ToDOT converts a point set to an undirected DOT graph. Positions are
// flipped to Graphviz's y-up convention and pinned with "!".
func ToDOT(pts *points.Set, opts Options) string {
	opts.SetDefaults()

	var buf bytes.Buffer
	buf.WriteString("graph keyplan {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=8];\n")
	buf.WriteString("  edge [color=\"#888888\"];\n")
	buf.WriteString("\n")

	for name, p := range pts.All() {
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(fmtAttrs(p, opts.Scale), ", "))
	}

	if opts.Binds {
		buf.WriteString("\n")
		for _, e := range Neighbours(pts) {
			fmt.Fprintf(&buf, "  %q -- %q;\n", e[0], e[1])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(p *point.Point, scale float64) []string {
	const inch = 72.0
	attrs := []string{
		fmt.Sprintf("pos=\"%s,%s!\"", num(p.X*scale), num(-p.Y*scale)),
		fmt.Sprintf("width=%s", num(p.Meta.Width*scale/inch)),
		fmt.Sprintf("height=%s", num(p.Meta.Height*scale/inch)),
		fmt.Sprintf("tooltip=%q", fmt.Sprintf("%s (%s, %s) r=%s", p.Meta.Name, num(p.X), num(p.Y), num(p.R))),
	}
	if p.IsMirrored() {
		attrs = append(attrs, "fillcolor=\"#eef4ff\"")
	}
	return attrs
}

func num(f float64) string {
	if math.Abs(f) < point.Epsilon {
		f = 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Neighbours returns the pairs of points joined by a positive bind: each
// point's right bind links to the nearest point of the next column, and its
// top bind to the nearest point above it in its own column. Halves of a
// mirrored zone are kept apart, the same way autobind treats them.
func Neighbours(pts *points.Set) [][2]string {
	type col struct{ zone, name string }
	side := func(p *point.Point) string {
		if p.IsMirrored() {
			return point.MirrorPrefix + p.Meta.Zone.Name
		}
		return p.Meta.Zone.Name
	}

	byCol := make(map[col][]*point.Point)
	for _, p := range pts.Points() {
		k := col{side(p), p.Meta.Col}
		byCol[k] = append(byCol[k], p)
	}

	nearest := func(cands []*point.Point, p *point.Point, accept func(*point.Point) bool) *point.Point {
		var best *point.Point
		for _, q := range cands {
			if q == p || !accept(q) {
				continue
			}
			if best == nil || math.Abs(q.Y-p.Y) < math.Abs(best.Y-p.Y) {
				best = q
			}
		}
		return best
	}

	var out [][2]string
	seen := make(map[[2]string]bool)
	add := func(a, b *point.Point) {
		if b == nil {
			return
		}
		e := [2]string{a.Meta.Name, b.Meta.Name}
		if e[0] > e[1] {
			e[0], e[1] = e[1], e[0]
		}
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}

	for _, p := range pts.Points() {
		z := side(p)
		if p.Meta.Bind[1] > 0 {
			cols := p.Meta.Zone.Columns
			if i := slices.Index(cols, p.Meta.Col); i >= 0 && i+1 < len(cols) {
				add(p, nearest(byCol[col{z, cols[i+1]}], p, func(*point.Point) bool { return true }))
			}
		}
		if p.Meta.Bind[0] > 0 {
			above := func(q *point.Point) bool { return q.Y > p.Y+point.Epsilon }
			add(p, nearest(byCol[col{z, p.Meta.Col}], p, above))
		}
	}
	return out
}

// RenderSVG lays out a DOT graph with Graphviz and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.SetLayout(graphviz.NEATO).Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg header with a plain
// viewBox so the preview scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
