// Package point defines the pose type produced by the layout engine.
//
// A [Point] is a 2D position with a rotation in degrees and a [Meta] bag
// describing the key it belongs to. Points use y-down coordinates; callers
// targeting a y-up system negate Y.
//
// Shift and Rotate are mirror-aware: on a mirrored point the x component of
// a shift and the sign of a rotation are flipped unless resist is set, so
// the same relative instructions produce a reflected result.
package point

import (
	"math"
)

// Epsilon is the tolerance used when comparing coordinates.
const Epsilon = 1e-9

// Point is a pose with metadata.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	R    float64 `json:"r"`
	Meta Meta    `json:"meta"`
}

// New returns a point at (x, y) with rotation r.
func New(x, y, r float64, meta Meta) *Point {
	return &Point{X: x, Y: y, R: r, Meta: meta}
}

// Origin returns a zero point with default metadata.
func Origin() *Point {
	return &Point{Meta: NewMeta()}
}

// Pos returns the position as a pair.
func (p *Point) Pos() [2]float64 { return [2]float64{p.X, p.Y} }

// IsMirrored reports whether the point is marked mirrored.
func (p *Point) IsMirrored() bool {
	return p.Meta.Mirrored != nil && *p.Meta.Mirrored
}

// Clone returns a deep copy of p.
func (p *Point) Clone() *Point {
	c := *p
	c.Meta = p.Meta.Clone()
	return &c
}

// Shift translates p by s. When relative is set the offset is interpreted
// in the point's own frame, i.e. rotated by R first. It returns p.
func (p *Point) Shift(s [2]float64, relative, resist bool) *Point {
	if !resist && p.IsMirrored() {
		s[0] = -s[0]
	}
	if relative {
		s = RotateAround(s, p.R, [2]float64{})
	}
	p.X += s[0]
	p.Y += s[1]
	return p
}

// Rotate adds angle to R. If origin is non-nil the position is also
// rotated around it. It returns p.
func (p *Point) Rotate(angle float64, origin *[2]float64, resist bool) *Point {
	if !resist && p.IsMirrored() {
		angle = -angle
	}
	if origin != nil {
		pos := RotateAround(p.Pos(), angle, *origin)
		p.X, p.Y = pos[0], pos[1]
	}
	p.R += angle
	return p
}

// Mirror reflects p across the vertical line at x and toggles its
// mirrored flag, if one is set. It returns p.
func (p *Point) Mirror(x float64) *Point {
	p.X = 2*x - p.X
	p.R = -p.R
	if p.Meta.Mirrored != nil {
		p.Meta.SetMirrored(!*p.Meta.Mirrored)
	}
	return p
}

// Angle returns the rotation that aims p's local y-axis at other, in degrees.
func (p *Point) Angle(other *Point) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return -math.Atan2(dx, dy) * 180 / math.Pi
}

// Equals reports whether p and other have the same pose within Epsilon.
// Metadata is not compared.
func (p *Point) Equals(other *Point) bool {
	return math.Abs(p.X-other.X) < Epsilon &&
		math.Abs(p.Y-other.Y) < Epsilon &&
		math.Abs(p.R-other.R) < Epsilon
}

// RotateAround rotates v counterclockwise by deg degrees around origin.
func RotateAround(v [2]float64, deg float64, origin [2]float64) [2]float64 {
	if deg == 0 {
		return v
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	dx, dy := v[0]-origin[0], v[1]-origin[1]
	return [2]float64{
		origin[0] + dx*cos - dy*sin,
		origin[1] + dx*sin + dy*cos,
	}
}

// RotateVector rotates v by deg degrees around the origin.
func RotateVector(v [2]float64, deg float64) [2]float64 {
	return RotateAround(v, deg, [2]float64{})
}
