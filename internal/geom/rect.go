package geom

import "math"

// Point is a location in drawing coordinates (y grows downwards).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Dist(q Point) float64  { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }

// DistSq returns the squared distance between p and q.
func (p Point) DistSq(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Normalize returns p scaled to unit length, or the zero point.
func (p Point) Normalize() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Near reports whether p and q are within eps of each other on both axes.
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the normalized rectangle spanned by two corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MaxY() float64 { return r.Y + r.Height }
func (r Rect) Min() Point    { return Point{r.X, r.Y} }
func (r Rect) Max() Point    { return Point{r.X + r.Width, r.Y + r.Height} }

// Contains checks if a point is inside the rect (edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.MaxX() <= r.MaxX() && o.MaxY() <= r.MaxY()
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
// Degenerate (zero area) rects still contribute their position, so lines
// and points are not lost when accumulating damage.
func (r Rect) Union(other Rect) Rect {
	if r == (Rect{}) {
		return other
	}
	if other == (Rect{}) {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// AddPoint grows r to include p.
func (r Rect) AddPoint(p Point) Rect {
	minX := min(r.X, p.X)
	minY := min(r.Y, p.Y)
	maxX := max(r.MaxX(), p.X)
	maxY := max(r.MaxY(), p.Y)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Intersects reports whether the two rects overlap (touching edges count).
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.MaxX() && o.X <= r.MaxX() && r.Y <= o.MaxY() && o.Y <= r.MaxY()
}

// Grow returns r expanded by dx and dy on every side.
func (r Rect) Grow(dx, dy float64) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, Width: r.Width + 2*dx, Height: r.Height + 2*dy}
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// Outcode classifies p against r the way Cohen-Sutherland clipping does.
type Outcode int

const (
	OutLeft Outcode = 1 << iota
	OutTop
	OutRight
	OutBottom
)

// Outcode returns the sides of r that p lies beyond. Points on an edge
// are classified by the nearest edge so that chop points, which sit
// exactly on the outline, still report a side.
func (r Rect) Outcode(p Point) Outcode {
	var out Outcode
	switch {
	case p.X < r.X:
		out |= OutLeft
	case p.X > r.MaxX():
		out |= OutRight
	}
	switch {
	case p.Y < r.Y:
		out |= OutTop
	case p.Y > r.MaxY():
		out |= OutBottom
	}
	if out != 0 {
		return out
	}
	dl, dr := p.X-r.X, r.MaxX()-p.X
	dt, db := p.Y-r.Y, r.MaxY()-p.Y
	switch min(dl, dr, dt, db) {
	case dl:
		return OutLeft
	case dr:
		return OutRight
	case dt:
		return OutTop
	default:
		return OutBottom
	}
}
