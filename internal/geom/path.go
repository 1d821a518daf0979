package geom

import (
	"math"

	"honnef.co/go/curve"
)

// PathOp is a path segment operator.
type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	CubicTo // control 1, control 2, end point
	Close
)

// PathCmd is one segment of a Path. Only as many points as the operator
// needs are meaningful.
type PathCmd struct {
	Op  PathOp
	Pts [3]Point
}

// Path is a drawable shape made of move/line/cubic/close commands.
type Path struct {
	Cmds []PathCmd
}

func (p *Path) MoveTo(pt Point) { p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Pts: [3]Point{pt}}) }
func (p *Path) LineTo(pt Point) { p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Pts: [3]Point{pt}}) }
func (p *Path) CubicTo(c1, c2, pt Point) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Pts: [3]Point{c1, c2, pt}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// kappa is the bezier control distance for approximating a quarter circle.
const kappa = 0.5522847498

// RectPath returns the outline of r.
func RectPath(r Rect) Path {
	var p Path
	p.MoveTo(Point{r.X, r.Y})
	p.LineTo(Point{r.MaxX(), r.Y})
	p.LineTo(Point{r.MaxX(), r.MaxY()})
	p.LineTo(Point{r.X, r.MaxY()})
	p.Close()
	return p
}

// EllipsePath returns four bezier curves approximating the ellipse
// inscribed in r.
func EllipsePath(r Rect) Path {
	c := r.Center()
	rx, ry := r.Width/2, r.Height/2
	kx, ky := rx*kappa, ry*kappa

	var p Path
	p.MoveTo(Point{c.X + rx, c.Y})
	p.CubicTo(Point{c.X + rx, c.Y + ky}, Point{c.X + kx, c.Y + ry}, Point{c.X, c.Y + ry})
	p.CubicTo(Point{c.X - kx, c.Y + ry}, Point{c.X - rx, c.Y + ky}, Point{c.X - rx, c.Y})
	p.CubicTo(Point{c.X - rx, c.Y - ky}, Point{c.X - kx, c.Y - ry}, Point{c.X, c.Y - ry})
	p.CubicTo(Point{c.X + kx, c.Y - ry}, Point{c.X + rx, c.Y - ky}, Point{c.X + rx, c.Y})
	p.Close()
	return p
}

// RoundRectPath returns r with corners rounded by radius (clamped to half
// the shorter side).
func RoundRectPath(r Rect, radius float64) Path {
	radius = math.Max(0, math.Min(radius, math.Min(r.Width, r.Height)/2))
	if radius == 0 {
		return RectPath(r)
	}
	k := radius * (1 - kappa)
	x0, y0, x1, y1 := r.X, r.Y, r.MaxX(), r.MaxY()

	var p Path
	p.MoveTo(Point{x0 + radius, y0})
	p.LineTo(Point{x1 - radius, y0})
	p.CubicTo(Point{x1 - k, y0}, Point{x1, y0 + k}, Point{x1, y0 + radius})
	p.LineTo(Point{x1, y1 - radius})
	p.CubicTo(Point{x1, y1 - k}, Point{x1 - k, y1}, Point{x1 - radius, y1})
	p.LineTo(Point{x0 + radius, y1})
	p.CubicTo(Point{x0 + k, y1}, Point{x0, y1 - k}, Point{x0, y1 - radius})
	p.LineTo(Point{x0, y0 + radius})
	p.CubicTo(Point{x0, y0 + k}, Point{x0 + k, y0}, Point{x0 + radius, y0})
	p.Close()
	return p
}

// Transform returns a copy of the path with every point mapped through m.
func (p Path) Transform(m Matrix2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		out.Cmds[i].Op = c.Op
		for j := range c.Pts {
			out.Cmds[i].Pts[j] = m.Apply(c.Pts[j])
		}
	}
	return out
}

// Bounds returns the bounding box of all on-curve and control points.
func (p Path) Bounds() Rect {
	first := true
	var r Rect
	add := func(pt Point) {
		if first {
			r = Rect{X: pt.X, Y: pt.Y}
			first = false
			return
		}
		r = r.AddPoint(pt)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo, LineTo:
			add(c.Pts[0])
		case CubicTo:
			add(c.Pts[0])
			add(c.Pts[1])
			add(c.Pts[2])
		}
	}
	return r
}

// Subpath is a flattened run of points.
type Subpath struct {
	Points []Point
	Closed bool
}

// flattenTolerance is the default maximum distance between a curve and its
// flattened polyline.
const flattenTolerance = 0.25

// Flatten converts the path into polylines whose distance from the curves
// stays within tolerance.
func (p Path) Flatten(tolerance float64) []Subpath {
	if tolerance <= 0 {
		tolerance = flattenTolerance
	}
	var out []Subpath
	for el := range curve.Flatten(p.elements(), tolerance) {
		switch el.Kind {
		case curve.MoveToKind:
			out = append(out, Subpath{Points: []Point{fromCurve(el.P0)}})
		case curve.LineToKind:
			sp := &out[len(out)-1]
			sp.Points = append(sp.Points, fromCurve(el.P0))
		case curve.ClosePathKind:
			out[len(out)-1].Closed = true
		}
	}
	return out
}

// Contains reports whether pt is inside the filled path (even-odd rule).
// Open subpaths are treated as implicitly closed, as fills are.
func (p Path) Contains(pt Point) bool {
	inside := false
	for _, sp := range p.Flatten(flattenTolerance) {
		if len(sp.Points) > 2 && PolygonContains(sp.Points, pt) {
			inside = !inside
		}
	}
	return inside
}

// OutlineContains reports whether pt is within tolerance of the stroked
// outline.
func (p Path) OutlineContains(pt Point, tolerance float64) bool {
	for _, sp := range p.Flatten(flattenTolerance) {
		if PolylineDistance(pt, sp.Points, sp.Closed) <= tolerance {
			return true
		}
	}
	return false
}
