package figure

import (
	"math"

	"github.com/inamate/figura/internal/geom"
)

const arrowSize = 10

// pathFigure holds the node list shared by bezier figures and connections.
type pathFigure struct {
	Base
	path geom.BezierPath
}

func (f *pathFigure) Bounds() geom.Rect { return f.path.Bounds() }

func (f *pathFigure) DrawingArea() geom.Rect {
	g := strokeGrowth(f.self)
	if ArrowStart.Get(f.self) || ArrowEnd.Get(f.self) {
		g = math.Max(g, arrowSize)
	}
	return f.path.Bounds().Grow(g, g)
}

// SetBounds scales the nodes from the current bounds onto the new ones.
// A degenerate axis is translated instead of scaled.
func (f *pathFigure) SetBounds(anchor, lead geom.Point) {
	old := f.path.Bounds()
	r := geom.RectFromPoints(anchor, lead)
	sx, sy := 1.0, 1.0
	if old.Width > 0 {
		sx = r.Width / old.Width
	}
	if old.Height > 0 {
		sy = r.Height / old.Height
	}
	m := geom.Translate(r.X, r.Y).Multiply(geom.Scale(sx, sy)).Multiply(geom.Translate(-old.X, -old.Y))
	f.WillChange()
	f.path.Transform(m)
	f.Changed()
}

func (f *pathFigure) Transform(m geom.Matrix2D) {
	f.WillChange()
	f.path.Transform(m)
	f.Changed()
}

func (f *pathFigure) Contains(p geom.Point, tolerance float64) bool {
	g := StrokeWidth.Get(f.self)/2 + tolerance
	if f.path.Closed && f.path.Contains(p) {
		return true
	}
	return f.path.OutlineContains(p, math.Max(g, 0.5))
}

func (f *pathFigure) Draw(s Surface) {
	paint := PaintOf(f.self)
	if !f.path.Closed {
		paint.Fill = NoColor
	}
	s.DrawPath(f.path.ToPath(), paint)

	n := len(f.path.Nodes)
	if n < 2 {
		return
	}
	head := Paint{Fill: paint.Stroke, Stroke: paint.Stroke, StrokeWidth: paint.StrokeWidth, Opacity: paint.Opacity}
	if ArrowStart.Get(f.self) {
		s.DrawPath(arrowPath(f.path.Nodes[0].Point(), f.path.Nodes[0].Out(), f.path.Nodes[1].Point()), head)
	}
	if ArrowEnd.Get(f.self) {
		last := f.path.Nodes[n-1]
		s.DrawPath(arrowPath(last.Point(), last.In(), f.path.Nodes[n-2].Point()), head)
	}
}

// arrowPath builds a triangle pointing at tip, aimed away from ctrl, or
// from fallback when the control point coincides with the tip.
func arrowPath(tip, ctrl, fallback geom.Point) geom.Path {
	from := ctrl
	if from == tip {
		from = fallback
	}
	dir := tip.Sub(from).Normalize()
	if dir == (geom.Point{}) {
		dir = geom.Pt(1, 0)
	}
	normal := geom.Pt(-dir.Y, dir.X)
	base := tip.Sub(dir.Scale(arrowSize))
	var p geom.Path
	p.MoveTo(tip)
	p.LineTo(base.Add(normal.Scale(arrowSize / 2.5)))
	p.LineTo(base.Sub(normal.Scale(arrowSize / 2.5)))
	p.Close()
	return p
}

func (f *pathFigure) Geometry() Geometry {
	p := f.path.Clone()
	return Geometry{Bounds: f.path.Bounds(), Path: &p}
}

func (f *pathFigure) RestoreGeometry(g Geometry) {
	if g.Path == nil {
		return
	}
	f.WillChange()
	f.path = g.Path.Clone()
	f.Changed()
}

// Path returns a copy of the node list.
func (f *pathFigure) Path() geom.BezierPath { return f.path.Clone() }

func (f *pathFigure) SetPath(p geom.BezierPath) {
	f.WillChange()
	f.path = p.Clone()
	f.Changed()
}

func (f *pathFigure) NodeCount() int             { return len(f.path.Nodes) }
func (f *pathFigure) Node(i int) geom.BezierNode { return f.path.Nodes[i] }
func (f *pathFigure) IsClosed() bool             { return f.path.Closed }

func (f *pathFigure) SetNode(i int, n geom.BezierNode) {
	f.WillChange()
	f.path.Nodes[i] = n
	f.Changed()
}

func (f *pathFigure) AddNode(n geom.BezierNode) {
	f.InsertNode(len(f.path.Nodes), n)
}

func (f *pathFigure) InsertNode(i int, n geom.BezierNode) {
	f.WillChange()
	f.path.Nodes = append(f.path.Nodes, geom.BezierNode{})
	copy(f.path.Nodes[i+1:], f.path.Nodes[i:])
	f.path.Nodes[i] = n
	f.Changed()
}

func (f *pathFigure) RemoveNode(i int) {
	f.WillChange()
	f.path.Nodes = append(f.path.Nodes[:i], f.path.Nodes[i+1:]...)
	f.Changed()
}

func (f *pathFigure) SetClosed(closed bool) {
	if f.path.Closed == closed {
		return
	}
	f.WillChange()
	f.path.Closed = closed
	f.Changed()
}

func (f *pathFigure) StartPoint() geom.Point {
	if len(f.path.Nodes) == 0 {
		return geom.Point{}
	}
	return f.path.Nodes[0].Point()
}

func (f *pathFigure) EndPoint() geom.Point {
	if len(f.path.Nodes) == 0 {
		return geom.Point{}
	}
	return f.path.Nodes[len(f.path.Nodes)-1].Point()
}

func (f *pathFigure) SetStartPoint(p geom.Point) {
	f.WillChange()
	f.ensureNodes(p)
	f.path.Nodes[0].MoveTo(p)
	f.Changed()
}

func (f *pathFigure) SetEndPoint(p geom.Point) {
	f.WillChange()
	f.ensureNodes(p)
	f.path.Nodes[len(f.path.Nodes)-1].MoveTo(p)
	f.Changed()
}

// ensureNodes grows the path to the two nodes a line needs.
func (f *pathFigure) ensureNodes(p geom.Point) {
	for len(f.path.Nodes) < 2 {
		f.path.Nodes = append(f.path.Nodes, geom.NewNode(p))
	}
}
