package figure

import "github.com/inamate/figura/internal/geom"

// Bezier is an open or closed path of bezier nodes. Straight lines and
// polylines are beziers without control points.
type Bezier struct {
	pathFigure
}

func NewBezier(p geom.BezierPath) *Bezier {
	f := &Bezier{pathFigure{path: p.Clone()}}
	f.init(f)
	return f
}

// NewLine returns a two node bezier from a to b.
func NewLine(a, b geom.Point) *Bezier {
	return NewBezier(geom.BezierPath{Nodes: []geom.BezierNode{geom.NewNode(a), geom.NewNode(b)}})
}

func (f *Bezier) Type() Type { return TypeBezier }

func (f *Bezier) Clone() Figure {
	c := &Bezier{pathFigure{path: f.path.Clone()}}
	c.Base = f.cloneFor(c)
	return c
}

func (f *Bezier) ChopPoint(from geom.Point) geom.Point {
	if hit, ok := f.path.Chop(f.path.Bounds().Center(), from); ok {
		return hit
	}
	return f.path.ClosestPoint(from)
}

func (f *Bezier) FindConnector(geom.Point) Connector { return NewChopConnector(f) }
func (f *Bezier) Connectors() []Connector            { return []Connector{NewChopConnector(f)} }
