package figure

import "github.com/inamate/figura/internal/geom"

// Ellipse is the ellipse inscribed in its box.
type Ellipse struct {
	Base
	box
}

func NewEllipse(r geom.Rect) *Ellipse {
	f := &Ellipse{box: box{rect: r}}
	f.init(f)
	return f
}

func (f *Ellipse) Type() Type        { return TypeEllipse }
func (f *Ellipse) Bounds() geom.Rect { return f.bounds() }

func (f *Ellipse) DrawingArea() geom.Rect {
	g := strokeGrowth(f)
	return f.bounds().Grow(g, g)
}

func (f *Ellipse) SetBounds(anchor, lead geom.Point) {
	f.WillChange()
	f.setBounds(anchor, lead)
	f.Changed()
}

func (f *Ellipse) Transform(m geom.Matrix2D) {
	f.WillChange()
	f.transform(m)
	f.Changed()
}

func (f *Ellipse) Contains(p geom.Point, tolerance float64) bool {
	lp, tol := f.toLocal(p, tolerance)
	g := StrokeWidth.Get(f)/2 + tol
	r := f.rect.Grow(g, g)
	rx, ry := r.Width/2, r.Height/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := r.Center()
	dx, dy := (lp.X-c.X)/rx, (lp.Y-c.Y)/ry
	return dx*dx+dy*dy <= 1
}

func (f *Ellipse) Draw(s Surface) {
	s.DrawPath(f.path(geom.EllipsePath(f.rect)), PaintOf(f))
}

func (f *Ellipse) Clone() Figure {
	c := &Ellipse{box: f.box.clone()}
	c.Base = f.cloneFor(c)
	return c
}

func (f *Ellipse) Geometry() Geometry { return f.geometry() }

func (f *Ellipse) RestoreGeometry(g Geometry) {
	f.WillChange()
	f.restore(g)
	f.Changed()
}

func (f *Ellipse) ChopPoint(from geom.Point) geom.Point {
	return f.chop(from, geom.ChopEllipse)
}

func (f *Ellipse) FindConnector(p geom.Point) Connector { return findStandardConnector(f, p) }
func (f *Ellipse) Connectors() []Connector              { return standardConnectors(f) }
