package figure

import "github.com/inamate/figura/internal/geom"

// Rectangle is a box figure, optionally with rounded corners.
type Rectangle struct {
	Base
	box
}

func NewRectangle(r geom.Rect) *Rectangle {
	f := &Rectangle{box: box{rect: r}}
	f.init(f)
	return f
}

func (f *Rectangle) Type() Type        { return TypeRectangle }
func (f *Rectangle) Bounds() geom.Rect { return f.bounds() }

func (f *Rectangle) DrawingArea() geom.Rect {
	g := strokeGrowth(f)
	return f.bounds().Grow(g, g)
}

func (f *Rectangle) SetBounds(anchor, lead geom.Point) {
	f.WillChange()
	f.setBounds(anchor, lead)
	f.Changed()
}

func (f *Rectangle) Transform(m geom.Matrix2D) {
	f.WillChange()
	f.transform(m)
	f.Changed()
}

func (f *Rectangle) localPath() geom.Path {
	if r := CornerRadius.Get(f); r > 0 {
		return geom.RoundRectPath(f.rect, r)
	}
	return geom.RectPath(f.rect)
}

func (f *Rectangle) Contains(p geom.Point, tolerance float64) bool {
	lp, tol := f.toLocal(p, tolerance)
	g := StrokeWidth.Get(f)/2 + tol
	return f.rect.Grow(g, g).Contains(lp)
}

func (f *Rectangle) Draw(s Surface) {
	s.DrawPath(f.path(f.localPath()), PaintOf(f))
}

func (f *Rectangle) Clone() Figure {
	c := &Rectangle{box: f.box.clone()}
	c.Base = f.cloneFor(c)
	return c
}

func (f *Rectangle) Geometry() Geometry { return f.geometry() }

func (f *Rectangle) RestoreGeometry(g Geometry) {
	f.WillChange()
	f.restore(g)
	f.Changed()
}

func (f *Rectangle) ChopPoint(from geom.Point) geom.Point {
	if r := CornerRadius.Get(f); r > 0 {
		return f.chop(from, func(rect geom.Rect, p geom.Point) geom.Point {
			return geom.ChopRoundRect(rect, r, p)
		})
	}
	return f.chop(from, geom.ChopRect)
}

func (f *Rectangle) FindConnector(p geom.Point) Connector { return findStandardConnector(f, p) }
func (f *Rectangle) Connectors() []Connector              { return standardConnectors(f) }
