package figure

import (
	"math"

	"github.com/inamate/figura/internal/geom"
)

// Text is a single block of text anchored at its top-left corner.
type Text struct {
	Base
	origin   geom.Point
	measurer TextMeasurer
}

func NewText(origin geom.Point, text string) *Text {
	f := &Text{origin: origin, measurer: EstimateMeasurer{}}
	f.init(f)
	if text != "" {
		f.attrs[TextContent.Name()] = text
	}
	return f
}

// SetMeasurer installs the measurer used to compute bounds.
func (f *Text) SetMeasurer(m TextMeasurer) {
	if m == nil {
		m = EstimateMeasurer{}
	}
	f.WillChange()
	f.measurer = m
	f.Changed()
}

func (f *Text) Type() Type { return TypeText }

func (f *Text) Text() string     { return TextContent.Get(f) }
func (f *Text) SetText(s string) { TextContent.Set(f, s) }
func (f *Text) IsEditable() bool { return true }

func (f *Text) Bounds() geom.Rect {
	font := FontOf(f)
	w, h := f.measurer.MeasureText(f.Text(), font)
	if w == 0 {
		w = font.Size / 2
	}
	return geom.Rect{X: f.origin.X, Y: f.origin.Y, Width: w, Height: h}
}

func (f *Text) DrawingArea() geom.Rect { return f.Bounds().Grow(1, 1) }

func (f *Text) SetBounds(anchor, lead geom.Point) {
	f.WillChange()
	f.origin = geom.RectFromPoints(anchor, lead).Min()
	f.Changed()
}

// Transform moves the origin and scales the font by the uniform part of m.
func (f *Text) Transform(m geom.Matrix2D) {
	f.WillChange()
	f.origin = m.Apply(f.origin)
	if s := m.ScaleFactor(); s > 0 && math.Abs(s-1) > 1e-9 {
		f.attrs[FontSize.Name()] = FontSize.Get(f) * s
	}
	f.Changed()
}

func (f *Text) Contains(p geom.Point, tolerance float64) bool {
	return f.Bounds().Grow(tolerance, tolerance).Contains(p)
}

func (f *Text) Draw(s Surface) {
	text := f.Text()
	if text == "" {
		return
	}
	s.DrawText(text, f.origin, FontOf(f), Paint{Fill: TextColor.Get(f), Opacity: Opacity.Get(f)})
}

func (f *Text) Clone() Figure {
	c := &Text{origin: f.origin, measurer: f.measurer}
	c.Base = f.cloneFor(c)
	return c
}

func (f *Text) Geometry() Geometry { return Geometry{Bounds: f.Bounds()} }

func (f *Text) RestoreGeometry(g Geometry) {
	f.WillChange()
	f.origin = g.Bounds.Min()
	f.Changed()
}

func (f *Text) ChopPoint(from geom.Point) geom.Point { return geom.ChopRect(f.Bounds(), from) }
func (f *Text) FindConnector(p geom.Point) Connector { return findStandardConnector(f, p) }
func (f *Text) Connectors() []Connector              { return standardConnectors(f) }
