package figure

import "github.com/inamate/figura/internal/geom"

// GraphicalComposite draws a presentation figure behind children that a
// layouter arranges inside it. Its bounds are the presentation's bounds.
type GraphicalComposite struct {
	compositeBase
	presentation Figure
	layouter     Layouter
}

// NewGraphicalComposite uses presentation as the background. A nil
// presentation becomes a plain rectangle.
func NewGraphicalComposite(presentation Figure, layouter Layouter) *GraphicalComposite {
	if presentation == nil {
		presentation = NewRectangle(geom.Rect{})
	}
	g := &GraphicalComposite{presentation: presentation, layouter: layouter}
	g.init(g)
	presentation.SetOwner(g.id)
	return g
}

func (g *GraphicalComposite) Type() Type           { return TypeGraphicalComposite }
func (g *GraphicalComposite) Presentation() Figure { return g.presentation }
func (g *GraphicalComposite) Layouter() Layouter   { return g.layouter }
func (g *GraphicalComposite) Bounds() geom.Rect    { return g.presentation.Bounds() }
func (g *GraphicalComposite) LayouterKind() string { return layouterKind(g.layouter) }

func (g *GraphicalComposite) DrawingArea() geom.Rect {
	return g.presentation.DrawingArea().Union(g.childArea())
}

func (g *GraphicalComposite) SetLayouter(l Layouter) {
	g.layouter = l
	g.Layout()
}

func (g *GraphicalComposite) Add(f Figure) { g.AddAt(-1, f) }

func (g *GraphicalComposite) AddAt(i int, f Figure) {
	g.WillChange()
	g.basicAdd(i, f)
	g.Layout()
	g.Changed()
}

func (g *GraphicalComposite) Remove(f Figure) int {
	g.WillChange()
	i := g.basicRemove(f)
	g.Layout()
	g.Changed()
	return i
}

func (g *GraphicalComposite) SetBounds(anchor, lead geom.Point) {
	g.WillChange()
	r := geom.RectFromPoints(anchor, lead)
	if g.layouter != nil {
		r = g.layouter.Layout(g, r.Min(), r.Max())
	}
	g.presentation.SetBounds(r.Min(), r.Max())
	g.Changed()
}

// Layout rearranges the children within the current bounds.
func (g *GraphicalComposite) Layout() {
	r := g.Bounds()
	g.SetBounds(r.Min(), r.Max())
}

func (g *GraphicalComposite) Transform(m geom.Matrix2D) {
	g.WillChange()
	g.presentation.Transform(m)
	for _, ch := range g.children {
		ch.Transform(m)
	}
	g.Changed()
}

func (g *GraphicalComposite) Contains(p geom.Point, tolerance float64) bool {
	return g.presentation.Contains(p, tolerance) || g.childrenContain(p, tolerance)
}

func (g *GraphicalComposite) Draw(s Surface) {
	g.presentation.Draw(s)
	for _, ch := range g.children {
		ch.Draw(s)
	}
}

func (g *GraphicalComposite) Clone() Figure {
	c := &GraphicalComposite{presentation: g.presentation.Clone(), layouter: g.layouter}
	c.Base = g.cloneFor(c)
	c.presentation.SetOwner(c.id)
	for _, ch := range g.children {
		c.basicAdd(-1, ch.Clone())
	}
	return c
}

// Geometry stores the presentation first, then the children.
func (g *GraphicalComposite) Geometry() Geometry {
	geo := Geometry{Bounds: g.Bounds(), Children: []Geometry{g.presentation.Geometry()}}
	for _, ch := range g.children {
		geo.Children = append(geo.Children, ch.Geometry())
	}
	return geo
}

func (g *GraphicalComposite) RestoreGeometry(geo Geometry) {
	if len(geo.Children) == 0 {
		return
	}
	g.WillChange()
	g.presentation.RestoreGeometry(geo.Children[0])
	for i, ch := range g.children {
		if i+1 < len(geo.Children) {
			ch.RestoreGeometry(geo.Children[i+1])
		}
	}
	g.Changed()
}

func (g *GraphicalComposite) ChopPoint(from geom.Point) geom.Point {
	if c, ok := g.presentation.(Connectable); ok {
		return c.ChopPoint(from)
	}
	return geom.ChopRect(g.Bounds(), from)
}

func (g *GraphicalComposite) FindConnector(p geom.Point) Connector { return findStandardConnector(g, p) }
func (g *GraphicalComposite) Connectors() []Connector              { return standardConnectors(g) }

// SetAttribute styles the presentation as well as the composite.
func (g *GraphicalComposite) SetAttribute(name string, v any) {
	g.WillChange()
	g.compositeBase.SetAttribute(name, v)
	g.presentation.SetAttribute(name, v)
	g.Changed()
}
