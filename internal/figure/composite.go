package figure

import "github.com/inamate/figura/internal/geom"

// compositeBase keeps the ordered children of a composite and forwards
// their invalidations as its own.
type compositeBase struct {
	Base
	children []Figure
}

func (c *compositeBase) Children() []Figure {
	return append([]Figure(nil), c.children...)
}

func (c *compositeBase) ChildCount() int { return len(c.children) }

func (c *compositeBase) IndexOf(f Figure) int {
	for i, x := range c.children {
		if x == f {
			return i
		}
	}
	return -1
}

func (c *compositeBase) basicAdd(i int, f Figure) {
	if i < 0 || i > len(c.children) {
		i = len(c.children)
	}
	c.children = append(c.children, nil)
	copy(c.children[i+1:], c.children[i:])
	c.children[i] = f
	f.SetOwner(c.id)
	f.AddListener(c.self.(Listener))
}

func (c *compositeBase) basicRemove(f Figure) int {
	i := c.IndexOf(f)
	if i < 0 {
		return -1
	}
	c.children = append(c.children[:i], c.children[i+1:]...)
	f.RemoveListener(c.self.(Listener))
	f.SetOwner("")
	return i
}

func (c *compositeBase) childBounds() geom.Rect {
	var r geom.Rect
	for _, ch := range c.children {
		r = r.Union(ch.Bounds())
	}
	return r
}

func (c *compositeBase) childArea() geom.Rect {
	var r geom.Rect
	for _, ch := range c.children {
		r = r.Union(ch.DrawingArea())
	}
	return r
}

func (c *compositeBase) childrenContain(p geom.Point, tolerance float64) bool {
	for i := len(c.children) - 1; i >= 0; i-- {
		if c.children[i].Contains(p, tolerance) {
			return true
		}
	}
	return false
}

// FigureChanged forwards child changes made outside the composite's own
// change bracket.
func (c *compositeBase) FigureChanged(e Event) {
	if c.changing() {
		return
	}
	c.fire(func(l Listener) {
		l.FigureChanged(Event{Source: c.self, Invalidated: e.Invalidated})
	})
}

func (c *compositeBase) AttributeChanged(Event) {}
func (c *compositeBase) FigureRemoved(Event)    {}

// NotifyRemoved also notifies the children so connections attached to
// them detach.
func (c *compositeBase) NotifyRemoved() {
	c.Base.NotifyRemoved()
	for _, ch := range c.children {
		ch.NotifyRemoved()
	}
}

// fitTransform maps the rectangle from onto to, keeping degenerate axes.
func fitTransform(from, to geom.Rect) geom.Matrix2D {
	sx, sy := 1.0, 1.0
	if from.Width > 0 {
		sx = to.Width / from.Width
	}
	if from.Height > 0 {
		sy = to.Height / from.Height
	}
	return geom.Translate(to.X, to.Y).Multiply(geom.Scale(sx, sy)).Multiply(geom.Translate(-from.X, -from.Y))
}

// Group composes children that move and scale together.
type Group struct {
	compositeBase
}

func NewGroup(children ...Figure) *Group {
	g := &Group{}
	g.init(g)
	for _, ch := range children {
		g.basicAdd(-1, ch)
	}
	return g
}

func (g *Group) Type() Type             { return TypeGroup }
func (g *Group) Bounds() geom.Rect      { return g.childBounds() }
func (g *Group) DrawingArea() geom.Rect { return g.childArea() }

func (g *Group) Add(f Figure) { g.AddAt(-1, f) }

func (g *Group) AddAt(i int, f Figure) {
	g.WillChange()
	g.basicAdd(i, f)
	g.Changed()
}

func (g *Group) Remove(f Figure) int {
	g.WillChange()
	i := g.basicRemove(f)
	g.Changed()
	return i
}

func (g *Group) SetBounds(anchor, lead geom.Point) {
	g.Transform(fitTransform(g.Bounds(), geom.RectFromPoints(anchor, lead)))
}

func (g *Group) Transform(m geom.Matrix2D) {
	g.WillChange()
	for _, ch := range g.children {
		ch.Transform(m)
	}
	g.Changed()
}

func (g *Group) Contains(p geom.Point, tolerance float64) bool {
	return g.childrenContain(p, tolerance)
}

func (g *Group) Draw(s Surface) {
	for _, ch := range g.children {
		ch.Draw(s)
	}
}

func (g *Group) Clone() Figure {
	c := &Group{}
	c.Base = g.cloneFor(c)
	for _, ch := range g.children {
		c.basicAdd(-1, ch.Clone())
	}
	return c
}

func (g *Group) Geometry() Geometry {
	geo := Geometry{Bounds: g.Bounds()}
	for _, ch := range g.children {
		geo.Children = append(geo.Children, ch.Geometry())
	}
	return geo
}

func (g *Group) RestoreGeometry(geo Geometry) {
	g.WillChange()
	for i, ch := range g.children {
		if i < len(geo.Children) {
			ch.RestoreGeometry(geo.Children[i])
		}
	}
	g.Changed()
}

func (g *Group) ChopPoint(from geom.Point) geom.Point { return geom.ChopRect(g.Bounds(), from) }
func (g *Group) FindConnector(geom.Point) Connector   { return NewChopConnector(g) }
func (g *Group) Connectors() []Connector              { return []Connector{NewChopConnector(g)} }
