// Package figure defines the drawable, selectable shapes of a drawing and
// the capability interfaces tools and handles query them for.
package figure

import (
	"reflect"
	"slices"

	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/typeid"
)

// Type is the persistence tag of a figure kind.
type Type string

const (
	TypeRectangle          Type = "rect"
	TypeEllipse            Type = "ellipse"
	TypeBezier             Type = "bezier"
	TypeText               Type = "text"
	TypeImage              Type = "image"
	TypeGroup              Type = "group"
	TypeGraphicalComposite Type = "graphical-composite"
	TypeLineConnection     Type = "connection"
)

// Figure is the small core every drawable element implements. Optional
// behaviour is exposed through the capability interfaces below and queried
// with a type assertion.
type Figure interface {
	ID() string
	// SetID replaces the identity. Only used when restoring persisted figures.
	SetID(id string)
	Type() Type

	// Bounds is the geometric extent of the figure.
	Bounds() geom.Rect
	// DrawingArea is the region repainting must cover, including stroke
	// width and decorations.
	DrawingArea() geom.Rect
	// SetBounds reshapes the figure so its bounds span anchor and lead.
	SetBounds(anchor, lead geom.Point)
	Transform(m geom.Matrix2D)
	// Contains reports whether p hits the figure. tolerance is the hit slop
	// in drawing units.
	Contains(p geom.Point, tolerance float64) bool
	Draw(s Surface)
	// Clone returns a deep copy with a fresh id, no owner and no listeners.
	Clone() Figure

	Attribute(name string) (any, bool)
	SetAttribute(name string, v any)
	AttributeNames() []string

	Geometry() Geometry
	RestoreGeometry(g Geometry)

	// Owner is the id of the drawing or composite holding the figure, or ""
	// when it is detached.
	Owner() string
	SetOwner(id string)

	WillChange()
	Changed()
	AddListener(l Listener)
	RemoveListener(l Listener)
	// NotifyRemoved tells listeners the figure left its container.
	NotifyRemoved()
}

// Composite figures hold ordered children.
type Composite interface {
	Figure
	Children() []Figure
	ChildCount() int
	IndexOf(f Figure) int
	Add(f Figure)
	AddAt(i int, f Figure)
	Remove(f Figure) int
}

// Layoutable composites arrange their children with a layouter.
type Layoutable interface {
	Composite
	Layout()
}

// Connectable figures accept connection endpoints.
type Connectable interface {
	Figure
	// FindConnector returns the connector a connection ending at p binds to.
	FindConnector(p geom.Point) Connector
	// Connectors lists the connectors shown as affordances while connecting.
	Connectors() []Connector
	// ChopPoint is where a line from the figure centre towards from leaves
	// the figure outline.
	ChopPoint(from geom.Point) geom.Point
}

// ConnectionFigure joins two connectors with a line.
type ConnectionFigure interface {
	Figure
	StartConnector() Connector
	EndConnector() Connector
	SetStartConnector(c Connector)
	SetEndConnector(c Connector)
	CanConnect(start, end Connector) bool
	UpdateConnection()
	StartPoint() geom.Point
	EndPoint() geom.Point
	SetStartPoint(p geom.Point)
	SetEndPoint(p geom.Point)
	Liner() Liner
	SetLiner(l Liner)
}

// NodeEditable figures expose bezier nodes to node handles.
type NodeEditable interface {
	Figure
	NodeCount() int
	Node(i int) geom.BezierNode
	SetNode(i int, n geom.BezierNode)
	InsertNode(i int, n geom.BezierNode)
	RemoveNode(i int)
	IsClosed() bool
}

// TextHolder figures carry editable text.
type TextHolder interface {
	Figure
	Text() string
	SetText(s string)
	IsEditable() bool
}

// Geometry is a restorable snapshot of a figure's shape.
type Geometry struct {
	Bounds    geom.Rect        `json:"bounds"`
	Path      *geom.BezierPath `json:"path,omitempty"`
	Transform *geom.Matrix2D   `json:"transform,omitempty"`
	Children  []Geometry       `json:"children,omitempty"`
}

// Event describes a figure notification.
type Event struct {
	Source      Figure
	Invalidated geom.Rect
	Attribute   string
	Old, New    any
}

// Listener observes figure changes.
type Listener interface {
	FigureChanged(e Event)
	AttributeChanged(e Event)
	FigureRemoved(e Event)
}

// Base carries the identity, attributes, owner and listener state shared by
// all figures. Concrete figures embed it and call init with themselves.
type Base struct {
	self      Figure
	id        string
	owner     string
	attrs     map[string]any
	listeners []Listener

	changeDepth int
	changeArea  geom.Rect
}

func (b *Base) init(self Figure) {
	b.self = self
	b.id = typeid.NewFigureID()
	b.attrs = make(map[string]any)
}

// cloneFor copies attributes into a fresh base for the clone self.
func (b *Base) cloneFor(self Figure) Base {
	c := Base{self: self, id: typeid.NewFigureID(), attrs: make(map[string]any, len(b.attrs))}
	for k, v := range b.attrs {
		c.attrs[k] = v
	}
	return c
}

func (b *Base) ID() string         { return b.id }
func (b *Base) SetID(id string)    { b.id = id }
func (b *Base) Owner() string      { return b.owner }
func (b *Base) SetOwner(id string) { b.owner = id }

func (b *Base) Attribute(name string) (any, bool) {
	v, ok := b.attrs[name]
	return v, ok
}

func (b *Base) SetAttribute(name string, v any) {
	old, had := b.attrs[name]
	if had && sameValue(old, v) {
		return
	}
	b.self.WillChange()
	if v == nil {
		delete(b.attrs, name)
	} else {
		b.attrs[name] = v
	}
	b.fire(func(l Listener) {
		l.AttributeChanged(Event{Source: b.self, Attribute: name, Old: old, New: v})
	})
	b.self.Changed()
}

func (b *Base) AttributeNames() []string {
	names := make([]string, 0, len(b.attrs))
	for k := range b.attrs {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// WillChange opens a change bracket. Brackets nest; only the outermost
// Changed notifies listeners.
func (b *Base) WillChange() {
	if b.changeDepth == 0 {
		b.changeArea = b.self.DrawingArea()
	}
	b.changeDepth++
}

func (b *Base) Changed() {
	if b.changeDepth > 0 {
		b.changeDepth--
	}
	if b.changeDepth > 0 {
		return
	}
	area := b.changeArea.Union(b.self.DrawingArea())
	b.changeArea = geom.Rect{}
	b.fire(func(l Listener) {
		l.FigureChanged(Event{Source: b.self, Invalidated: area})
	})
}

// changing reports whether a change bracket is open.
func (b *Base) changing() bool { return b.changeDepth > 0 }

func (b *Base) AddListener(l Listener) {
	for _, x := range b.listeners {
		if x == l {
			return
		}
	}
	b.listeners = append(b.listeners, l)
}

func (b *Base) RemoveListener(l Listener) {
	for i, x := range b.listeners {
		if x == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

func (b *Base) NotifyRemoved() {
	b.fire(func(l Listener) {
		l.FigureRemoved(Event{Source: b.self, Invalidated: b.self.DrawingArea()})
	})
}

// fire dispatches over a copy so listeners may unregister themselves.
func (b *Base) fire(fn func(Listener)) {
	if len(b.listeners) == 0 {
		return
	}
	ls := append([]Listener(nil), b.listeners...)
	for _, l := range ls {
		fn(l)
	}
}

// strokeGrowth is how far the stroke and hit slop extend past the outline.
func strokeGrowth(f Figure) float64 {
	return StrokeWidth.Get(f)/2 + 1
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}
