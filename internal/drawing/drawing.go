// Package drawing holds the ordered, spatially indexed figure collection a
// view displays and tools edit.
package drawing

import (
	"errors"
	"fmt"

	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/typeid"
)

var (
	ErrDuplicate = errors.New("figure already has an owner")
	ErrNotFound  = errors.New("figure not found")
)

// Event describes a change of the drawing.
type Event struct {
	Drawing     *Drawing
	Figure      figure.Figure
	Index       int
	Invalidated geom.Rect
}

// Listener observes structural changes and repaint requests.
type Listener interface {
	FigureAdded(e Event)
	FigureRemoved(e Event)
	AreaInvalidated(e Event)
}

// Drawing is an ordered list of figures, back to front.
type Drawing struct {
	id        string
	figures   []figure.Figure
	index     *spatialIndex
	listeners []Listener
}

func New() *Drawing {
	return NewWithID(typeid.NewDrawingID())
}

func NewWithID(id string) *Drawing {
	return &Drawing{id: id, index: newSpatialIndex()}
}

func (d *Drawing) ID() string { return d.id }
func (d *Drawing) Len() int   { return len(d.figures) }

// Figures returns the figures in z-order, back to front.
func (d *Drawing) Figures() []figure.Figure {
	return append([]figure.Figure(nil), d.figures...)
}

func (d *Drawing) IndexOf(f figure.Figure) int {
	for i, x := range d.figures {
		if x == f {
			return i
		}
	}
	return -1
}

func (d *Drawing) Contains(f figure.Figure) bool { return d.IndexOf(f) >= 0 }

// FigureByID finds a top-level figure by id.
func (d *Drawing) FigureByID(id string) (figure.Figure, bool) {
	for _, f := range d.figures {
		if f.ID() == id {
			return f, true
		}
	}
	return nil, false
}

func (d *Drawing) Add(f figure.Figure) error {
	return d.AddAt(len(d.figures), f)
}

// AddAt inserts f at z-index i. A figure that already belongs to a drawing
// or composite is rejected.
func (d *Drawing) AddAt(i int, f figure.Figure) error {
	if f.Owner() != "" {
		return fmt.Errorf("%w: %s owned by %s", ErrDuplicate, f.ID(), f.Owner())
	}
	if i < 0 || i > len(d.figures) {
		i = len(d.figures)
	}
	d.figures = append(d.figures, nil)
	copy(d.figures[i+1:], d.figures[i:])
	d.figures[i] = f
	f.SetOwner(d.id)
	f.AddListener(d)
	d.index.insert(f, f.DrawingArea())
	if a, ok := f.(figure.Attachable); ok {
		a.Attached()
	}

	d.fire(func(l Listener) { l.FigureAdded(Event{Drawing: d, Figure: f, Index: i}) })
	d.invalidate(f.DrawingArea())
	return nil
}

func (d *Drawing) AddAll(fs []figure.Figure) error {
	for _, f := range fs {
		if err := d.Add(f); err != nil {
			return err
		}
	}
	return nil
}

// Remove takes f out of the drawing and returns the z-index it had.
func (d *Drawing) Remove(f figure.Figure) (int, error) {
	return d.remove(f, true)
}

// Detach removes f without telling f's own listeners, so connections stay
// attached while f moves into a composite.
func (d *Drawing) Detach(f figure.Figure) (int, error) {
	return d.remove(f, false)
}

func (d *Drawing) remove(f figure.Figure, notify bool) (int, error) {
	i := d.IndexOf(f)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, f.ID())
	}
	area := f.DrawingArea()
	d.figures = append(d.figures[:i], d.figures[i+1:]...)
	d.index.remove(f)
	f.RemoveListener(d)
	f.SetOwner("")
	if notify {
		f.NotifyRemoved()
	}

	d.fire(func(l Listener) { l.FigureRemoved(Event{Drawing: d, Figure: f, Index: i}) })
	d.invalidate(area)
	return i, nil
}

// SetIndex moves f to z-index i.
func (d *Drawing) SetIndex(f figure.Figure, i int) error {
	cur := d.IndexOf(f)
	if cur < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, f.ID())
	}
	d.figures = append(d.figures[:cur], d.figures[cur+1:]...)
	if i < 0 || i > len(d.figures) {
		i = len(d.figures)
	}
	d.figures = append(d.figures, nil)
	copy(d.figures[i+1:], d.figures[i:])
	d.figures[i] = f
	d.invalidate(f.DrawingArea())
	return nil
}

func (d *Drawing) BringToFront(f figure.Figure) error { return d.SetIndex(f, len(d.figures)) }
func (d *Drawing) SendToBack(f figure.Figure) error   { return d.SetIndex(f, 0) }

// FindFigure returns the front-most figure containing p.
func (d *Drawing) FindFigure(p geom.Point, tolerance float64) figure.Figure {
	return d.FindFigureExcept(p, tolerance)
}

// FindFigureExcept returns the front-most figure containing p that is not
// one of exclude.
func (d *Drawing) FindFigureExcept(p geom.Point, tolerance float64, exclude ...figure.Figure) figure.Figure {
	hits := d.index.query(geom.Rect{X: p.X, Y: p.Y}.Grow(tolerance, tolerance))
	for i := len(d.figures) - 1; i >= 0; i-- {
		f := d.figures[i]
		if _, ok := hits[f]; !ok || excluded(f, exclude) {
			continue
		}
		if f.Contains(p, tolerance) {
			return f
		}
	}
	return nil
}

func excluded(f figure.Figure, exclude []figure.Figure) bool {
	for _, x := range exclude {
		if x == f {
			return true
		}
	}
	return false
}

// FindFiguresWithin returns the figures whose bounds lie inside r, in
// z-order.
func (d *Drawing) FindFiguresWithin(r geom.Rect) []figure.Figure {
	hits := d.index.query(r)
	var out []figure.Figure
	for _, f := range d.figures {
		if _, ok := hits[f]; ok && r.ContainsRect(f.Bounds()) {
			out = append(out, f)
		}
	}
	return out
}

// FindFiguresIntersecting returns the figures whose drawing area meets r,
// in z-order.
func (d *Drawing) FindFiguresIntersecting(r geom.Rect) []figure.Figure {
	hits := d.index.query(r)
	var out []figure.Figure
	for _, f := range d.figures {
		if _, ok := hits[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// FindConnectable returns the innermost connectable figure under p,
// skipping exclude and everything inside it.
func (d *Drawing) FindConnectable(p geom.Point, tolerance float64, exclude ...figure.Figure) figure.Connectable {
	hits := d.index.query(geom.Rect{X: p.X, Y: p.Y}.Grow(tolerance, tolerance))
	for i := len(d.figures) - 1; i >= 0; i-- {
		f := d.figures[i]
		if _, ok := hits[f]; !ok {
			continue
		}
		if c := findConnectableIn(f, p, tolerance, exclude); c != nil {
			return c
		}
	}
	return nil
}

func findConnectableIn(f figure.Figure, p geom.Point, tolerance float64, exclude []figure.Figure) figure.Connectable {
	if excluded(f, exclude) || !f.Contains(p, tolerance) {
		return nil
	}
	if comp, ok := f.(figure.Composite); ok {
		children := comp.Children()
		for i := len(children) - 1; i >= 0; i-- {
			if c := findConnectableIn(children[i], p, tolerance, exclude); c != nil {
				return c
			}
		}
	}
	if c, ok := f.(figure.Connectable); ok {
		return c
	}
	return nil
}

// Connections returns the connections attached to f or to any figure
// nested inside it.
func (d *Drawing) Connections(f figure.Figure) []figure.ConnectionFigure {
	targets := map[figure.Figure]bool{}
	collect(f, targets)
	var out []figure.ConnectionFigure
	for _, x := range d.figures {
		c, ok := x.(figure.ConnectionFigure)
		if !ok || x == f {
			continue
		}
		if attachedTo(c.StartConnector(), targets) || attachedTo(c.EndConnector(), targets) {
			out = append(out, c)
		}
	}
	return out
}

func collect(f figure.Figure, into map[figure.Figure]bool) {
	into[f] = true
	if comp, ok := f.(figure.Composite); ok {
		for _, ch := range comp.Children() {
			collect(ch, into)
		}
	}
}

func attachedTo(c figure.Connector, targets map[figure.Figure]bool) bool {
	return c != nil && targets[c.Owner()]
}

// Bounds is the union of all figure bounds.
func (d *Drawing) Bounds() geom.Rect {
	var r geom.Rect
	for _, f := range d.figures {
		r = r.Union(f.Bounds())
	}
	return r
}

// Draw paints the figures meeting clip, back to front. An empty clip paints
// everything.
func (d *Drawing) Draw(s figure.Surface, clip geom.Rect) {
	if clip == (geom.Rect{}) {
		for _, f := range d.figures {
			f.Draw(s)
		}
		return
	}
	for _, f := range d.FindFiguresIntersecting(clip) {
		f.Draw(s)
	}
}

func (d *Drawing) AddListener(l Listener) {
	d.listeners = append(d.listeners, l)
}

func (d *Drawing) RemoveListener(l Listener) {
	for i, x := range d.listeners {
		if x == l {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

// FigureChanged keeps the index current and forwards the repaint request.
func (d *Drawing) FigureChanged(e figure.Event) {
	if d.IndexOf(e.Source) < 0 {
		return
	}
	d.index.update(e.Source, e.Source.DrawingArea())
	d.invalidate(e.Invalidated)
}

func (d *Drawing) AttributeChanged(figure.Event) {}
func (d *Drawing) FigureRemoved(figure.Event)    {}

func (d *Drawing) invalidate(r geom.Rect) {
	d.fire(func(l Listener) { l.AreaInvalidated(Event{Drawing: d, Invalidated: r}) })
}

func (d *Drawing) fire(fn func(Listener)) {
	ls := append([]Listener(nil), d.listeners...)
	for _, l := range ls {
		fn(l)
	}
}
