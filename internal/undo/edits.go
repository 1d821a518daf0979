package undo

import (
	"fmt"
	"slices"

	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/figure"
)

func attached(f figure.Figure) error {
	if f.Owner() == "" {
		return fmt.Errorf("%w: %s", ErrOrphaned, f.ID())
	}
	return nil
}

// GeometryEdit swaps figures between two geometry snapshots.
type GeometryEdit struct {
	name          string
	figs          []figure.Figure
	before, after []figure.Geometry
}

// SnapshotGeometry captures the current geometry of figs.
func SnapshotGeometry(figs []figure.Figure) []figure.Geometry {
	out := make([]figure.Geometry, len(figs))
	for i, f := range figs {
		out[i] = f.Geometry()
	}
	return out
}

// NewGeometryEdit records the change of figs from before to their current
// geometry.
func NewGeometryEdit(name string, figs []figure.Figure, before []figure.Geometry) *GeometryEdit {
	return &GeometryEdit{
		name:   name,
		figs:   append([]figure.Figure(nil), figs...),
		before: before,
		after:  SnapshotGeometry(figs),
	}
}

func (e *GeometryEdit) Name() string { return e.name }
func (e *GeometryEdit) Undo() error  { return e.apply(e.before) }
func (e *GeometryEdit) Redo() error  { return e.apply(e.after) }

func (e *GeometryEdit) apply(gs []figure.Geometry) error {
	for _, f := range e.figs {
		if err := attached(f); err != nil {
			return err
		}
	}
	for i, f := range e.figs {
		f.RestoreGeometry(gs[i])
	}
	return nil
}

// AttributeEdit reverts one attribute of one figure.
type AttributeEdit struct {
	fig            figure.Figure
	attr           string
	oldVal, newVal any
}

// SetAttribute sets the attribute and returns the edit that reverts it.
func SetAttribute(f figure.Figure, name string, v any) *AttributeEdit {
	old, _ := f.Attribute(name)
	f.SetAttribute(name, v)
	return &AttributeEdit{fig: f, attr: name, oldVal: old, newVal: v}
}

// NewAttributeEdit records a change already applied to f.
func NewAttributeEdit(f figure.Figure, name string, oldVal, newVal any) *AttributeEdit {
	return &AttributeEdit{fig: f, attr: name, oldVal: oldVal, newVal: newVal}
}

func (e *AttributeEdit) Name() string { return "Set " + e.attr }

func (e *AttributeEdit) Undo() error {
	if err := attached(e.fig); err != nil {
		return err
	}
	e.fig.SetAttribute(e.attr, e.oldVal)
	return nil
}

func (e *AttributeEdit) Redo() error {
	if err := attached(e.fig); err != nil {
		return err
	}
	e.fig.SetAttribute(e.attr, e.newVal)
	return nil
}

type placed struct {
	fig   figure.Figure
	index int
}

// AddEdit reverts the addition of figures to a drawing.
type AddEdit struct {
	name    string
	drawing *drawing.Drawing
	figs    []placed
}

// NewAddEdit records figs, already added to d, at their current z-index.
func NewAddEdit(name string, d *drawing.Drawing, figs ...figure.Figure) *AddEdit {
	e := &AddEdit{name: name, drawing: d}
	for _, f := range figs {
		e.figs = append(e.figs, placed{fig: f, index: d.IndexOf(f)})
	}
	return e
}

func (e *AddEdit) Name() string { return e.name }

func (e *AddEdit) Undo() error {
	for i := len(e.figs) - 1; i >= 0; i-- {
		if _, err := e.drawing.Remove(e.figs[i].fig); err != nil {
			return err
		}
	}
	return nil
}

func (e *AddEdit) Redo() error {
	for _, p := range e.figs {
		if err := e.drawing.AddAt(p.index, p.fig); err != nil {
			return err
		}
	}
	return nil
}

type connectorState struct {
	conn       figure.ConnectionFigure
	start, end figure.Connector
	geometry   figure.Geometry
}

// RemoveEdit reverts the removal of figures, restoring their z-order and
// the connections that were attached to them.
type RemoveEdit struct {
	name    string
	drawing *drawing.Drawing
	figs    []placed
	conns   []connectorState
}

// RemoveFigures removes figs from d and returns the edit that restores
// them.
func RemoveFigures(name string, d *drawing.Drawing, figs []figure.Figure) (*RemoveEdit, error) {
	e := &RemoveEdit{name: name, drawing: d}
	for _, f := range figs {
		if i := d.IndexOf(f); i >= 0 {
			e.figs = append(e.figs, placed{fig: f, index: i})
		}
	}
	slices.SortFunc(e.figs, func(a, b placed) int { return a.index - b.index })
	seen := map[figure.ConnectionFigure]bool{}
	for _, p := range e.figs {
		for _, c := range d.Connections(p.fig) {
			if seen[c] {
				continue
			}
			seen[c] = true
			e.conns = append(e.conns, connectorState{conn: c, start: c.StartConnector(), end: c.EndConnector(), geometry: c.Geometry()})
		}
	}
	return e, e.Redo()
}

func (e *RemoveEdit) Name() string { return e.name }

func (e *RemoveEdit) Redo() error {
	for i := len(e.figs) - 1; i >= 0; i-- {
		if _, err := e.drawing.Remove(e.figs[i].fig); err != nil {
			return err
		}
	}
	return nil
}

func (e *RemoveEdit) Undo() error {
	for _, p := range e.figs {
		if err := e.drawing.AddAt(p.index, p.fig); err != nil {
			return err
		}
	}
	for _, s := range e.conns {
		s.conn.SetStartConnector(s.start)
		s.conn.SetEndConnector(s.end)
		s.conn.RestoreGeometry(s.geometry)
		s.conn.UpdateConnection()
	}
	return nil
}

// ZOrderEdit reverts a move within the stacking order.
type ZOrderEdit struct {
	name     string
	drawing  *drawing.Drawing
	fig      figure.Figure
	from, to int
}

// MoveInZOrder moves f to index to and returns the edit that reverts it.
func MoveInZOrder(name string, d *drawing.Drawing, f figure.Figure, to int) (*ZOrderEdit, error) {
	e := &ZOrderEdit{name: name, drawing: d, fig: f, from: d.IndexOf(f), to: to}
	if err := d.SetIndex(f, to); err != nil {
		return nil, err
	}
	e.to = d.IndexOf(f)
	return e, nil
}

func (e *ZOrderEdit) Name() string { return e.name }
func (e *ZOrderEdit) Undo() error  { return e.drawing.SetIndex(e.fig, e.from) }
func (e *ZOrderEdit) Redo() error  { return e.drawing.SetIndex(e.fig, e.to) }

// ConnectEdit reverts a change of a connection's connectors and route.
type ConnectEdit struct {
	name          string
	before, after connectorState
}

// CaptureConnection snapshots the connectors and route of c.
func CaptureConnection(c figure.ConnectionFigure) func(name string) *ConnectEdit {
	before := connectorState{conn: c, start: c.StartConnector(), end: c.EndConnector(), geometry: c.Geometry()}
	return func(name string) *ConnectEdit {
		after := connectorState{conn: c, start: c.StartConnector(), end: c.EndConnector(), geometry: c.Geometry()}
		return &ConnectEdit{name: name, before: before, after: after}
	}
}

func (e *ConnectEdit) Name() string { return e.name }
func (e *ConnectEdit) Undo() error  { return e.apply(e.before) }
func (e *ConnectEdit) Redo() error  { return e.apply(e.after) }

func (e *ConnectEdit) apply(s connectorState) error {
	if err := attached(s.conn); err != nil {
		return err
	}
	s.conn.WillChange()
	s.conn.SetStartConnector(s.start)
	s.conn.SetEndConnector(s.end)
	s.conn.RestoreGeometry(s.geometry)
	s.conn.UpdateConnection()
	s.conn.Changed()
	return nil
}
