package tool

import (
	"log/slog"
	"math"

	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/handle"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// SelectionTool selects, moves and reshapes figures. A pointer-down picks a
// tracker in priority order: a selection handle, then a figure, then the
// empty canvas.
type SelectionTool struct {
	base
	tracker Tracker
}

func NewSelectionTool() *SelectionTool {
	return &SelectionTool{base: base{name: "selection"}}
}

// Tracker returns the tracker of the gesture in progress, if any.
func (t *SelectionTool) Tracker() Tracker { return t.tracker }

func (t *SelectionTool) PointerDown(v *editor.View, e input.PointerEvent) {
	if t.tracker != nil {
		return
	}
	t.tracker = t.pick(v, e)
	t.tracker.Start(v, e)
}

func (t *SelectionTool) pick(v *editor.View, e input.PointerEvent) Tracker {
	if h := v.FindHandle(e.Pos); h != nil {
		return newHandleTracker(h, v.Handles())
	}
	if f := v.FindFigure(e.Pos); f != nil {
		return newDragTracker(f)
	}
	return &selectAreaTracker{}
}

func (t *SelectionTool) PointerDrag(v *editor.View, e input.PointerEvent) {
	if t.tracker != nil {
		t.tracker.Drag(v, e)
	}
}

func (t *SelectionTool) PointerUp(v *editor.View, e input.PointerEvent) {
	if t.tracker == nil {
		return
	}
	tr := t.tracker
	t.tracker = nil
	tr.End(v, e)
}

// PointerMove updates the hover figure. Hover feedback is suppressed over
// selection handles.
func (t *SelectionTool) PointerMove(v *editor.View, e input.PointerEvent) {
	if v.FindHandle(e.Pos) != nil {
		v.SetHover(nil)
		return
	}
	v.SetHover(v.FindFigure(e.Pos))
}

func (t *SelectionTool) KeyDown(v *editor.View, e input.KeyEvent) {
	if e.Key == input.KeyEscape {
		t.cancel(v)
	}
}

func (t *SelectionTool) Deactivate(v *editor.View) {
	t.cancel(v)
	v.SetHover(nil)
}

func (t *SelectionTool) cancel(v *editor.View) {
	if t.tracker == nil {
		return
	}
	t.tracker.Cancel(v)
	t.tracker = nil
}

func (t *SelectionTool) DrawOverlay(v *editor.View, s figure.Surface) {
	if t.tracker != nil {
		t.tracker.DrawOverlay(v, s)
	}
}

// handleTracker drives the handle under the pointer together with every
// selected handle that can follow it.
type handleTracker struct {
	mc *handle.Multicaster
}

func newHandleTracker(h handle.Handle, all []handle.Handle) *handleTracker {
	return &handleTracker{mc: handle.NewMulticaster(h, all)}
}

func (t *handleTracker) Start(_ *editor.View, e input.PointerEvent) {
	t.mc.Start(e.Pos, e.Modifiers)
}

func (t *handleTracker) Drag(_ *editor.View, e input.PointerEvent) {
	t.mc.Step(e.Pos, e.Modifiers)
}

func (t *handleTracker) End(v *editor.View, e input.PointerEvent) {
	record(v, t.mc.End(e.Pos, e.Modifiers))
	v.RefreshHandles()
}

func (t *handleTracker) Cancel(v *editor.View) {
	t.mc.Cancel()
	v.RefreshHandles()
}

func (t *handleTracker) DrawOverlay(*editor.View, figure.Surface) {}

// dragTracker moves the selection. The moved figures are frozen at Start.
type dragTracker struct {
	hit     figure.Figure
	figs    []figure.Figure
	before  []figure.Geometry
	anchor  geom.Point
	last    geom.Point
	wasSel  bool
	toggled bool
	aborted bool
}

func newDragTracker(hit figure.Figure) *dragTracker {
	return &dragTracker{hit: hit}
}

func (t *dragTracker) Start(v *editor.View, e input.PointerEvent) {
	t.wasSel = v.IsSelected(t.hit)
	switch {
	case e.Modifiers.Has(input.Shift):
		v.ToggleSelection(t.hit)
		t.toggled = true
	case !t.wasSel:
		selectOnly(v, t.hit)
	}
	t.anchor, t.last = e.Pos, e.Pos
	if v.IsSelected(t.hit) {
		t.figs = v.Selection()
		t.before = undo.SnapshotGeometry(t.figs)
	}
}

func (t *dragTracker) Drag(v *editor.View, e input.PointerEvent) {
	if len(t.figs) == 0 || t.aborted {
		return
	}
	for _, f := range t.figs {
		if f.Owner() == "" {
			slog.Debug("drag aborted, figure removed", "figure", f.ID())
			t.Cancel(v)
			t.aborted = true
			return
		}
	}
	target := e.Pos
	if e.Modifiers.Has(input.Shift) {
		d := target.Sub(t.anchor)
		if math.Abs(d.X) >= math.Abs(d.Y) {
			target.Y = t.anchor.Y
		} else {
			target.X = t.anchor.X
		}
	}
	d := target.Sub(t.last)
	if d == (geom.Point{}) {
		return
	}
	m := geom.Translate(d.X, d.Y)
	for _, f := range t.figs {
		f.Transform(m)
	}
	t.last = target
}

func (t *dragTracker) End(v *editor.View, e input.PointerEvent) {
	if t.aborted {
		return
	}
	moved := t.last != t.anchor
	if moved {
		for _, f := range t.figs {
			if f.Owner() == "" {
				t.Cancel(v)
				return
			}
		}
		record(v, undo.NewGeometryEdit("Move", t.figs, t.before))
		v.RefreshHandles()
		return
	}
	// A plain click on a figure of a larger selection narrows it.
	if t.wasSel && !t.toggled && v.SelectionCount() > 1 {
		selectOnly(v, t.hit)
	}
}

func (t *dragTracker) Cancel(v *editor.View) {
	for i, f := range t.figs {
		f.RestoreGeometry(t.before[i])
	}
	t.last = t.anchor
	v.RefreshHandles()
}

func (t *dragTracker) DrawOverlay(*editor.View, figure.Surface) {}

// selectAreaTracker selects the figures inside a rubber band.
type selectAreaTracker struct {
	anchor geom.Point
	band   geom.Rect
	active bool
}

func (t *selectAreaTracker) Start(v *editor.View, e input.PointerEvent) {
	if !e.Modifiers.Has(input.Shift) {
		v.ClearSelection()
	}
	t.anchor = e.Pos
	t.band = geom.Rect{X: e.Pos.X, Y: e.Pos.Y}
	t.active = true
}

func (t *selectAreaTracker) Drag(v *editor.View, e input.PointerEvent) {
	v.Invalidate(t.band.Grow(1, 1))
	t.band = geom.RectFromPoints(t.anchor, e.Pos)
	v.Invalidate(t.band.Grow(1, 1))
}

func (t *selectAreaTracker) End(v *editor.View, e input.PointerEvent) {
	t.Drag(v, e)
	t.active = false
	v.Invalidate(t.band.Grow(1, 1))
	if t.band.IsEmpty() {
		return
	}
	figs := v.Drawing().FindFiguresWithin(t.band)
	if e.Modifiers.Has(input.Shift) {
		for _, f := range figs {
			v.ToggleSelection(f)
		}
		return
	}
	v.SelectAll(figs)
}

func (t *selectAreaTracker) Cancel(v *editor.View) {
	t.active = false
	v.Invalidate(t.band.Grow(1, 1))
}

func (t *selectAreaTracker) DrawOverlay(_ *editor.View, s figure.Surface) {
	if !t.active || t.band.IsEmpty() {
		return
	}
	s.DrawPath(geom.RectPath(t.band), bandPaint)
}
