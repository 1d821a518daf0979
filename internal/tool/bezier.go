package tool

import (
	"log/slog"

	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// pathBuilder is a figure whose bezier path can be grown node by node.
type pathBuilder interface {
	figure.NodeEditable
	Path() geom.BezierPath
	SetPath(p geom.BezierPath)
	AddNode(n geom.BezierNode)
	SetClosed(closed bool)
}

// BezierTool builds a path from successive clicks. Dragging digitizes a
// freehand trail that is curve fitted on release. Clicking near the first
// node closes the path; a double click or switching tools finishes it.
type BezierTool struct {
	base
	Attributes            map[string]any
	ToolDoneAfterCreation bool

	fig   pathBuilder
	trail []geom.Point
	// first is the node index the current trail started at.
	first int
}

func NewBezierTool(name string, attrs map[string]any) *BezierTool {
	return &BezierTool{base: base{name: name}, Attributes: attrs}
}

// Pending returns the path under construction, if any.
func (t *BezierTool) Pending() figure.NodeEditable {
	if t.fig == nil {
		return nil
	}
	return t.fig
}

// Engaged reports whether a path is under construction.
func (t *BezierTool) Engaged() bool { return t.fig != nil }

func (t *BezierTool) PointerDown(v *editor.View, e input.PointerEvent) {
	if t.fig != nil && e.ClickCount >= 2 {
		t.finish(v, true)
		return
	}
	if t.fig == nil {
		f, err := newFigure(v, figure.TypeBezier)
		if err != nil {
			slog.Warn("cannot create path", "error", err)
			return
		}
		pb, ok := f.(pathBuilder)
		if !ok {
			return
		}
		applyAttributes(pb, t.Attributes)
		t.fig = pb
	}
	n := t.fig.NodeCount()
	s := settings(v)
	if n >= 3 && near(v, e.Pos, t.fig.Node(0).Point(), s.CloseTolerance) {
		t.fig.SetClosed(true)
		t.finish(v, true)
		return
	}
	if n > 0 && near(v, e.Pos, t.fig.Node(n-1).Point(), s.CloseTolerance) {
		t.trail = nil
		return
	}
	t.fig.AddNode(geom.NewNode(e.Pos))
	t.first = n
	t.trail = []geom.Point{e.Pos}
	v.Invalidate(t.fig.DrawingArea())
}

func (t *BezierTool) PointerDrag(v *editor.View, e input.PointerEvent) {
	if t.fig == nil || t.trail == nil {
		return
	}
	if e.Pos == t.trail[len(t.trail)-1] {
		return
	}
	t.trail = append(t.trail, e.Pos)
	t.fig.AddNode(geom.NewNode(e.Pos))
	v.Invalidate(t.fig.DrawingArea())
}

// PointerUp replaces a digitized trail with its curve fit.
func (t *BezierTool) PointerUp(v *editor.View, e input.PointerEvent) {
	if t.fig == nil || len(t.trail) < 3 {
		t.trail = nil
		return
	}
	fit := geom.FitBezierPath(t.trail, settings(v).FitError/v.Scale())
	p := t.fig.Path()
	p.Nodes = append(p.Nodes[:t.first], fit.Nodes...)
	v.Invalidate(t.fig.DrawingArea())
	t.fig.SetPath(p)
	v.Invalidate(t.fig.DrawingArea())
	t.trail = nil
}

func (t *BezierTool) KeyDown(v *editor.View, e input.KeyEvent) {
	switch e.Key {
	case input.KeyEscape:
		t.discard(v)
	case input.KeyEnter:
		t.finish(v, true)
	}
}

func (t *BezierTool) Deactivate(v *editor.View) { t.finish(v, false) }

// finish adds the path to the drawing. Paths with fewer than two nodes are
// dropped. done allows returning to the default tool.
func (t *BezierTool) finish(v *editor.View, done bool) {
	f := t.fig
	if f == nil {
		return
	}
	t.fig, t.trail = nil, nil
	v.Invalidate(f.DrawingArea())
	if f.NodeCount() < 2 {
		return
	}
	if err := v.Drawing().Add(f); err != nil {
		slog.Warn("cannot add path", "error", err)
		return
	}
	record(v, undo.NewAddEdit("Create path", v.Drawing(), f))
	selectOnly(v, f)
	if done && t.ToolDoneAfterCreation {
		toolDone(v)
	}
}

func (t *BezierTool) discard(v *editor.View) {
	if t.fig == nil {
		return
	}
	v.Invalidate(t.fig.DrawingArea())
	t.fig, t.trail = nil, nil
}

func (t *BezierTool) DrawOverlay(_ *editor.View, s figure.Surface) {
	if t.fig != nil {
		t.fig.Draw(s)
	}
}
