package tool

import (
	"log/slog"
	"math"

	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// endpointFigure is a figure sized by its two end points rather than a box.
type endpointFigure interface {
	figure.Figure
	SetStartPoint(p geom.Point)
	SetEndPoint(p geom.Point)
}

// CreationTool clones a registered prototype and sizes it with a drag.
// The figure is in the drawing from pointer-down on so it renders live.
type CreationTool struct {
	base
	Type       figure.Type
	Attributes map[string]any
	// ToolDoneAfterCreation returns to the default tool after one figure.
	ToolDoneAfterCreation bool

	created figure.Figure
	anchor  geom.Point
}

func NewCreationTool(name string, t figure.Type, attrs map[string]any) *CreationTool {
	return &CreationTool{base: base{name: name}, Type: t, Attributes: attrs}
}

// Creating reports whether a figure is being sized.
func (t *CreationTool) Creating() bool { return t.created != nil }

func (t *CreationTool) PointerDown(v *editor.View, e input.PointerEvent) {
	if t.created != nil {
		return
	}
	f, err := newFigure(v, t.Type)
	if err != nil {
		slog.Warn("cannot create figure", "type", t.Type, "error", err)
		return
	}
	applyAttributes(f, t.Attributes)
	t.anchor = e.Pos
	t.resize(f, e.Pos)
	if err := v.Drawing().Add(f); err != nil {
		slog.Warn("cannot add figure", "type", t.Type, "error", err)
		return
	}
	t.created = f
}

func (t *CreationTool) resize(f figure.Figure, lead geom.Point) {
	if ep, ok := f.(endpointFigure); ok {
		f.WillChange()
		ep.SetStartPoint(t.anchor)
		ep.SetEndPoint(lead)
		f.Changed()
		return
	}
	f.SetBounds(t.anchor, lead)
}

func (t *CreationTool) PointerDrag(v *editor.View, e input.PointerEvent) {
	if t.created == nil {
		return
	}
	t.resize(t.created, e.Pos)
}

// PointerUp commits the figure. A drag shorter than the size threshold on
// both axes yields a figure of the default size instead. Otherwise each
// axis is raised to the minimum size on its own; lines are left as drawn.
func (t *CreationTool) PointerUp(v *editor.View, e input.PointerEvent) {
	f := t.created
	if f == nil {
		return
	}
	t.created = nil
	s := settings(v)
	lead := e.Pos
	d := lead.Sub(t.anchor)
	if math.Abs(d.X) < s.MinSizeThreshold && math.Abs(d.Y) < s.MinSizeThreshold {
		lead = t.anchor.Add(geom.Pt(s.DefaultWidth, s.DefaultHeight))
	} else if _, ok := f.(endpointFigure); !ok {
		lead = geom.Pt(atLeast(t.anchor.X, lead.X, s.MinSize), atLeast(t.anchor.Y, lead.Y, s.MinSize))
	}
	t.resize(f, lead)
	record(v, undo.NewAddEdit("Create "+string(t.Type), v.Drawing(), f))
	selectOnly(v, f)
	if t.ToolDoneAfterCreation {
		toolDone(v)
	}
}

func (t *CreationTool) KeyDown(v *editor.View, e input.KeyEvent) {
	if e.Key == input.KeyEscape {
		t.discard(v)
	}
}

func (t *CreationTool) Deactivate(v *editor.View) { t.discard(v) }

// discard removes the figure being sized without recording anything.
func (t *CreationTool) discard(v *editor.View) {
	if t.created == nil {
		return
	}
	if _, err := v.Drawing().Remove(t.created); err != nil {
		slog.Debug("discard created figure", "error", err)
	}
	t.created = nil
}

// atLeast moves lead away from anchor until they are size apart, keeping
// the drag direction.
func atLeast(anchor, lead, size float64) float64 {
	switch {
	case lead-anchor >= size || anchor-lead >= size:
		return lead
	case lead < anchor:
		return anchor - size
	default:
		return anchor + size
	}
}
