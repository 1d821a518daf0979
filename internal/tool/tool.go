// Package tool implements the tools and trackers that turn pointer and key
// events into figure edits.
package tool

import (
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

var bandPaint = figure.Paint{Fill: "#2f80ed", Stroke: "#2f80ed", StrokeWidth: 1, Opacity: 0.15}

// base provides no-op event methods for tools to embed.
type base struct {
	name string
}

func (b *base) Name() string                                 { return b.name }
func (b *base) Activate(*editor.View)                        {}
func (b *base) Deactivate(*editor.View)                      {}
func (b *base) PointerDown(*editor.View, input.PointerEvent) {}
func (b *base) PointerMove(*editor.View, input.PointerEvent) {}
func (b *base) PointerDrag(*editor.View, input.PointerEvent) {}
func (b *base) PointerUp(*editor.View, input.PointerEvent)   {}
func (b *base) KeyDown(*editor.View, input.KeyEvent)         {}
func (b *base) DrawOverlay(*editor.View, figure.Surface)     {}

// Tracker handles one pointer gesture on behalf of a selection tool.
type Tracker interface {
	Start(v *editor.View, e input.PointerEvent)
	Drag(v *editor.View, e input.PointerEvent)
	End(v *editor.View, e input.PointerEvent)
	// Cancel restores the state from before Start.
	Cancel(v *editor.View)
	DrawOverlay(v *editor.View, s figure.Surface)
}

func record(v *editor.View, a undo.Activity) {
	if a == nil || v.Editor() == nil {
		return
	}
	v.Editor().Record(a)
}

func settings(v *editor.View) editor.Settings {
	if v.Editor() == nil {
		return editor.DefaultSettings()
	}
	return v.Editor().Settings()
}

func newFigure(v *editor.View, t figure.Type) (figure.Figure, error) {
	if v.Editor() == nil {
		return figure.DefaultRegistry().New(t)
	}
	return v.Editor().Registry().New(t)
}

func applyAttributes(f figure.Figure, attrs map[string]any) {
	for k, val := range attrs {
		f.SetAttribute(k, val)
	}
}

// selectOnly replaces the selection with f.
func selectOnly(v *editor.View, f figure.Figure) {
	v.ClearSelection()
	v.Select(f)
}

func toolDone(v *editor.View) {
	if v.Editor() != nil {
		v.Editor().ToolDone()
	}
}

// near reports whether a and b are within the pixel distance px at the
// view's scale.
func near(v *editor.View, a, b geom.Point, px float64) bool {
	return a.Dist(b) <= px/v.Scale()
}
