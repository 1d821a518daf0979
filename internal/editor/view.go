package editor

import (
	"slices"

	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/handle"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/typeid"
)

var hoverOutline = figure.Paint{Fill: figure.NoColor, Stroke: "#9bbcf0", StrokeWidth: 1, Opacity: 1}

// View presents one drawing, owns its selection and the handles built for
// it, and accumulates damage for the host to repaint.
type View struct {
	id      string
	editor  *Editor
	drawing *drawing.Drawing
	scale   float64

	selection []figure.Figure
	handles   []handle.Handle
	dirty     bool

	hover        figure.Figure
	hoverHandles []handle.Handle
	connectors   figure.Connectable

	damage geom.Rect

	onSelection []func(*View)
}

func NewView(d *drawing.Drawing) *View {
	v := &View{id: typeid.NewViewID(), drawing: d, scale: 1}
	d.AddListener(v)
	return v
}

func (v *View) ID() string                { return v.id }
func (v *View) Editor() *Editor           { return v.editor }
func (v *View) Drawing() *drawing.Drawing { return v.drawing }
func (v *View) Scale() float64            { return v.scale }

// SetScale sets the zoom factor. Handle sizes and tolerances stay constant
// on screen.
func (v *View) SetScale(s float64) {
	if s <= 0 {
		return
	}
	v.scale = s
	v.dirty = true
	v.Invalidate(geom.Rect{})
}

func (v *View) settings() Settings {
	if v.editor == nil {
		return DefaultSettings()
	}
	return v.editor.settings
}

// HandleSize is the handle side in drawing units.
func (v *View) HandleSize() float64 { return v.settings().HandleSize / v.scale }

// MinSize is the smallest figure side in drawing units.
func (v *View) MinSize() float64 { return v.settings().MinSize }

// Tolerance is the hit slop in drawing units.
func (v *View) Tolerance() float64 { return v.settings().HitTolerance / v.scale }

func (v *View) detach() {
	v.drawing.RemoveListener(v)
	v.editor = nil
}

// Selection returns the selected figures in selection order.
func (v *View) Selection() []figure.Figure {
	return append([]figure.Figure(nil), v.selection...)
}

func (v *View) SelectionCount() int { return len(v.selection) }

func (v *View) IsSelected(f figure.Figure) bool {
	return slices.Contains(v.selection, f)
}

// Select adds f to the selection. Figures outside the drawing are ignored.
func (v *View) Select(f figure.Figure) {
	if f == nil || v.IsSelected(f) || !v.drawing.Contains(f) {
		return
	}
	v.selection = append(v.selection, f)
	v.selectionChanged()
}

func (v *View) SelectAll(fs []figure.Figure) {
	changed := false
	for _, f := range fs {
		if f != nil && !v.IsSelected(f) && v.drawing.Contains(f) {
			v.selection = append(v.selection, f)
			changed = true
		}
	}
	if changed {
		v.selectionChanged()
	}
}

func (v *View) Deselect(f figure.Figure) {
	i := slices.Index(v.selection, f)
	if i < 0 {
		return
	}
	v.selection = slices.Delete(v.selection, i, i+1)
	v.selectionChanged()
}

// ToggleSelection flips the selection state of f.
func (v *View) ToggleSelection(f figure.Figure) {
	if v.IsSelected(f) {
		v.Deselect(f)
		return
	}
	v.Select(f)
}

func (v *View) ClearSelection() {
	if len(v.selection) == 0 {
		return
	}
	v.selection = nil
	v.selectionChanged()
}

// OnSelectionChanged registers fn to run after every selection change.
func (v *View) OnSelectionChanged(fn func(*View)) {
	v.onSelection = append(v.onSelection, fn)
}

func (v *View) selectionChanged() {
	v.RefreshHandles()
	for _, fn := range v.onSelection {
		fn(v)
	}
}

// SelectionBounds is the union of the selected figures' bounds.
func (v *View) SelectionBounds() geom.Rect {
	var r geom.Rect
	for _, f := range v.selection {
		r = r.Union(f.Bounds())
	}
	return r
}

// Handles returns the handles of the selected figures, rebuilding them when
// the selection or a selected figure changed.
func (v *View) Handles() []handle.Handle {
	if v.dirty {
		v.handles = v.handles[:0]
		for _, f := range v.selection {
			v.handles = append(v.handles, handle.For(f, v)...)
		}
		v.dirty = false
	}
	return v.handles
}

// RefreshHandles forces the handles to be rebuilt on next use.
func (v *View) RefreshHandles() {
	v.invalidateHandles()
	v.dirty = true
}

func (v *View) invalidateHandles() {
	if v.dirty {
		return
	}
	for _, h := range v.handles {
		v.Invalidate(h.Bounds())
	}
}

// FindHandle returns the topmost handle of the selection under p.
func (v *View) FindHandle(p geom.Point) handle.Handle {
	hs := v.Handles()
	for i := len(hs) - 1; i >= 0; i-- {
		if hs[i].Contains(p) {
			return hs[i]
		}
	}
	return nil
}

// FindFigure returns the figure under p, preferring selected figures over
// unselected ones drawn above them.
func (v *View) FindFigure(p geom.Point) figure.Figure {
	tol := v.Tolerance()
	for i := len(v.selection) - 1; i >= 0; i-- {
		if v.selection[i].Contains(p, tol) {
			return v.selection[i]
		}
	}
	return v.drawing.FindFigure(p, tol)
}

// SetHover marks f as the figure under the pointer. Its handles are drawn
// in the hover style while it is not selected.
func (v *View) SetHover(f figure.Figure) {
	if f == v.hover {
		return
	}
	if v.hover != nil {
		v.Invalidate(v.hover.DrawingArea().Grow(v.HandleSize(), v.HandleSize()))
	}
	v.hover = f
	v.hoverHandles = nil
	if f != nil {
		if !v.IsSelected(f) {
			v.hoverHandles = handle.For(f, v)
		}
		v.Invalidate(f.DrawingArea().Grow(v.HandleSize(), v.HandleSize()))
	}
}

func (v *View) Hover() figure.Figure { return v.hover }

func (v *View) ShowConnectors(f figure.Connectable) {
	if f == v.connectors {
		return
	}
	v.HideConnectors()
	v.connectors = f
	if f != nil {
		v.Invalidate(f.DrawingArea().Grow(v.HandleSize(), v.HandleSize()))
	}
}

func (v *View) HideConnectors() {
	if v.connectors == nil {
		return
	}
	v.Invalidate(v.connectors.DrawingArea().Grow(v.HandleSize(), v.HandleSize()))
	v.connectors = nil
}

// ShownConnectors is the figure whose connectors are currently shown.
func (v *View) ShownConnectors() figure.Connectable { return v.connectors }

// Invalidate adds r to the damage. An empty rect damages the whole view.
func (v *View) Invalidate(r geom.Rect) {
	if r == (geom.Rect{}) {
		r = v.drawing.Bounds()
	}
	v.damage = v.damage.Union(r)
}

// TakeDamage returns and clears the accumulated damage.
func (v *View) TakeDamage() geom.Rect {
	r := v.damage
	v.damage = geom.Rect{}
	return r
}

// Draw paints the figures meeting clip, then the decorations.
func (v *View) Draw(s figure.Surface, clip geom.Rect) {
	v.drawing.Draw(s, clip)
	v.DrawDecorations(s)
}

// DrawDecorations paints hover feedback, selection handles, connector
// affordances and the tool overlay on top of the figures.
func (v *View) DrawDecorations(s figure.Surface) {
	if v.hover != nil && !v.IsSelected(v.hover) {
		s.DrawPath(geom.RectPath(v.hover.Bounds()), hoverOutline)
		for _, h := range v.hoverHandles {
			h.Draw(s, true)
		}
	}
	for _, h := range v.Handles() {
		h.Draw(s, false)
	}
	if v.connectors != nil {
		for _, c := range v.connectors.Connectors() {
			c.Draw(s)
		}
	}
	if v.editor != nil && v.editor.tool != nil && v.editor.active == v {
		v.editor.tool.DrawOverlay(v, s)
	}
}

// Pointer forwards ev to the editor.
func (v *View) Pointer(ev input.PointerEvent) error {
	if v.editor == nil {
		return nil
	}
	return v.editor.Pointer(v, ev)
}

func (v *View) Key(ev input.KeyEvent) error {
	if v.editor == nil {
		return nil
	}
	return v.editor.Key(v, ev)
}

// FigureAdded implements drawing.Listener.
func (v *View) FigureAdded(e drawing.Event) {
	v.Invalidate(e.Figure.DrawingArea())
}

// FigureRemoved drops the figure from the selection and hover state.
func (v *View) FigureRemoved(e drawing.Event) {
	v.Invalidate(e.Figure.DrawingArea())
	if e.Figure == v.hover {
		v.hover = nil
		v.hoverHandles = nil
	}
	if e.Figure == v.connectors {
		v.connectors = nil
	}
	v.Deselect(e.Figure)
}

func (v *View) AreaInvalidated(e drawing.Event) {
	v.Invalidate(e.Invalidated)
	if len(v.selection) > 0 {
		v.RefreshHandles()
	}
}
