package tool

import (
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/handle"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// PopupFunc is called for popup-trigger events with the figure under the
// pointer, which may be nil.
type PopupFunc func(v *editor.View, at geom.Point, f figure.Figure)

// DelegationSelectionTool is a SelectionTool that intercepts double clicks
// and popup triggers before a tracker sees them. A double click goes to a
// clickable handle, starts text editing, or inserts a bezier node, in that
// order.
type DelegationSelectionTool struct {
	*SelectionTool
	// TextTool edits double-clicked text figures when set.
	TextTool *TextTool
	Popup    PopupFunc
}

func NewDelegationSelectionTool(text *TextTool, popup PopupFunc) *DelegationSelectionTool {
	return &DelegationSelectionTool{SelectionTool: NewSelectionTool(), TextTool: text, Popup: popup}
}

func (t *DelegationSelectionTool) PointerDown(v *editor.View, e input.PointerEvent) {
	switch {
	case e.PopupTrigger:
		if t.Popup != nil {
			t.Popup(v, e.Pos, v.FindFigure(e.Pos))
		}
	case e.ClickCount >= 2:
		t.doubleClick(v, e)
	default:
		t.SelectionTool.PointerDown(v, e)
	}
}

func (t *DelegationSelectionTool) doubleClick(v *editor.View, e input.PointerEvent) {
	if h, ok := v.FindHandle(e.Pos).(handle.Clicker); ok {
		record(v, h.DoubleClick(e.Pos))
		v.RefreshHandles()
		return
	}
	f := v.FindFigure(e.Pos)
	if f == nil {
		return
	}
	if th, ok := f.(figure.TextHolder); ok && th.IsEditable() && t.TextTool != nil && v.Editor() != nil {
		v.Editor().SetTool(t.TextTool)
		t.TextTool.Edit(v, th)
		return
	}
	if a := insertNode(v, f, e.Pos); a != nil {
		record(v, a)
		v.RefreshHandles()
	}
}

// pathHolder is implemented by figures backed by a bezier path.
type pathHolder interface {
	figure.NodeEditable
	Path() geom.BezierPath
}

// insertNode splits the segment of f under p with a new node. Routed
// connections are skipped since their liner owns the interior nodes.
func insertNode(v *editor.View, f figure.Figure, p geom.Point) undo.Activity {
	ph, ok := f.(pathHolder)
	if !ok {
		return nil
	}
	if c, ok := f.(figure.ConnectionFigure); ok && c.Liner() != nil {
		return nil
	}
	seg := ph.Path().FindSegment(p, v.Tolerance()+figure.StrokeWidth.Get(f)/2)
	if seg < 0 {
		return nil
	}
	figs := []figure.Figure{f}
	before := undo.SnapshotGeometry(figs)
	ph.InsertNode(seg+1, geom.NewNode(p))
	return undo.NewGeometryEdit("Insert node", figs, before)
}
