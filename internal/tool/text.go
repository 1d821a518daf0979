package tool

import (
	"log/slog"
	"unicode/utf8"

	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

var caretPaint = figure.Paint{Fill: figure.NoColor, Stroke: "#000000", StrokeWidth: 1, Opacity: 1}

// TextTool creates text figures and edits the text of existing ones from
// key events. Enter commits, Escape reverts.
type TextTool struct {
	base
	Attributes            map[string]any
	ToolDoneAfterCreation bool

	editing  figure.TextHolder
	original string
	created  bool
}

func NewTextTool(name string, attrs map[string]any) *TextTool {
	return &TextTool{base: base{name: name}, Attributes: attrs, ToolDoneAfterCreation: true}
}

// Editing returns the figure being edited, if any.
func (t *TextTool) Editing() figure.TextHolder { return t.editing }
func (t *TextTool) Engaged() bool              { return t.editing != nil }

// Edit starts editing th, committing any edit in progress.
func (t *TextTool) Edit(v *editor.View, th figure.TextHolder) {
	t.commit(v)
	t.editing, t.original, t.created = th, th.Text(), false
	selectOnly(v, th)
	v.Invalidate(th.DrawingArea())
}

func (t *TextTool) PointerDown(v *editor.View, e input.PointerEvent) {
	if t.editing != nil && t.editing.Contains(e.Pos, v.Tolerance()) {
		return
	}
	t.commit(v)
	if th, ok := v.FindFigure(e.Pos).(figure.TextHolder); ok && th.IsEditable() {
		t.Edit(v, th)
		return
	}
	f, err := newFigure(v, figure.TypeText)
	if err != nil {
		slog.Warn("cannot create text", "error", err)
		return
	}
	th, ok := f.(figure.TextHolder)
	if !ok {
		return
	}
	applyAttributes(th, t.Attributes)
	th.SetBounds(e.Pos, e.Pos)
	th.SetText("")
	if err := v.Drawing().Add(th); err != nil {
		slog.Warn("cannot add text", "error", err)
		return
	}
	t.editing, t.original, t.created = th, "", true
	selectOnly(v, th)
}

func (t *TextTool) KeyDown(v *editor.View, e input.KeyEvent) {
	if t.editing == nil {
		return
	}
	switch e.Key {
	case input.KeyEscape:
		t.revert(v)
		t.done(v)
		return
	case input.KeyEnter:
		t.commit(v)
		t.done(v)
		return
	case input.KeyBackspace:
		s := t.editing.Text()
		if s == "" {
			return
		}
		_, size := utf8.DecodeLastRuneInString(s)
		t.editing.SetText(s[:len(s)-size])
		return
	}
	if e.Modifiers.Has(input.Ctrl) || e.Modifiers.Has(input.Meta) {
		return
	}
	if utf8.RuneCountInString(e.Key) == 1 {
		t.editing.SetText(t.editing.Text() + e.Key)
	}
}

func (t *TextTool) Deactivate(v *editor.View) { t.commit(v) }

func (t *TextTool) done(v *editor.View) {
	if t.ToolDoneAfterCreation {
		toolDone(v)
	}
}

// commit records the edit in progress. New figures left empty are removed.
func (t *TextTool) commit(v *editor.View) {
	th := t.editing
	if th == nil {
		return
	}
	t.editing = nil
	v.Invalidate(th.DrawingArea())
	text := th.Text()
	switch {
	case t.created && text == "":
		t.remove(v, th)
	case t.created:
		record(v, undo.NewAddEdit("Create text", v.Drawing(), th))
	case text != t.original:
		record(v, undo.NewAttributeEdit(th, figure.TextContent.Name(), t.original, text))
	}
}

func (t *TextTool) revert(v *editor.View) {
	th := t.editing
	if th == nil {
		return
	}
	t.editing = nil
	if t.created {
		t.remove(v, th)
		return
	}
	th.SetText(t.original)
}

func (t *TextTool) remove(v *editor.View, f figure.Figure) {
	if _, err := v.Drawing().Remove(f); err != nil {
		slog.Debug("remove empty text", "error", err)
	}
}

// DrawOverlay paints a caret after the text.
func (t *TextTool) DrawOverlay(_ *editor.View, s figure.Surface) {
	if t.editing == nil {
		return
	}
	r := t.editing.Bounds()
	var p geom.Path
	p.MoveTo(geom.Pt(r.MaxX()+1, r.Y))
	p.LineTo(geom.Pt(r.MaxX()+1, r.MaxY()))
	s.DrawPath(p, caretPaint)
}
