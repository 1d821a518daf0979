package engine

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figura/internal/action"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(editor.DefaultSettings())
	e.AddView("v1")
	return e
}

func gesture(t *testing.T, e *Engine, key string, from, to geom.Point) {
	t.Helper()
	require.NoError(t, e.Pointer(key, input.PointerEvent{Kind: input.PointerDown, Pos: from, Button: input.ButtonPrimary, ClickCount: 1}))
	require.NoError(t, e.Pointer(key, input.PointerEvent{Kind: input.PointerDrag, Pos: to, Button: input.ButtonPrimary}))
	require.NoError(t, e.Pointer(key, input.PointerEvent{Kind: input.PointerUp, Pos: to, Button: input.ButtonPrimary, ClickCount: 1}))
}

func TestPaletteCreatesAndReturnsToSelection(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, ToolSelection, e.ToolName())
	assert.Len(t, e.ToolNames(), 10)

	require.NoError(t, e.SelectTool(ToolRoundRect))
	gesture(t, e, "v1", geom.Pt(10, 10), geom.Pt(110, 60))

	require.Equal(t, 1, e.Drawing().Len())
	f := e.Drawing().Figures()[0]
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 100, Height: 50}, f.Bounds())
	assert.Equal(t, 8.0, figure.CornerRadius.Get(f))
	assert.Equal(t, ToolSelection, e.ToolName())
	assert.Equal(t, []string{f.ID()}, e.Selection("v1"))
	assert.True(t, e.Dirty())

	require.NoError(t, e.Undo())
	assert.Equal(t, 0, e.Drawing().Len())
	assert.ErrorIs(t, e.Undo(), undo.ErrNothingToUndo)
}

func TestSelectToolRejectsUnknownNames(t *testing.T) {
	e := newTestEngine(t)
	assert.ErrorIs(t, e.SelectTool("lasso"), ErrUnknownTool)
	assert.ErrorIs(t, e.Pointer("nobody", input.PointerEvent{Kind: input.PointerMove}), ErrUnknownView)
}

func TestRenderTagsFiguresAndDecorations(t *testing.T) {
	e := newTestEngine(t)
	r := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 20, Height: 20})
	require.NoError(t, e.Drawing().Add(r))
	require.NoError(t, e.SetSelection("v1", []string{r.ID(), "fig_unknown"}))

	cmds, err := e.Render("v1")
	require.NoError(t, err)
	require.NotEmpty(t, cmds)
	assert.Equal(t, "path", cmds[0].Op)
	assert.Equal(t, r.ID(), cmds[0].ObjectID)
	assert.Equal(t, PathCommand{"M", 0.0, 0.0}, cmds[0].Path[0])

	decorations := 0
	for _, c := range cmds[1:] {
		if c.ObjectID == "" {
			decorations++
		}
	}
	assert.GreaterOrEqual(t, decorations, 8, "resize handles are drawn untagged")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(e.RenderJSON("v1")), &decoded))
	assert.Len(t, decoded, len(cmds))
}

func TestRenderAppliesViewScale(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Drawing().Add(figure.NewEllipse(geom.Rect{Width: 10, Height: 10})))
	v, err := e.View("v1")
	require.NoError(t, err)
	v.SetScale(2)

	cmds, err := e.Render("v1")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0, 0, 2, 0, 0}, cmds[0].Transform)
}

func TestHitTestAndSelectionBounds(t *testing.T) {
	e := newTestEngine(t)
	a := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 50, Height: 50})
	b := figure.NewRectangle(geom.Rect{X: 100, Y: 0, Width: 50, Height: 50})
	require.NoError(t, e.Drawing().AddAll([]figure.Figure{a, b}))

	assert.Equal(t, b.ID(), e.HitTest("v1", 120, 20))
	assert.Empty(t, e.HitTest("v1", 75, 200))

	require.NoError(t, e.Perform("v1", action.Request{Name: action.SelectAll}))
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 150, Height: 50}, e.SelectionBounds("v1"))
	assert.False(t, e.TakeDamage("v1").IsEmpty())
	assert.True(t, e.TakeDamage("v1").IsEmpty())
}

func TestLoadKeepsViewsAndClearsHistory(t *testing.T) {
	e := newTestEngine(t)
	e.AddView("v2")
	require.NoError(t, e.Drawing().Add(figure.NewRectangle(geom.Rect{Width: 5, Height: 5})))
	e.Editor().Record(undo.Func{Label: "noop", UndoFunc: func() error { return nil }, RedoFunc: func() error { return nil }})

	require.NoError(t, e.LoadSample())
	assert.Equal(t, "Sample", e.Name())
	assert.False(t, e.Dirty())
	assert.False(t, e.Editor().UndoManager().CanUndo())
	assert.Greater(t, e.Drawing().Len(), 1)
	for _, key := range []string{"v1", "v2"} {
		v, err := e.View(key)
		require.NoError(t, err)
		assert.Same(t, e.Drawing(), v.Drawing())
	}

	data, err := e.DocumentJSON()
	require.NoError(t, err)
	other := NewEngine(editor.DefaultSettings())
	require.NoError(t, other.LoadJSON(data))
	assert.Equal(t, e.Drawing().ID(), other.Drawing().ID())
	assert.Equal(t, e.Drawing().Len(), other.Drawing().Len())
}

func TestPopupReportsViewAndFigure(t *testing.T) {
	e := newTestEngine(t)
	r := figure.NewRectangle(geom.Rect{Width: 40, Height: 40})
	require.NoError(t, e.Drawing().Add(r))

	var got []Popup
	e.OnPopup(func(p Popup) { got = append(got, p) })
	require.NoError(t, e.Pointer("v1", input.PointerEvent{Kind: input.PointerDown, Pos: geom.Pt(20, 20), Button: input.ButtonSecondary, PopupTrigger: true}))
	require.NoError(t, e.Pointer("v1", input.PointerEvent{Kind: input.PointerUp, Pos: geom.Pt(20, 20), Button: input.ButtonSecondary}))

	require.Len(t, got, 1)
	assert.Equal(t, Popup{View: "v1", At: geom.Pt(20, 20), ObjectID: r.ID()}, got[0])
}

func TestImagesAttachWhenDecoded(t *testing.T) {
	e := newTestEngine(t)
	id, err := e.InsertImage("v1", "asset_a", geom.Rect{Width: 30, Height: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{id}, e.Selection("v1"))
	assert.Equal(t, []string{"asset_a"}, e.MissingAssets())

	raster := image.NewRGBA(image.Rect(0, 0, 3, 2))
	assert.Equal(t, 1, e.AttachImage("asset_a", raster))
	assert.Empty(t, e.MissingAssets())

	// Later figures with the same asset pick up the cached raster.
	_, err = e.InsertImage("v1", "asset_a", geom.Rect{X: 50, Width: 30, Height: 20})
	require.NoError(t, err)
	assert.Empty(t, e.MissingAssets())

	cmds, err := e.Render("v1")
	require.NoError(t, err)
	assert.Equal(t, "image", cmds[0].Op)
	assert.Equal(t, "asset_a", cmds[0].ImageAssetID)
}

func TestTextFiguresUseEngineMeasurer(t *testing.T) {
	e := newTestEngine(t)
	txt := figure.NewText(geom.Pt(0, 0), "abc")
	require.NoError(t, e.Drawing().Add(txt))
	e.SetMeasurer(fixedMeasurer{w: 33, h: 11})
	assert.Equal(t, geom.Rect{Width: 33, Height: 11}, txt.Bounds())
}

type fixedMeasurer struct{ w, h float64 }

func (m fixedMeasurer) MeasureText(string, figure.Font) (float64, float64) { return m.w, m.h }
