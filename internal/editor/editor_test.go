package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

type traceTool struct {
	name  string
	calls []string
}

func (t *traceTool) Name() string                          { return t.name }
func (t *traceTool) Activate(*View)                        { t.calls = append(t.calls, "activate") }
func (t *traceTool) Deactivate(*View)                      { t.calls = append(t.calls, "deactivate") }
func (t *traceTool) PointerDown(*View, input.PointerEvent) { t.calls = append(t.calls, "down") }
func (t *traceTool) PointerMove(*View, input.PointerEvent) { t.calls = append(t.calls, "move") }
func (t *traceTool) PointerDrag(*View, input.PointerEvent) { t.calls = append(t.calls, "drag") }
func (t *traceTool) PointerUp(*View, input.PointerEvent)   { t.calls = append(t.calls, "up") }
func (t *traceTool) KeyDown(*View, input.KeyEvent)         { t.calls = append(t.calls, "key") }
func (t *traceTool) DrawOverlay(*View, figure.Surface)     {}

func setup(t *testing.T) (*Editor, *View, *drawing.Drawing) {
	t.Helper()
	d := drawing.New()
	e := New(DefaultSettings(), nil)
	v := NewView(d)
	e.AddView(v)
	return e, v, d
}

func ptr(kind input.PointerKind, x, y float64) input.PointerEvent {
	return input.PointerEvent{Kind: kind, Pos: geom.Pt(x, y), Button: input.ButtonPrimary, ClickCount: 1}
}

func TestSetToolDeactivatesPrevious(t *testing.T) {
	e, _, _ := setup(t)
	a, b := &traceTool{name: "a"}, &traceTool{name: "b"}
	e.SetTool(a)
	e.SetTool(b)
	assert.Equal(t, []string{"activate", "deactivate"}, a.calls)
	assert.Equal(t, []string{"activate"}, b.calls)

	e.SetDefaultTool(a)
	e.ToolDone()
	assert.Same(t, a, e.Tool())
}

func TestGestureLocksOtherViews(t *testing.T) {
	e, v1, d := setup(t)
	v2 := NewView(d)
	e.AddView(v2)
	tool := &traceTool{name: "trace"}
	e.SetTool(tool)

	require.NoError(t, v1.Pointer(ptr(input.PointerDown, 1, 1)))
	assert.ErrorIs(t, v2.Pointer(ptr(input.PointerDown, 1, 1)), ErrBusy)
	assert.ErrorIs(t, e.Undo(), ErrBusy)
	require.NoError(t, v1.Pointer(ptr(input.PointerUp, 1, 1)))

	require.NoError(t, v2.Pointer(ptr(input.PointerMove, 2, 2)))
	assert.Same(t, v1, e.ActiveView())
	require.NoError(t, v2.Pointer(ptr(input.PointerDown, 2, 2)))
	assert.Same(t, v2, e.ActiveView())
	assert.Equal(t, []string{"activate", "down", "up", "move", "deactivate", "activate", "down"}, tool.calls)
}

type engagedTool struct {
	traceTool
	engaged bool
}

func (t *engagedTool) Engaged() bool { return t.engaged }

func TestEngagedToolStaysWithItsView(t *testing.T) {
	e, v1, d := setup(t)
	v2 := NewView(d)
	e.AddView(v2)
	tool := &engagedTool{traceTool: traceTool{name: "engaged"}, engaged: true}
	e.SetTool(tool)

	require.NoError(t, v1.Pointer(ptr(input.PointerDown, 1, 1)))
	require.NoError(t, v1.Pointer(ptr(input.PointerUp, 1, 1)))
	assert.ErrorIs(t, v2.Pointer(ptr(input.PointerMove, 2, 2)), ErrBusy)
	assert.ErrorIs(t, v2.Pointer(ptr(input.PointerDown, 2, 2)), ErrBusy)
	assert.ErrorIs(t, v2.Key(input.KeyEvent{Key: "a"}), ErrBusy)
	assert.Same(t, v1, e.ActiveView())
	assert.Equal(t, []string{"activate", "down", "up"}, tool.calls)

	tool.engaged = false
	require.NoError(t, v2.Pointer(ptr(input.PointerDown, 2, 2)))
	assert.Same(t, v2, e.ActiveView())
}

func TestPostRunsOnInteractionThread(t *testing.T) {
	e, _, _ := setup(t)
	var order []int
	done := make(chan struct{})
	go func() {
		e.Post(func() { order = append(order, 1) })
		e.Post(func() { order = append(order, 2) })
		close(done)
	}()
	<-done
	<-e.Wake()
	assert.Equal(t, 2, e.RunPending())
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, e.RunPending())
}

func TestSelectionAndHandles(t *testing.T) {
	_, v, d := setup(t)
	r := figure.NewRectangle(geom.Rect{X: 10, Y: 10, Width: 50, Height: 30})
	outside := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 5, Height: 5})
	require.NoError(t, d.Add(r))

	var notified int
	v.OnSelectionChanged(func(*View) { notified++ })

	v.Select(outside)
	assert.Zero(t, v.SelectionCount())

	v.Select(r)
	v.Select(r)
	assert.Equal(t, 1, notified)
	assert.Len(t, v.Handles(), 8)
	assert.NotNil(t, v.FindHandle(geom.Pt(60, 40)))
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 50, Height: 30}, v.SelectionBounds())

	v.ToggleSelection(r)
	assert.False(t, v.IsSelected(r))
	assert.Empty(t, v.Handles())
}

func TestRemovedFigureLeavesSelection(t *testing.T) {
	_, v, d := setup(t)
	r := figure.NewRectangle(geom.Rect{X: 10, Y: 10, Width: 50, Height: 30})
	require.NoError(t, d.Add(r))
	v.Select(r)
	v.SetHover(r)

	_, err := d.Remove(r)
	require.NoError(t, err)
	assert.Zero(t, v.SelectionCount())
	assert.Nil(t, v.Hover())
	assert.Empty(t, v.Handles())
}

func TestFindFigurePrefersSelection(t *testing.T) {
	_, v, d := setup(t)
	below := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	above := figure.NewRectangle(geom.Rect{X: 20, Y: 20, Width: 20, Height: 20})
	require.NoError(t, d.AddAll([]figure.Figure{below, above}))

	assert.Same(t, above, v.FindFigure(geom.Pt(30, 30)))
	v.Select(below)
	assert.Same(t, below, v.FindFigure(geom.Pt(30, 30)))
}

func TestScaleAdjustsTolerance(t *testing.T) {
	_, v, _ := setup(t)
	base := v.Tolerance()
	v.SetScale(2)
	assert.InDelta(t, base/2, v.Tolerance(), 1e-9)
	assert.InDelta(t, DefaultSettings().HandleSize/2, v.HandleSize(), 1e-9)
}

func TestDamageAccumulates(t *testing.T) {
	_, v, d := setup(t)
	r := figure.NewRectangle(geom.Rect{X: 10, Y: 10, Width: 50, Height: 30})
	require.NoError(t, d.Add(r))
	v.TakeDamage()

	r.Transform(geom.Translate(100, 0))
	dmg := v.TakeDamage()
	assert.True(t, dmg.ContainsRect(geom.Rect{X: 10, Y: 10, Width: 150, Height: 30}))
	assert.Equal(t, geom.Rect{}, v.TakeDamage())
}

func TestUndoRefreshesHandles(t *testing.T) {
	e, v, d := setup(t)
	r := figure.NewRectangle(geom.Rect{X: 10, Y: 10, Width: 50, Height: 30})
	require.NoError(t, d.Add(r))
	e.Record(undo.NewAddEdit("Create", d, r))
	v.Select(r)

	require.NoError(t, e.Undo())
	assert.False(t, d.Contains(r))
	assert.Zero(t, v.SelectionCount())
	require.NoError(t, e.Redo())
	assert.True(t, d.Contains(r))
	assert.ErrorIs(t, e.Redo(), undo.ErrNothingToRedo)
}
