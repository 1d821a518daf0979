package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
)

func setup(t *testing.T, figs ...figure.Figure) (*editor.Editor, *editor.View, *drawing.Drawing) {
	t.Helper()
	d := drawing.New()
	require.NoError(t, d.AddAll(figs))
	e := editor.New(editor.DefaultSettings(), nil)
	v := editor.NewView(d)
	e.AddView(v)
	return e, v, d
}

func rect(x, y, w, h float64) *figure.Rectangle {
	return figure.NewRectangle(geom.Rect{X: x, Y: y, Width: w, Height: h})
}

func connect(t *testing.T, a, b figure.Connectable) *figure.LineConnection {
	t.Helper()
	c := figure.NewLineConnection(a.Bounds().Center(), b.Bounds().Center())
	c.Connect(figure.NewChopConnector(a), figure.NewChopConnector(b))
	return c
}

func TestPerformRejectsUnknownAndEmpty(t *testing.T) {
	_, v, _ := setup(t)
	assert.ErrorContains(t, Perform(v, Request{Name: "explode"}), "unknown action")
	assert.ErrorIs(t, Perform(v, Request{Name: Delete}), ErrEmptySelection)
	assert.Error(t, Perform(v, Request{Name: SetAttribute}))
}

func TestDeleteRestoresConnections(t *testing.T) {
	a, b := rect(0, 0, 50, 50), rect(200, 0, 50, 50)
	c := connect(t, a, b)
	e, v, d := setup(t, a, b, c)
	v.Select(b)

	require.NoError(t, Perform(v, Request{Name: Delete}))
	assert.Equal(t, 2, d.Len())
	assert.Nil(t, c.EndConnector())
	frozen := c.EndPoint()
	assert.InDelta(t, 200, frozen.X, 1e-9)

	require.NoError(t, e.Undo())
	require.Equal(t, 3, d.Len())
	assert.Equal(t, 1, d.IndexOf(b))
	require.NotNil(t, c.EndConnector())
	b.Transform(geom.Translate(0, 100))
	assert.InDelta(t, 0, geom.DistanceToRect(b.Bounds(), c.EndPoint()), 1e-6)
}

func TestDuplicateIsOneUndoStep(t *testing.T) {
	a, b := rect(0, 0, 50, 50), rect(200, 0, 50, 50)
	c := connect(t, a, b)
	e, v, d := setup(t, a, b, c)
	v.SelectAll([]figure.Figure{a, b, c})

	require.NoError(t, Perform(v, Request{Name: Duplicate}))
	require.Equal(t, 6, d.Len())
	assert.Equal(t, 3, v.SelectionCount())
	assert.False(t, v.IsSelected(a))

	figs := d.Figures()
	ca, cb := figs[3], figs[4]
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 50, Height: 50}, ca.Bounds())
	cc := figs[5].(*figure.LineConnection)
	assert.Same(t, ca, cc.StartFigure())
	assert.Same(t, cb, cc.EndFigure())

	require.NoError(t, e.Undo())
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, "", e.UndoManager().UndoName())
}

func TestBringToFrontWinsHitTest(t *testing.T) {
	below := rect(0, 0, 100, 100)
	mid := rect(20, 20, 100, 100)
	above := rect(40, 40, 100, 100)
	e, v, d := setup(t, below, mid, above)
	p := geom.Pt(50, 50)
	require.Same(t, figure.Figure(above), d.FindFigure(p, 0))

	v.Select(below)
	require.NoError(t, Perform(v, Request{Name: BringToFront}))
	assert.Same(t, figure.Figure(below), d.FindFigure(p, 0))
	assert.Equal(t, 2, d.IndexOf(below))

	require.NoError(t, e.Undo())
	assert.Equal(t, 0, d.IndexOf(below))

	v.ClearSelection()
	v.SelectAll([]figure.Figure{mid, above})
	require.NoError(t, Perform(v, Request{Name: SendToBack}))
	assert.Equal(t, []figure.Figure{mid, above, below}, d.Figures())
}

func TestGroupAndUngroup(t *testing.T) {
	a, b, x := rect(0, 0, 10, 10), rect(20, 0, 10, 10), rect(100, 100, 10, 10)
	c := connect(t, b, x)
	e, v, d := setup(t, a, x, b, c)
	v.SelectAll([]figure.Figure{a, b})

	require.NoError(t, Perform(v, Request{Name: Group}))
	require.Equal(t, 3, d.Len())
	g, ok := d.Figures()[0].(*figure.Group)
	require.True(t, ok)
	assert.Equal(t, []figure.Figure{a, b}, g.Children())
	assert.Equal(t, g.ID(), b.Owner())
	assert.True(t, v.IsSelected(g))

	// The connection still follows b inside the group.
	require.NotNil(t, c.StartConnector())
	g.Transform(geom.Translate(0, 50))
	assert.InDelta(t, 0, geom.DistanceToRect(b.Bounds(), c.StartPoint()), 1e-6)

	require.NoError(t, Perform(v, Request{Name: Ungroup}))
	assert.Equal(t, []figure.Figure{a, b, x, c}, d.Figures())
	assert.ElementsMatch(t, []figure.Figure{a, b}, v.Selection())

	require.NoError(t, e.Undo())
	assert.Equal(t, []figure.Figure{g, x, c}, d.Figures())
	require.NoError(t, e.Undo())
	assert.Equal(t, []figure.Figure{a, x, b, c}, d.Figures())
	assert.Equal(t, d.ID(), b.Owner())
}

func TestSetAttributeRecursesIntoGroups(t *testing.T) {
	a, b, x := rect(0, 0, 10, 10), rect(20, 0, 10, 10), rect(100, 100, 10, 10)
	g := figure.NewGroup(a, b)
	e, v, _ := setup(t, g, x)
	v.SelectAll([]figure.Figure{g, x})

	require.NoError(t, Perform(v, Request{Name: SetAttribute, Attribute: figure.FillColor.Name(), Value: "#00ff00"}))
	for _, f := range []figure.Figure{a, b, x} {
		assert.Equal(t, "#00ff00", figure.FillColor.Get(f))
	}
	require.NoError(t, e.Undo())
	for _, f := range []figure.Figure{a, b, x} {
		assert.Equal(t, figure.FillColor.Default(), figure.FillColor.Get(f))
	}
}

func TestSelectAll(t *testing.T) {
	_, v, _ := setup(t, rect(0, 0, 1, 1), rect(5, 5, 1, 1))
	require.NoError(t, Perform(v, Request{Name: SelectAll}))
	assert.Equal(t, 2, v.SelectionCount())
}
