package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/undo"
)

type fakeHost struct {
	d     *drawing.Drawing
	shown figure.Connectable
}

func (h *fakeHost) Drawing() *drawing.Drawing           { return h.d }
func (h *fakeHost) HandleSize() float64                 { return 8 }
func (h *fakeHost) Tolerance() float64                  { return 2 }
func (h *fakeHost) MinSize() float64                    { return 1 }
func (h *fakeHost) ShowConnectors(f figure.Connectable) { h.shown = f }
func (h *fakeHost) HideConnectors()                     { h.shown = nil }

func newHost() *fakeHost { return &fakeHost{d: drawing.New()} }

func resizeAt(hs []Handle, rx, ry float64) Handle {
	for _, h := range hs {
		if r, ok := h.(*Resize); ok && r.Locator() == (RelativeLocator{RX: rx, RY: ry}) {
			return h
		}
	}
	return nil
}

func TestResizeUndoRedo(t *testing.T) {
	host := newHost()
	r := figure.NewRectangle(geom.Rect{X: 10, Y: 10, Width: 50, Height: 30})
	require.NoError(t, host.d.Add(r))

	hs := For(r, host)
	require.Len(t, hs, 8)
	se := resizeAt(hs, 1, 1)
	require.NotNil(t, se)
	assert.True(t, se.Contains(geom.Pt(60, 40)))

	se.Start(geom.Pt(60, 40), 0)
	se.Step(geom.Pt(70, 50), 0)
	a := se.End(geom.Pt(80, 70), 0)
	require.NotNil(t, a)
	after := geom.Rect{X: 10, Y: 10, Width: 70, Height: 60}
	assert.Equal(t, after, r.Bounds())

	require.NoError(t, a.Undo())
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 50, Height: 30}, r.Bounds())
	require.NoError(t, a.Redo())
	assert.Equal(t, after, r.Bounds())
}

func TestResizeShiftKeepsAspect(t *testing.T) {
	host := newHost()
	r := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 20, Height: 10})
	require.NoError(t, host.d.Add(r))
	se := resizeAt(For(r, host), 1, 1)
	se.Start(geom.Pt(20, 10), 0)
	se.End(geom.Pt(60, 12), 1)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 60, Height: 30}, r.Bounds())
}

func TestResizeStopsAtMinimumSize(t *testing.T) {
	host := newHost()
	r := figure.NewRectangle(geom.Rect{X: 10, Y: 10, Width: 50, Height: 30})
	require.NoError(t, host.d.Add(r))
	se := resizeAt(For(r, host), 1, 1)
	se.Start(geom.Pt(60, 40), 0)
	se.Step(geom.Pt(10, 10), 0)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 1, Height: 1}, r.Bounds())

	a := se.End(geom.Pt(-30, -30), 0)
	require.NotNil(t, a)
	b := r.Bounds()
	assert.Equal(t, 10.0, b.X)
	assert.Equal(t, 10.0, b.Y)
	assert.GreaterOrEqual(t, b.Width, 1.0)
	assert.GreaterOrEqual(t, b.Height, 1.0)

	nw := resizeAt(For(r, host), 0, 0)
	nw.Start(geom.Pt(10, 10), 0)
	nw.End(geom.Pt(90, 90), 0)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 1, Height: 1}, r.Bounds())
}

func TestResizeCancelRestores(t *testing.T) {
	host := newHost()
	r := figure.NewEllipse(geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	require.NoError(t, host.d.Add(r))
	nw := resizeAt(For(r, host), 0, 0)
	nw.Start(geom.Pt(0, 0), 0)
	nw.Step(geom.Pt(-20, -20), 0)
	nw.Cancel()
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}, r.Bounds())
	assert.Nil(t, nw.End(geom.Pt(5, 5), 0))
}

func TestHandleAbortsWhenOwnerRemoved(t *testing.T) {
	host := newHost()
	r := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	require.NoError(t, host.d.Add(r))
	e := resizeAt(For(r, host), 1, 0.5)
	e.Start(geom.Pt(10, 5), 0)
	_, err := host.d.Remove(r)
	require.NoError(t, err)
	e.Step(geom.Pt(40, 5), 0)
	assert.Nil(t, e.End(geom.Pt(40, 5), 0))
	assert.Equal(t, 10.0, r.Bounds().Width)
}

func TestMulticasterMergesEdits(t *testing.T) {
	host := newHost()
	a := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	b := figure.NewRectangle(geom.Rect{X: 20, Y: 0, Width: 10, Height: 10})
	require.NoError(t, host.d.AddAll([]figure.Figure{a, b}))

	all := For(a, host)
	primary := resizeAt(all, 0.5, 1)
	all = append(all, For(b, host)...)
	m := NewMulticaster(primary, all)
	require.Len(t, m.Handles(), 2)
	assert.ElementsMatch(t, []figure.Figure{a, b}, m.Owners())

	m.Start(geom.Pt(5, 10), 0)
	act := m.End(geom.Pt(5, 30), 0)
	require.IsType(t, &undo.Compound{}, act)
	assert.Equal(t, 30.0, a.Bounds().Height)
	assert.Equal(t, 30.0, b.Bounds().Height)

	require.NoError(t, act.Undo())
	assert.Equal(t, 10.0, a.Bounds().Height)
	assert.Equal(t, 10.0, b.Bounds().Height)
}

func TestMulticasterUndoWithRemovedOwner(t *testing.T) {
	host := newHost()
	a := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	b := figure.NewRectangle(geom.Rect{X: 20, Y: 0, Width: 10, Height: 10})
	require.NoError(t, host.d.AddAll([]figure.Figure{a, b}))
	m := undo.NewManager(0)

	first := resizeAt(For(a, host), 1, 0.5)
	first.Start(geom.Pt(10, 5), 0)
	m.Add(first.End(geom.Pt(15, 5), 0))
	require.Equal(t, 15.0, a.Bounds().Width)

	all := append(For(a, host), For(b, host)...)
	mc := NewMulticaster(resizeAt(all, 0.5, 1), all)
	mc.Start(geom.Pt(7.5, 10), 0)
	m.Add(mc.End(geom.Pt(7.5, 30), 0))
	require.Equal(t, 30.0, a.Bounds().Height)

	_, err := host.d.Remove(b)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Undo(), undo.ErrOrphaned)
	assert.Equal(t, 30.0, a.Bounds().Height)
	assert.Equal(t, 30.0, b.Bounds().Height)
	assert.False(t, m.CanRedo())

	require.NoError(t, m.Undo())
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}, a.Bounds())
}

func TestBezierNodeHandles(t *testing.T) {
	host := newHost()
	path := geom.BezierPath{Nodes: []geom.BezierNode{
		geom.NewNode(geom.Pt(0, 0)), geom.NewNode(geom.Pt(10, 0)), geom.NewNode(geom.Pt(20, 0)),
	}}
	path.Nodes[1].C[2] = geom.Pt(15, 5)
	path.Nodes[1].Mask = geom.C2Mask
	f := figure.NewBezier(path)
	require.NoError(t, host.d.Add(f))

	hs := For(f, host)
	require.Len(t, hs, 4)
	node := hs[1].(*BezierNode)
	node.Start(geom.Pt(10, 0), 0)
	a := node.End(geom.Pt(10, 10), 0)
	require.NotNil(t, a)
	assert.Equal(t, geom.Pt(10, 10), f.Node(1).Point())
	assert.Equal(t, geom.Pt(15, 15), f.Node(1).C[2])

	require.NoError(t, a.Undo())
	assert.Equal(t, geom.Pt(10, 0), f.Node(1).Point())

	rm := node.DoubleClick(geom.Pt(10, 0))
	require.NotNil(t, rm)
	assert.Equal(t, 2, f.NodeCount())
	assert.Nil(t, hs[0].(*BezierNode).DoubleClick(geom.Pt(0, 0)))
	require.NoError(t, rm.Undo())
	assert.Equal(t, 3, f.NodeCount())
}

func TestConnectionEndReconnects(t *testing.T) {
	host := newHost()
	a := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 20, Height: 20})
	b := figure.NewRectangle(geom.Rect{X: 100, Y: 0, Width: 20, Height: 20})
	c := figure.NewRectangle(geom.Rect{X: 100, Y: 100, Width: 20, Height: 20})
	conn := figure.NewLineConnection(geom.Point{}, geom.Point{})
	conn.SetStartConnector(figure.NewChopConnector(a))
	conn.SetEndConnector(figure.NewChopConnector(b))
	require.NoError(t, host.d.AddAll([]figure.Figure{a, b, c, conn}))

	hs := For(conn, host)
	require.Len(t, hs, 2)
	end := hs[1]
	end.Start(conn.EndPoint(), 0)
	end.Step(geom.Pt(105, 105), 0)
	assert.Equal(t, c, host.shown)
	act := end.End(geom.Pt(105, 105), 0)
	require.NotNil(t, act)
	assert.Nil(t, host.shown)
	assert.Equal(t, c, conn.EndConnector().Owner())

	require.NoError(t, act.Undo())
	assert.Equal(t, b, conn.EndConnector().Owner())

	end.Start(conn.EndPoint(), 0)
	end.Step(geom.Pt(5, 5), 0)
	end.Cancel()
	assert.Equal(t, b, conn.EndConnector().Owner())
}

func TestConnectionEndCancelAfterRemoval(t *testing.T) {
	host := newHost()
	a := figure.NewRectangle(geom.Rect{X: 0, Y: 0, Width: 20, Height: 20})
	b := figure.NewRectangle(geom.Rect{X: 100, Y: 0, Width: 20, Height: 20})
	conn := figure.NewLineConnection(geom.Point{}, geom.Point{})
	conn.SetStartConnector(figure.NewChopConnector(a))
	conn.SetEndConnector(figure.NewChopConnector(b))
	require.NoError(t, host.d.AddAll([]figure.Figure{a, b, conn}))

	end := For(conn, host)[1]
	end.Start(conn.EndPoint(), 0)
	end.Step(geom.Pt(50, 50), 0)
	_, err := host.d.Remove(conn)
	require.NoError(t, err)
	end.Cancel()
	assert.Nil(t, host.shown)
	assert.Nil(t, end.End(geom.Pt(50, 50), 0))
}
