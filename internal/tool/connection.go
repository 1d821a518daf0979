package tool

import (
	"log/slog"

	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// ConnectionTool drags a connection from one connectable figure to another.
// The pending connection lives outside the drawing and is only added once
// both ends are connected.
type ConnectionTool struct {
	base
	// Liner is the liner kind of new connections, "" for a straight free
	// line.
	Liner                 string
	Attributes            map[string]any
	ToolDoneAfterCreation bool

	conn  figure.ConnectionFigure
	start figure.Connector
}

func NewConnectionTool(name, liner string, attrs map[string]any) *ConnectionTool {
	return &ConnectionTool{base: base{name: name}, Liner: liner, Attributes: attrs}
}

// Pending returns the connection being dragged, if any.
func (t *ConnectionTool) Pending() figure.ConnectionFigure { return t.conn }

func (t *ConnectionTool) PointerDown(v *editor.View, e input.PointerEvent) {
	if t.conn != nil {
		return
	}
	target := v.Drawing().FindConnectable(e.Pos, v.Tolerance())
	if target == nil {
		return
	}
	start := target.FindConnector(e.Pos)
	if start == nil {
		return
	}
	f, err := newFigure(v, figure.TypeLineConnection)
	if err != nil {
		slog.Warn("cannot create connection", "error", err)
		return
	}
	conn, ok := f.(figure.ConnectionFigure)
	if !ok {
		return
	}
	liner, err := figure.RestoreLiner(t.Liner)
	if err != nil {
		slog.Warn("cannot create connection", "error", err)
		return
	}
	applyAttributes(conn, t.Attributes)
	conn.SetLiner(liner)
	conn.SetStartPoint(e.Pos)
	conn.SetEndPoint(e.Pos)
	conn.SetStartConnector(start)
	t.conn, t.start = conn, start
	v.Invalidate(conn.DrawingArea())
}

func (t *ConnectionTool) findEnd(v *editor.View, p geom.Point) (figure.Connectable, figure.Connector) {
	target := v.Drawing().FindConnectable(p, v.Tolerance(), t.conn)
	if target == nil {
		return nil, nil
	}
	c := target.FindConnector(p)
	if c == nil || !t.conn.CanConnect(t.start, c) {
		return nil, nil
	}
	return target, c
}

func (t *ConnectionTool) PointerDrag(v *editor.View, e input.PointerEvent) {
	if t.conn == nil {
		return
	}
	v.Invalidate(t.conn.DrawingArea())
	if target, _ := t.findEnd(v, e.Pos); target != nil {
		v.ShowConnectors(target)
	} else {
		v.HideConnectors()
	}
	t.conn.SetEndPoint(e.Pos)
	t.conn.UpdateConnection()
	v.Invalidate(t.conn.DrawingArea())
}

// PointerMove shows the connectors of the figure under the pointer.
func (t *ConnectionTool) PointerMove(v *editor.View, e input.PointerEvent) {
	if t.conn != nil {
		return
	}
	if target := v.Drawing().FindConnectable(e.Pos, v.Tolerance()); target != nil {
		v.ShowConnectors(target)
		return
	}
	v.HideConnectors()
}

// PointerUp commits the connection if it ends on a valid target and drops
// it otherwise.
func (t *ConnectionTool) PointerUp(v *editor.View, e input.PointerEvent) {
	if t.conn == nil {
		return
	}
	v.HideConnectors()
	_, end := t.findEnd(v, e.Pos)
	if end == nil {
		t.discard(v)
		return
	}
	conn := t.conn
	t.conn, t.start = nil, nil
	conn.SetEndConnector(end)
	conn.UpdateConnection()
	if err := v.Drawing().Add(conn); err != nil {
		slog.Warn("cannot add connection", "error", err)
		conn.SetStartConnector(nil)
		conn.SetEndConnector(nil)
		return
	}
	record(v, undo.NewAddEdit("Create connection", v.Drawing(), conn))
	selectOnly(v, conn)
	if t.ToolDoneAfterCreation {
		toolDone(v)
	}
}

func (t *ConnectionTool) KeyDown(v *editor.View, e input.KeyEvent) {
	if e.Key == input.KeyEscape {
		t.discard(v)
	}
}

func (t *ConnectionTool) Deactivate(v *editor.View) {
	t.discard(v)
	v.HideConnectors()
}

// discard unhooks the pending connection from its start figure.
func (t *ConnectionTool) discard(v *editor.View) {
	if t.conn == nil {
		return
	}
	v.Invalidate(t.conn.DrawingArea())
	t.conn.SetStartConnector(nil)
	t.conn, t.start = nil, nil
	v.HideConnectors()
}

func (t *ConnectionTool) DrawOverlay(_ *editor.View, s figure.Surface) {
	if t.conn != nil {
		t.conn.Draw(s)
	}
}
