package handle

import (
	"log/slog"

	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// ConnectionEnd drags the start or end of a connection and reconnects it
// to the connectable figure it is dropped on.
type ConnectionEnd struct {
	conn  figure.ConnectionFigure
	start bool
	host  Host

	finish func(name string) *undo.ConnectEdit
	target figure.Connector
	moved  bool
	active bool
}

func NewConnectionEnd(c figure.ConnectionFigure, start bool, host Host) *ConnectionEnd {
	return &ConnectionEnd{conn: c, start: start, host: host}
}

func (h *ConnectionEnd) Owner() figure.Figure { return h.conn }
func (h *ConnectionEnd) Cursor() string       { return "crosshair" }

func (h *ConnectionEnd) location() geom.Point {
	if h.start {
		return h.conn.StartPoint()
	}
	return h.conn.EndPoint()
}

func (h *ConnectionEnd) Bounds() geom.Rect {
	return squareAt(h.location(), h.host.HandleSize())
}

func (h *ConnectionEnd) Contains(p geom.Point) bool { return h.Bounds().Contains(p) }

func (h *ConnectionEnd) Draw(s figure.Surface, hover bool) {
	paint := activePaint
	if h.connector() != nil {
		paint = nodePaint
	}
	if hover {
		paint = hoverPaint
	}
	s.DrawPath(geom.EllipsePath(h.Bounds()), paint)
}

func (h *ConnectionEnd) connector() figure.Connector {
	if h.start {
		return h.conn.StartConnector()
	}
	return h.conn.EndConnector()
}

func (h *ConnectionEnd) other() figure.Connector {
	if h.start {
		return h.conn.EndConnector()
	}
	return h.conn.StartConnector()
}

func (h *ConnectionEnd) setConnector(c figure.Connector) {
	if h.start {
		h.conn.SetStartConnector(c)
	} else {
		h.conn.SetEndConnector(c)
	}
}

func (h *ConnectionEnd) setPoint(p geom.Point) {
	if h.start {
		h.conn.SetStartPoint(p)
	} else {
		h.conn.SetEndPoint(p)
	}
}

func (h *ConnectionEnd) Start(geom.Point, input.Modifiers) {
	h.finish = undo.CaptureConnection(h.conn)
	h.target = nil
	h.moved = false
	h.active = true
}

// findTarget returns a connector under p that the connection accepts with
// its other end unchanged.
func (h *ConnectionEnd) findTarget(p geom.Point) figure.Connector {
	f := h.host.Drawing().FindConnectable(p, h.host.Tolerance(), h.conn)
	if f == nil {
		return nil
	}
	c := f.FindConnector(p)
	other := h.other()
	if other == nil {
		if c.Owner() == figure.Figure(h.conn) {
			return nil
		}
		return c
	}
	start, end := c, other
	if !h.start {
		start, end = other, c
	}
	if !h.conn.CanConnect(start, end) {
		return nil
	}
	return c
}

func (h *ConnectionEnd) Step(p geom.Point, _ input.Modifiers) {
	if !h.active || orphaned(h.conn) {
		return
	}
	if h.connector() != nil {
		h.setConnector(nil)
	}
	h.target = h.findTarget(p)
	if h.target != nil {
		if cf, ok := h.target.Owner().(figure.Connectable); ok {
			h.host.ShowConnectors(cf)
		}
		p = h.target.Anchor()
	} else {
		h.host.HideConnectors()
	}
	h.setPoint(p)
	h.moved = true
}

func (h *ConnectionEnd) End(p geom.Point, mods input.Modifiers) undo.Activity {
	if !h.active {
		return nil
	}
	if h.moved {
		h.Step(p, mods)
	}
	h.active = false
	h.host.HideConnectors()
	if orphaned(h.conn) || !h.moved {
		return nil
	}
	if h.target != nil {
		h.setConnector(h.target)
	}
	h.conn.UpdateConnection()
	return h.finish("Reconnect")
}

func (h *ConnectionEnd) Cancel() {
	if !h.active {
		return
	}
	h.active = false
	h.host.HideConnectors()
	if orphaned(h.conn) {
		return
	}
	if err := h.finish("").Undo(); err != nil {
		slog.Debug("restore connection end", "connection", h.conn.ID(), "error", err)
	}
}

func (h *ConnectionEnd) CombinableWith(Handle) bool { return false }
