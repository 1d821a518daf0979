package figure

import "github.com/inamate/figura/internal/geom"

// Attachable figures hook into their surroundings when a drawing adds them.
type Attachable interface {
	Attached()
}

// LineConnection is a path whose ends follow the figures it connects. An
// optional liner computes the interior route.
type LineConnection struct {
	pathFigure
	start, end Connector
	liner      Liner
	updating   bool
}

func NewLineConnection(start, end geom.Point) *LineConnection {
	c := &LineConnection{pathFigure: pathFigure{path: geom.BezierPath{
		Nodes: []geom.BezierNode{geom.NewNode(start), geom.NewNode(end)},
	}}}
	c.init(c)
	return c
}

func (c *LineConnection) Type() Type { return TypeLineConnection }

func (c *LineConnection) StartConnector() Connector { return c.start }
func (c *LineConnection) EndConnector() Connector   { return c.end }
func (c *LineConnection) Liner() Liner              { return c.liner }

// StartFigure returns the owner of the start connector, or nil.
func (c *LineConnection) StartFigure() Figure {
	if c.start == nil {
		return nil
	}
	return c.start.Owner()
}

// EndFigure returns the owner of the end connector, or nil.
func (c *LineConnection) EndFigure() Figure {
	if c.end == nil {
		return nil
	}
	return c.end.Owner()
}

func (c *LineConnection) SetLiner(l Liner) {
	c.WillChange()
	c.liner = l
	c.UpdateConnection()
	c.Changed()
}

// CanConnect accepts two connectors on distinct figures other than the
// connection itself.
func (c *LineConnection) CanConnect(start, end Connector) bool {
	if start == nil || end == nil {
		return false
	}
	so, eo := start.Owner(), end.Owner()
	if so == nil || eo == nil || so == eo {
		return false
	}
	return so != Figure(c) && eo != Figure(c)
}

// Connect binds both ends at once.
func (c *LineConnection) Connect(start, end Connector) {
	c.WillChange()
	c.SetStartConnector(start)
	c.SetEndConnector(end)
	c.Changed()
}

func (c *LineConnection) SetStartConnector(conn Connector) {
	if conn == c.start {
		return
	}
	c.WillChange()
	c.unhook(c.start, c.end)
	c.start = conn
	c.hook(conn)
	c.UpdateConnection()
	c.Changed()
}

func (c *LineConnection) SetEndConnector(conn Connector) {
	if conn == c.end {
		return
	}
	c.WillChange()
	c.unhook(c.end, c.start)
	c.end = conn
	c.hook(conn)
	c.UpdateConnection()
	c.Changed()
}

func (c *LineConnection) hook(conn Connector) {
	if conn != nil {
		conn.Owner().AddListener(c)
	}
}

// unhook stops listening to the owner of old unless other shares it.
func (c *LineConnection) unhook(old, other Connector) {
	if old == nil {
		return
	}
	if other != nil && other.Owner() == old.Owner() {
		return
	}
	old.Owner().RemoveListener(c)
}

// UpdateConnection moves the ends onto the connected outlines and reroutes
// through the liner. Nested calls from change notifications are ignored.
func (c *LineConnection) UpdateConnection() {
	if c.updating {
		return
	}
	c.updating = true
	defer func() { c.updating = false }()

	c.WillChange()
	c.ensureNodes(c.StartPoint())
	n := len(c.path.Nodes)
	if c.start != nil {
		toward := c.EndPoint()
		if c.end != nil {
			toward = c.end.Anchor()
		}
		if n > 2 && c.liner == nil {
			toward = c.path.Nodes[1].Point()
		}
		c.path.Nodes[0].MoveTo(c.start.Chop(toward))
	}
	if c.end != nil {
		toward := c.StartPoint()
		if c.start != nil {
			toward = c.start.Anchor()
		}
		if n > 2 && c.liner == nil {
			toward = c.path.Nodes[n-2].Point()
		}
		c.path.Nodes[n-1].MoveTo(c.end.Chop(toward))
	}
	if c.liner != nil {
		c.liner.Lineout(c)
	}
	c.Changed()
}

func (c *LineConnection) Transform(m geom.Matrix2D) {
	c.WillChange()
	c.path.Transform(m)
	c.UpdateConnection()
	c.Changed()
}

func (c *LineConnection) FigureChanged(e Event) {
	if (c.start != nil && e.Source == c.start.Owner()) || (c.end != nil && e.Source == c.end.Owner()) {
		c.UpdateConnection()
	}
}

func (c *LineConnection) AttributeChanged(Event) {}

// FigureRemoved freezes the end attached to a removed figure at its last
// position.
func (c *LineConnection) FigureRemoved(e Event) {
	c.WillChange()
	if c.start != nil && c.start.Owner() == e.Source {
		c.unhook(c.start, c.end)
		c.start = nil
	}
	if c.end != nil && c.end.Owner() == e.Source {
		c.unhook(c.end, c.start)
		c.end = nil
	}
	c.Changed()
}

// NotifyRemoved stops following the connected figures while the connection
// is out of the drawing. Attached resumes.
func (c *LineConnection) NotifyRemoved() {
	c.Base.NotifyRemoved()
	for _, conn := range []Connector{c.start, c.end} {
		if conn != nil {
			conn.Owner().RemoveListener(c)
		}
	}
}

func (c *LineConnection) Attached() {
	c.hook(c.start)
	c.hook(c.end)
	if c.start != nil || c.end != nil {
		c.UpdateConnection()
	}
}

// Clone copies the route and liner. The clone is not connected.
func (c *LineConnection) Clone() Figure {
	cl := &LineConnection{pathFigure: pathFigure{path: c.path.Clone()}, liner: c.liner}
	cl.Base = c.cloneFor(cl)
	return cl
}

// Remap reconnects a clone to the clones of the originally connected
// figures. orig is the connection this one was cloned from.
func (c *LineConnection) Remap(orig *LineConnection, clones map[Figure]Figure) {
	if orig.start != nil {
		if f, ok := clones[orig.start.Owner()]; ok {
			if conn, err := RestoreConnector(f, orig.start.Spec()); err == nil {
				c.SetStartConnector(conn)
			}
		}
	}
	if orig.end != nil {
		if f, ok := clones[orig.end.Owner()]; ok {
			if conn, err := RestoreConnector(f, orig.end.Spec()); err == nil {
				c.SetEndConnector(conn)
			}
		}
	}
}
