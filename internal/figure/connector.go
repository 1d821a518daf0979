package figure

import (
	"fmt"

	"github.com/inamate/figura/internal/geom"
)

// Connector is an attachment point on a connectable figure. It computes
// where a connection touches the owner's outline.
type Connector interface {
	Owner() Figure
	// Anchor is the reference point lines aim at.
	Anchor() geom.Point
	// Chop returns where the line from the anchor towards from crosses the
	// owner outline.
	Chop(from geom.Point) geom.Point
	Bounds() geom.Rect
	Contains(p geom.Point) bool
	Draw(s Surface)
	Spec() ConnectorSpec
}

// ConnectorSpec is the persisted form of a connector relative to its owner.
type ConnectorSpec struct {
	Kind string  `json:"kind"`
	RX   float64 `json:"rx,omitempty"`
	RY   float64 `json:"ry,omitempty"`
}

const (
	ConnectorChop    = "chop"
	ConnectorLocator = "locator"

	connectorSize = 6
)

var affordancePaint = Paint{Fill: NoColor, Stroke: "#2f80ed", StrokeWidth: 1, Opacity: 1}

// ChopConnector attaches to the outline of its owner, whatever its shape.
type ChopConnector struct {
	owner Connectable
}

func NewChopConnector(owner Connectable) *ChopConnector {
	return &ChopConnector{owner: owner}
}

func (c *ChopConnector) Owner() Figure      { return c.owner }
func (c *ChopConnector) Anchor() geom.Point { return c.owner.Bounds().Center() }
func (c *ChopConnector) Bounds() geom.Rect  { return c.owner.Bounds() }
func (c *ChopConnector) Spec() ConnectorSpec {
	return ConnectorSpec{Kind: ConnectorChop}
}

func (c *ChopConnector) Chop(from geom.Point) geom.Point {
	return c.owner.ChopPoint(from)
}

func (c *ChopConnector) Contains(p geom.Point) bool {
	return c.owner.Contains(p, 0)
}

func (c *ChopConnector) Draw(s Surface) {
	s.DrawPath(geom.RectPath(c.Bounds()), affordancePaint)
}

// LocatorConnector attaches at a fixed point relative to the owner bounds,
// (0,0) being the top-left corner and (1,1) the bottom-right.
type LocatorConnector struct {
	owner  Figure
	rx, ry float64
}

func NewLocatorConnector(owner Figure, rx, ry float64) *LocatorConnector {
	return &LocatorConnector{owner: owner, rx: rx, ry: ry}
}

func (c *LocatorConnector) Owner() Figure { return c.owner }

func (c *LocatorConnector) Anchor() geom.Point {
	r := c.owner.Bounds()
	return geom.Pt(r.X+r.Width*c.rx, r.Y+r.Height*c.ry)
}

func (c *LocatorConnector) Chop(geom.Point) geom.Point { return c.Anchor() }

func (c *LocatorConnector) Bounds() geom.Rect {
	a := c.Anchor()
	return geom.Rect{X: a.X - connectorSize/2, Y: a.Y - connectorSize/2, Width: connectorSize, Height: connectorSize}
}

func (c *LocatorConnector) Contains(p geom.Point) bool {
	return c.Bounds().Contains(p)
}

func (c *LocatorConnector) Draw(s Surface) {
	s.DrawPath(geom.EllipsePath(c.Bounds()), affordancePaint)
}

func (c *LocatorConnector) Spec() ConnectorSpec {
	return ConnectorSpec{Kind: ConnectorLocator, RX: c.rx, RY: c.ry}
}

// RestoreConnector rebuilds a persisted connector on owner.
func RestoreConnector(owner Figure, spec ConnectorSpec) (Connector, error) {
	switch spec.Kind {
	case ConnectorChop, "":
		cf, ok := owner.(Connectable)
		if !ok {
			return nil, fmt.Errorf("figure %s is not connectable", owner.ID())
		}
		return NewChopConnector(cf), nil
	case ConnectorLocator:
		return NewLocatorConnector(owner, spec.RX, spec.RY), nil
	default:
		return nil, fmt.Errorf("unknown connector kind: %s", spec.Kind)
	}
}

// standardConnectors returns the outline connector followed by the four
// side midpoints.
func standardConnectors(f Connectable) []Connector {
	return []Connector{
		NewChopConnector(f),
		NewLocatorConnector(f, 0.5, 0),
		NewLocatorConnector(f, 1, 0.5),
		NewLocatorConnector(f, 0.5, 1),
		NewLocatorConnector(f, 0, 0.5),
	}
}

// findStandardConnector prefers a side midpoint under p over the outline.
func findStandardConnector(f Connectable, p geom.Point) Connector {
	cs := standardConnectors(f)
	for _, c := range cs[1:] {
		if c.Contains(p) {
			return c
		}
	}
	return cs[0]
}
