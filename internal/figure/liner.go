package figure

import (
	"fmt"
	"math"

	"github.com/inamate/figura/internal/geom"
)

// Liner computes the interior route of a connection from its endpoints.
type Liner interface {
	Lineout(c *LineConnection)
	Kind() string
}

const (
	LinerStraight = "straight"
	LinerElbow    = "elbow"
	LinerCurved   = "curved"
)

// RestoreLiner returns the liner for a persisted kind. The empty kind means
// a free path without a liner.
func RestoreLiner(kind string) (Liner, error) {
	switch kind {
	case "":
		return nil, nil
	case LinerStraight:
		return StraightLiner{}, nil
	case LinerElbow:
		return ElbowLiner{}, nil
	case LinerCurved:
		return CurvedLiner{}, nil
	default:
		return nil, fmt.Errorf("unknown liner: %s", kind)
	}
}

// StraightLiner drops all interior nodes.
type StraightLiner struct{}

func (StraightLiner) Kind() string { return LinerStraight }

func (StraightLiner) Lineout(c *LineConnection) {
	s, e := c.StartPoint(), c.EndPoint()
	c.path.Nodes = []geom.BezierNode{geom.NewNode(s), geom.NewNode(e)}
}

// ElbowLiner routes the connection with axis-parallel segments.
type ElbowLiner struct{}

func (ElbowLiner) Kind() string { return LinerElbow }

func (ElbowLiner) Lineout(c *LineConnection) {
	s, e, horizontal := orthogonalEnds(c)
	nodes := []geom.BezierNode{geom.NewNode(s)}
	if horizontal && math.Abs(s.Y-e.Y) > 1e-9 {
		mx := (s.X + e.X) / 2
		nodes = append(nodes, geom.NewNode(geom.Pt(mx, s.Y)), geom.NewNode(geom.Pt(mx, e.Y)))
	} else if !horizontal && math.Abs(s.X-e.X) > 1e-9 {
		my := (s.Y + e.Y) / 2
		nodes = append(nodes, geom.NewNode(geom.Pt(s.X, my)), geom.NewNode(geom.Pt(e.X, my)))
	}
	c.path.Nodes = append(nodes, geom.NewNode(e))
}

// CurvedLiner joins the endpoints with one cubic leaving and entering along
// the same axis an elbow route would.
type CurvedLiner struct{}

func (CurvedLiner) Kind() string { return LinerCurved }

func (CurvedLiner) Lineout(c *LineConnection) {
	s, e, horizontal := orthogonalEnds(c)
	n0, n1 := geom.NewNode(s), geom.NewNode(e)
	if horizontal {
		mx := (s.X + e.X) / 2
		n0.C[2], n1.C[1] = geom.Pt(mx, s.Y), geom.Pt(mx, e.Y)
	} else {
		my := (s.Y + e.Y) / 2
		n0.C[2], n1.C[1] = geom.Pt(s.X, my), geom.Pt(e.X, my)
	}
	n0.Mask |= geom.C2Mask
	n1.Mask |= geom.C1Mask
	c.path.Nodes = []geom.BezierNode{n0, n1}
}

// orthogonalEnds picks the leading axis and chops each end along it. The
// axis follows the side of the start figure the end lies on, falling back
// to the dominant direction.
func orthogonalEnds(c *LineConnection) (s, e geom.Point, horizontal bool) {
	sa, ea := c.StartPoint(), c.EndPoint()
	if c.start != nil {
		sa = c.start.Anchor()
	}
	if c.end != nil {
		ea = c.end.Anchor()
	}

	d := ea.Sub(sa)
	horizontal = math.Abs(d.X) >= math.Abs(d.Y)
	if c.start != nil {
		oc := c.start.Owner().Bounds().Outcode(ea)
		sides := oc & (geom.OutLeft | geom.OutRight)
		ends := oc & (geom.OutTop | geom.OutBottom)
		switch {
		case sides != 0 && ends == 0:
			horizontal = true
		case ends != 0 && sides == 0:
			horizontal = false
		}
	}

	s, e = c.StartPoint(), c.EndPoint()
	if horizontal {
		if c.start != nil {
			s = c.start.Chop(geom.Pt(ea.X, sa.Y))
		}
		if c.end != nil {
			e = c.end.Chop(geom.Pt(sa.X, ea.Y))
		}
	} else {
		if c.start != nil {
			s = c.start.Chop(geom.Pt(sa.X, ea.Y))
		}
		if c.end != nil {
			e = c.end.Chop(geom.Pt(ea.X, sa.Y))
		}
	}
	return s, e, horizontal
}
