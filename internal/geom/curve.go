package geom

import (
	"iter"

	"honnef.co/go/curve"
)

func toCurve(p Point) curve.Point   { return curve.Pt(p.X, p.Y) }
func fromCurve(p curve.Point) Point { return Point{p.X, p.Y} }

// elements yields the path as curve path elements. A line or cubic that
// follows a close without its own move starts a new subpath at the close
// point, as it does when drawn.
func (p Path) elements() iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		var start, last Point
		open := false
		for _, c := range p.Cmds {
			var el curve.PathElement
			switch c.Op {
			case MoveTo:
				start, last, open = c.Pts[0], c.Pts[0], true
				el = curve.MoveTo(toCurve(c.Pts[0]))
			case LineTo, CubicTo:
				if !open {
					if !yield(curve.MoveTo(toCurve(last))) {
						return
					}
					start, open = last, true
				}
				if c.Op == LineTo {
					el = curve.LineTo(toCurve(c.Pts[0]))
					last = c.Pts[0]
				} else {
					el = curve.CubicTo(toCurve(c.Pts[0]), toCurve(c.Pts[1]), toCurve(c.Pts[2]))
					last = c.Pts[2]
				}
			case Close:
				if !open {
					continue
				}
				el = curve.ClosePath()
				last, open = start, false
			}
			if !yield(el) {
				return
			}
		}
	}
}

// appendElements appends the nodes described by a single open subpath to
// b. A move onto the current end point continues the path.
func appendElements(b *BezierPath, els iter.Seq[curve.PathElement]) {
	last := func() *BezierNode { return &b.Nodes[len(b.Nodes)-1] }
	for el := range els {
		switch el.Kind {
		case curve.MoveToKind:
			p := fromCurve(el.P0)
			if len(b.Nodes) == 0 || last().Point() != p {
				b.Nodes = append(b.Nodes, NewNode(p))
			}
		case curve.LineToKind:
			b.Nodes = append(b.Nodes, NewNode(fromCurve(el.P0)))
		case curve.QuadToKind:
			from, q, to := last().Point(), fromCurve(el.P0), fromCurve(el.P1)
			appendCubic(b, from.Add(q.Sub(from).Scale(2.0/3)), to.Add(q.Sub(to).Scale(2.0/3)), to)
		case curve.CubicToKind:
			appendCubic(b, fromCurve(el.P0), fromCurve(el.P1), fromCurve(el.P2))
		}
	}
}

func appendCubic(b *BezierPath, c1, c2, to Point) {
	n := &b.Nodes[len(b.Nodes)-1]
	n.C[2] = c1
	n.Mask |= C2Mask
	end := NewNode(to)
	end.C[1] = c2
	end.Mask = C1Mask
	b.Nodes = append(b.Nodes, end)
}
