package geom

import "math"

// Control point masks of a BezierNode.
const (
	C0Mask = 0 // straight corner, no control points
	C1Mask = 1 // incoming control point C[1] is used
	C2Mask = 2 // outgoing control point C[2] is used
)

// BezierNode is an on-curve point with optional incoming and outgoing
// control points. C[0] is the node itself, C[1] the incoming control point,
// C[2] the outgoing one.
type BezierNode struct {
	Mask int      `json:"mask"`
	C    [3]Point `json:"c"`
}

// NewNode returns a corner node at p.
func NewNode(p Point) BezierNode {
	return BezierNode{Mask: C0Mask, C: [3]Point{p, p, p}}
}

// Point returns the on-curve point.
func (n BezierNode) Point() Point { return n.C[0] }

// In returns the effective incoming control point.
func (n BezierNode) In() Point {
	if n.Mask&C1Mask != 0 {
		return n.C[1]
	}
	return n.C[0]
}

// Out returns the effective outgoing control point.
func (n BezierNode) Out() Point {
	if n.Mask&C2Mask != 0 {
		return n.C[2]
	}
	return n.C[0]
}

// MoveTo moves the node and its control points so that C[0] lands on p.
func (n *BezierNode) MoveTo(p Point) {
	d := p.Sub(n.C[0])
	for i := range n.C {
		n.C[i] = n.C[i].Add(d)
	}
}

// BezierPath is a sequence of bezier nodes, optionally closed.
type BezierPath struct {
	Nodes  []BezierNode `json:"nodes"`
	Closed bool         `json:"closed"`
}

// Clone returns a deep copy.
func (b BezierPath) Clone() BezierPath {
	out := BezierPath{Closed: b.Closed}
	if b.Nodes != nil {
		out.Nodes = append([]BezierNode(nil), b.Nodes...)
	}
	return out
}

// Len returns the number of nodes.
func (b BezierPath) Len() int { return len(b.Nodes) }

// ToPath converts the node list into path commands.
func (b BezierPath) ToPath() Path {
	var p Path
	if len(b.Nodes) == 0 {
		return p
	}
	p.MoveTo(b.Nodes[0].C[0])
	seg := func(from, to BezierNode) {
		if from.Mask&C2Mask == 0 && to.Mask&C1Mask == 0 {
			p.LineTo(to.C[0])
			return
		}
		p.CubicTo(from.Out(), to.In(), to.C[0])
	}
	for i := 1; i < len(b.Nodes); i++ {
		seg(b.Nodes[i-1], b.Nodes[i])
	}
	if b.Closed && len(b.Nodes) > 1 {
		seg(b.Nodes[len(b.Nodes)-1], b.Nodes[0])
		p.Close()
	}
	return p
}

// Bounds returns the box of all nodes and used control points.
func (b BezierPath) Bounds() Rect {
	return b.ToPath().Bounds()
}

// Transform maps all nodes and control points through m in place.
func (b *BezierPath) Transform(m Matrix2D) {
	for i := range b.Nodes {
		for j := range b.Nodes[i].C {
			b.Nodes[i].C[j] = m.Apply(b.Nodes[i].C[j])
		}
	}
}

// Flatten returns the polyline approximation of the path.
func (b BezierPath) Flatten() []Point {
	sps := b.ToPath().Flatten(flattenTolerance)
	if len(sps) == 0 {
		return nil
	}
	return sps[0].Points
}

// Contains reports whether p lies in the filled interior. Open paths have
// no interior.
func (b BezierPath) Contains(p Point) bool {
	if !b.Closed {
		return false
	}
	return PolygonContains(b.Flatten(), p)
}

// OutlineContains reports whether p is within tolerance of the outline.
func (b BezierPath) OutlineContains(p Point, tolerance float64) bool {
	return PolylineDistance(p, b.Flatten(), b.Closed) <= tolerance
}

// FindSegment returns the index i of the segment from node i to node i+1
// that passes within tolerance of p, or -1.
func (b BezierPath) FindSegment(p Point, tolerance float64) int {
	n := len(b.Nodes)
	segs := n - 1
	if b.Closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		one := BezierPath{Nodes: []BezierNode{b.Nodes[i], b.Nodes[(i+1)%n]}}
		if one.OutlineContains(p, tolerance) {
			return i
		}
	}
	return -1
}

// FindNode returns the index of the node whose point is within tolerance
// of p, or -1.
func (b BezierPath) FindNode(p Point, tolerance float64) int {
	for i, n := range b.Nodes {
		if n.C[0].Dist(p) <= tolerance {
			return i
		}
	}
	return -1
}

// Chop returns where the ray from origin towards toward crosses the
// outline, nearest to toward.
func (b BezierPath) Chop(origin, toward Point) (Point, bool) {
	return ChopPolyline(b.Flatten(), b.Closed, origin, toward)
}

// ClosestPoint returns the point on the outline nearest to p.
func (b BezierPath) ClosestPoint(p Point) Point {
	pts := b.Flatten()
	if len(pts) == 0 {
		return p
	}
	best := pts[0]
	bestD := math.Inf(1)
	last := len(pts) - 1
	if b.Closed {
		last = len(pts)
	}
	for i := 0; i < last; i++ {
		q := ClosestOnSegment(p, pts[i], pts[(i+1)%len(pts)])
		if d := q.DistSq(p); d < bestD {
			best, bestD = q, d
		}
	}
	if len(pts) == 1 {
		return pts[0]
	}
	return best
}
