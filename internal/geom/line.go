package geom

import "math"

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b Point) float64 {
	return p.Dist(ClosestOnSegment(p, a, b))
}

// ClosestOnSegment returns the point of segment a-b nearest to p.
func ClosestOnSegment(p, a, b Point) Point {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return a
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Scale(t))
}

// SegmentIntersection returns the intersection point of segments p1-p2 and
// p3-p4 and the parameter t along p1-p2, if they intersect.
func SegmentIntersection(p1, p2, p3, p4 Point) (Point, float64, bool) {
	d1 := p2.Sub(p1)
	d2 := p4.Sub(p3)
	denom := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(denom) < 1e-12 {
		return Point{}, 0, false
	}
	w := p3.Sub(p1)
	t := (w.X*d2.Y - w.Y*d2.X) / denom
	u := (w.X*d1.Y - w.Y*d1.X) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, 0, false
	}
	return p1.Add(d1.Scale(t)), t, true
}

// PolylineDistance returns the smallest distance from p to the polyline.
func PolylineDistance(p Point, pts []Point, closed bool) float64 {
	if len(pts) == 0 {
		return math.Inf(1)
	}
	if len(pts) == 1 {
		return p.Dist(pts[0])
	}
	best := math.Inf(1)
	for i := 0; i+1 < len(pts); i++ {
		best = math.Min(best, DistanceToSegment(p, pts[i], pts[i+1]))
	}
	if closed {
		best = math.Min(best, DistanceToSegment(p, pts[len(pts)-1], pts[0]))
	}
	return best
}

// PolygonContains reports whether p lies inside the polygon using the
// even-odd rule.
func PolygonContains(pts []Point, p Point) bool {
	inside := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// ChopPolyline intersects the ray from origin through toward with the
// polyline and returns the intersection nearest to toward. ok is false if
// the ray misses.
func ChopPolyline(pts []Point, closed bool, origin, toward Point) (Point, bool) {
	dir := toward.Sub(origin)
	if dir.Len() == 0 || len(pts) < 2 {
		return Point{}, false
	}
	// Extend the ray well past the polyline.
	span := 0.0
	for _, q := range pts {
		span = math.Max(span, q.Dist(origin))
	}
	far := origin.Add(dir.Normalize().Scale(span*2 + dir.Len() + 1))

	best, found := Point{}, false
	bestD := math.Inf(1)
	test := func(a, b Point) {
		if hit, _, ok := SegmentIntersection(origin, far, a, b); ok {
			if d := hit.DistSq(toward); d < bestD {
				best, bestD, found = hit, d, true
			}
		}
	}
	for i := 0; i+1 < len(pts); i++ {
		test(pts[i], pts[i+1])
	}
	if closed {
		test(pts[len(pts)-1], pts[0])
	}
	return best, found
}
