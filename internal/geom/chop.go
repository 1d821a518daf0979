package geom

import "math"

// ChopRect returns the point where the ray from the centre of r towards p
// leaves r. If p is the centre, the centre is returned.
func ChopRect(r Rect, p Point) Point {
	c := r.Center()
	d := p.Sub(c)
	if d.X == 0 && d.Y == 0 {
		return c
	}
	s := math.Inf(1)
	if d.X != 0 {
		s = math.Min(s, (r.Width/2)/math.Abs(d.X))
	}
	if d.Y != 0 {
		s = math.Min(s, (r.Height/2)/math.Abs(d.Y))
	}
	return c.Add(d.Scale(s))
}

// ChopEllipse returns the point where the ray from the centre of the
// ellipse inscribed in r towards p crosses the ellipse.
func ChopEllipse(r Rect, p Point) Point {
	c := r.Center()
	d := p.Sub(c)
	rx, ry := r.Width/2, r.Height/2
	if (d.X == 0 && d.Y == 0) || rx == 0 || ry == 0 {
		return ChopRect(r, p)
	}
	s := 1 / math.Sqrt((d.X*d.X)/(rx*rx)+(d.Y*d.Y)/(ry*ry))
	return c.Add(d.Scale(s))
}

// ChopRoundRect chops against a rectangle with rounded corners.
func ChopRoundRect(r Rect, radius float64, p Point) Point {
	if radius <= 0 {
		return ChopRect(r, p)
	}
	sps := RoundRectPath(r, radius).Flatten(flattenTolerance)
	if len(sps) == 0 {
		return ChopRect(r, p)
	}
	if hit, ok := ChopPolyline(sps[0].Points, true, r.Center(), p); ok {
		return hit
	}
	return ChopRect(r, p)
}

// DistanceToEllipse approximates the distance of p from the outline of the
// ellipse inscribed in r.
func DistanceToEllipse(r Rect, p Point) float64 {
	return p.Dist(ChopEllipse(r, p))
}

// DistanceToRect returns the distance of p from the outline of r.
func DistanceToRect(r Rect, p Point) float64 {
	pts := []Point{r.Min(), {r.MaxX(), r.Y}, r.Max(), {r.X, r.MaxY()}}
	return PolylineDistance(p, pts, true)
}
