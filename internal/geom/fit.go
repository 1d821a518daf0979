package geom

import (
	"iter"
	"math"

	"honnef.co/go/curve"
)

// FitBezierPath fits a small number of cubic bezier segments through a
// dense trail of digitized points. maxError is the largest allowed distance
// between the trail and the fitted curve. Sharp corners in the trail are
// kept as corner nodes.
//
// Each run between corners is first interpolated by a Catmull-Rom spline,
// which is smooth, and then simplified.
func FitBezierPath(points []Point, maxError float64) BezierPath {
	pts := reduceNoise(points, 1)
	var b BezierPath
	if len(pts) < 3 {
		for _, p := range pts {
			b.Nodes = append(b.Nodes, NewNode(p))
		}
		return b
	}
	if maxError <= 0 {
		maxError = 1
	}

	opts := curve.DefaultSimplifyOptions
	opts.OptLevel = curve.Optimized
	corners := splitAtCorners(pts, cornerDegrees)
	for i := 0; i+1 < len(corners); i++ {
		run := pts[corners[i] : corners[i+1]+1]
		appendElements(&b, curve.Simplify(catmullRom(run), maxError, opts))
	}
	return b
}

// cornerDegrees is the turn above which a trail point is kept as a corner.
const cornerDegrees = 80

// catmullRom yields the uniform Catmull-Rom spline through pts as cubics.
func catmullRom(pts []Point) iter.Seq[curve.PathElement] {
	return func(yield func(curve.PathElement) bool) {
		if !yield(curve.MoveTo(toCurve(pts[0]))) {
			return
		}
		n := len(pts)
		if n == 2 {
			yield(curve.LineTo(toCurve(pts[1])))
			return
		}
		for i := 0; i+1 < n; i++ {
			p0, p1, p2, p3 := pts[max(i-1, 0)], pts[i], pts[i+1], pts[min(i+2, n-1)]
			c1 := p1.Add(p2.Sub(p0).Scale(1.0 / 6))
			c2 := p2.Sub(p3.Sub(p1).Scale(1.0 / 6))
			if !yield(curve.CubicTo(toCurve(c1), toCurve(c2), toCurve(p2))) {
				return
			}
		}
	}
}

// reduceNoise drops points closer than minDist to the previously kept one.
// The final point is always kept.
func reduceNoise(points []Point, minDist float64) []Point {
	if len(points) == 0 {
		return nil
	}
	out := []Point{points[0]}
	for _, p := range points[1:] {
		if p.Dist(out[len(out)-1]) >= minDist {
			out = append(out, p)
		}
	}
	last := points[len(points)-1]
	if out[len(out)-1] != last {
		if len(out) > 1 && out[len(out)-1].Dist(last) < minDist {
			out[len(out)-1] = last
		} else {
			out = append(out, last)
		}
	}
	return out
}

// splitAtCorners returns the indices of the trail ends and of every point
// where the direction turns by more than maxDegrees.
func splitAtCorners(pts []Point, maxDegrees float64) []int {
	idx := []int{0}
	limit := math.Cos(maxDegrees * math.Pi / 180)
	for i := 1; i+1 < len(pts); i++ {
		a := pts[i].Sub(pts[i-1]).Normalize()
		b := pts[i+1].Sub(pts[i]).Normalize()
		if a.Dot(b) < limit {
			idx = append(idx, i)
		}
	}
	return append(idx, len(pts)-1)
}
