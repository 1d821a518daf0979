package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestRectFromPointsNormalizes(t *testing.T) {
	r := RectFromPoints(Pt(60, 40), Pt(10, 10))
	assert.Equal(t, Rect{X: 10, Y: 10, Width: 50, Height: 30}, r)
}

func TestRectUnionKeepsDegenerate(t *testing.T) {
	line := Rect{X: 5, Y: 5, Width: 10, Height: 0}
	r := Rect{}.Union(line).Union(Rect{X: 0, Y: 20, Width: 1, Height: 1})
	assert.Equal(t, Rect{X: 0, Y: 5, Width: 15, Height: 16}, r)
}

func TestRectOutcode(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	assert.Equal(t, OutLeft, r.Outcode(Pt(-1, 20)))
	assert.Equal(t, OutRight|OutBottom, r.Outcode(Pt(101, 51)))
	assert.Equal(t, OutRight, r.Outcode(Pt(100, 25)))
	assert.Equal(t, OutTop, r.Outcode(Pt(50, 0)))
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(10, 5).Multiply(RotateAbout(Pt(3, 4), 0.7)).Multiply(Scale(2, 3))
	inv, ok := m.Invert()
	require.True(t, ok)
	p := Pt(12.5, -7)
	back := inv.Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, eps)
	assert.InDelta(t, p.Y, back.Y, eps)

	_, ok = Scale(0, 1).Invert()
	assert.False(t, ok)
}

func TestMatrixTransformRect(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	got := Rotate(math.Pi / 2).TransformRect(r)
	assert.InDelta(t, -10, got.X, eps)
	assert.InDelta(t, 10, got.Width, eps)
	assert.True(t, Scale(2, 3).IsAxisAligned())
	assert.False(t, Rotate(0.3).IsAxisAligned())
}

func TestChopRectLiesOnOutline(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 80, Height: 40}
	for _, p := range []Point{{200, 40}, {-50, -50}, {50, 300}, {51, 39}, {10, 20}} {
		c := ChopRect(r, p)
		assert.InDelta(t, 0, DistanceToRect(r, c), 1e-6, "chop of %v", p)
	}
	assert.Equal(t, r.Center(), ChopRect(r, r.Center()))
}

func TestChopEllipseLiesOnOutline(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 60}
	c := r.Center()
	for _, p := range []Point{{300, 30}, {50, -100}, {-20, 80}} {
		q := ChopEllipse(r, p)
		v := (q.X-c.X)*(q.X-c.X)/(50*50) + (q.Y-c.Y)*(q.Y-c.Y)/(30*30)
		assert.InDelta(t, 1, v, 1e-9)
	}
}

func TestChopRoundRect(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	q := ChopRoundRect(r, 20, Pt(200, 50))
	assert.InDelta(t, 100, q.X, 1e-6)
	assert.InDelta(t, 50, q.Y, 1e-6)

	corner := ChopRoundRect(r, 20, Pt(200, 200))
	assert.Less(t, corner.X, 100.0)
}

func TestPathContains(t *testing.T) {
	p := EllipsePath(Rect{X: 0, Y: 0, Width: 100, Height: 50})
	assert.True(t, p.Contains(Pt(50, 25)))
	assert.False(t, p.Contains(Pt(2, 2)))
	assert.True(t, p.OutlineContains(Pt(100, 25), 1))
	assert.False(t, p.OutlineContains(Pt(50, 25), 1))
}

func TestFlattenFollowsCurveAndSubpaths(t *testing.T) {
	p := EllipsePath(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	r := RectPath(Rect{X: 200, Y: 0, Width: 10, Height: 10})
	p.Cmds = append(p.Cmds, r.Cmds...)

	sps := p.Flatten(0.1)
	require.Len(t, sps, 2)
	assert.True(t, sps[0].Closed)
	assert.Greater(t, len(sps[0].Points), 16)
	for _, pt := range sps[0].Points {
		assert.InDelta(t, 50, pt.Dist(Pt(50, 50)), 0.5)
	}
	assert.Equal(t, Pt(200, 0), sps[1].Points[0])
}

func TestBezierPathOutline(t *testing.T) {
	b := BezierPath{Nodes: []BezierNode{NewNode(Pt(0, 0)), NewNode(Pt(100, 0))}}
	assert.True(t, b.OutlineContains(Pt(50, 2), 3))
	assert.False(t, b.OutlineContains(Pt(50, 5), 3))
	assert.False(t, b.Contains(Pt(50, 0)))
	assert.Equal(t, 0, b.FindSegment(Pt(30, 1), 2))
	assert.Equal(t, 1, b.FindNode(Pt(99, 1), 2))
}

func TestBezierPathClosedContains(t *testing.T) {
	b := BezierPath{Closed: true, Nodes: []BezierNode{
		NewNode(Pt(0, 0)), NewNode(Pt(10, 0)), NewNode(Pt(10, 10)),
	}}
	assert.True(t, b.Contains(Pt(8, 2)))
	assert.False(t, b.Contains(Pt(2, 8)))
	hit, ok := b.Chop(Pt(7, 3), Pt(20, 3))
	require.True(t, ok)
	assert.InDelta(t, 10, hit.X, 1e-9)
}

func TestBezierCloneIsIndependent(t *testing.T) {
	b := BezierPath{Nodes: []BezierNode{NewNode(Pt(0, 0)), NewNode(Pt(5, 5))}}
	c := b.Clone()
	c.Nodes[0].MoveTo(Pt(100, 100))
	assert.Equal(t, Pt(0, 0), b.Nodes[0].Point())
}

func TestFitBezierPathKeepsEnds(t *testing.T) {
	var trail []Point
	for i := 0; i <= 100; i++ {
		x := float64(i)
		trail = append(trail, Pt(x, 20*math.Sin(x/16)))
	}
	b := FitBezierPath(trail, 1.5)
	require.GreaterOrEqual(t, b.Len(), 2)
	assert.Less(t, b.Len(), 20)
	assert.Equal(t, trail[0], b.Nodes[0].Point())
	assert.Equal(t, trail[len(trail)-1], b.Nodes[b.Len()-1].Point())
	for _, p := range trail {
		assert.True(t, b.OutlineContains(p, 3), "trail point %v too far from fit", p)
	}
}

func TestFitBezierPathKeepsCorners(t *testing.T) {
	var trail []Point
	for i := 0; i <= 50; i++ {
		trail = append(trail, Pt(float64(i), 0))
	}
	for i := 1; i <= 50; i++ {
		trail = append(trail, Pt(50, float64(i)))
	}
	b := FitBezierPath(trail, 1)
	assert.GreaterOrEqual(t, b.FindNode(Pt(50, 0), 0.5), 0)
}

func TestSegmentIntersection(t *testing.T) {
	p, tt, ok := SegmentIntersection(Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0))
	require.True(t, ok)
	assert.InDelta(t, 0.5, tt, eps)
	assert.Equal(t, Pt(5, 5), p)

	_, _, ok = SegmentIntersection(Pt(0, 0), Pt(1, 0), Pt(0, 1), Pt(1, 1))
	assert.False(t, ok)
}
