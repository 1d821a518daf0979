package figure

import "github.com/inamate/figura/internal/geom"

// box is a rectangle in local coordinates with an optional transform.
// Axis-aligned transforms are folded into the rectangle; anything else is
// kept so rotated shapes stay exact.
type box struct {
	rect  geom.Rect
	xform *geom.Matrix2D
}

func (b *box) bounds() geom.Rect {
	if b.xform == nil {
		return b.rect
	}
	return b.xform.TransformRect(b.rect)
}

func (b *box) setBounds(anchor, lead geom.Point) {
	if b.xform != nil {
		if inv, ok := b.xform.Invert(); ok {
			anchor, lead = inv.Apply(anchor), inv.Apply(lead)
		}
	}
	b.rect = geom.RectFromPoints(anchor, lead)
}

func (b *box) transform(m geom.Matrix2D) {
	if b.xform == nil && m.IsAxisAligned() {
		b.rect = m.TransformRect(b.rect)
		return
	}
	if b.xform == nil {
		b.xform = &m
		return
	}
	x := m.Multiply(*b.xform)
	b.xform = &x
}

// toLocal maps p and a tolerance into the untransformed frame.
func (b *box) toLocal(p geom.Point, tolerance float64) (geom.Point, float64) {
	if b.xform == nil {
		return p, tolerance
	}
	inv, ok := b.xform.Invert()
	if !ok {
		return p, tolerance
	}
	if s := b.xform.ScaleFactor(); s > 0 {
		tolerance /= s
	}
	return inv.Apply(p), tolerance
}

func (b *box) toWorld(p geom.Point) geom.Point {
	if b.xform == nil {
		return p
	}
	return b.xform.Apply(p)
}

// chop maps from into local space, chops there and maps the hit back.
func (b *box) chop(from geom.Point, fn func(geom.Rect, geom.Point) geom.Point) geom.Point {
	local, _ := b.toLocal(from, 0)
	return b.toWorld(fn(b.rect, local))
}

func (b *box) path(local geom.Path) geom.Path {
	if b.xform == nil {
		return local
	}
	return local.Transform(*b.xform)
}

func (b *box) geometry() Geometry {
	g := Geometry{Bounds: b.rect}
	if b.xform != nil {
		x := *b.xform
		g.Transform = &x
	}
	return g
}

func (b *box) restore(g Geometry) {
	b.rect = g.Bounds
	b.xform = nil
	if g.Transform != nil {
		x := *g.Transform
		b.xform = &x
	}
}

func (b box) clone() box {
	c := box{rect: b.rect}
	if b.xform != nil {
		x := *b.xform
		c.xform = &x
	}
	return c
}
