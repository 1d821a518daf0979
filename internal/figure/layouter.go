package figure

import (
	"fmt"
	"math"

	"github.com/inamate/figura/internal/geom"
)

// Layouter arranges the children of a composite starting at anchor and
// returns the bounds the composite needs. lead is the requested lower right
// corner; layouts never shrink below their content.
type Layouter interface {
	Layout(c Composite, anchor, lead geom.Point) geom.Rect
}

type Insets struct {
	Top, Left, Bottom, Right float64
}

// VerticalLayouter stacks children top to bottom and stretches them to a
// common width.
type VerticalLayouter struct {
	Insets Insets
	Gap    float64
}

func (l VerticalLayouter) Layout(c Composite, anchor, lead geom.Point) geom.Rect {
	children := c.Children()
	width := lead.X - anchor.X - l.Insets.Left - l.Insets.Right
	for _, ch := range children {
		width = math.Max(width, ch.Bounds().Width)
	}
	width = math.Max(width, 0)

	x := anchor.X + l.Insets.Left
	y := anchor.Y + l.Insets.Top
	for i, ch := range children {
		if i > 0 {
			y += l.Gap
		}
		h := ch.Bounds().Height
		ch.SetBounds(geom.Pt(x, y), geom.Pt(x+width, y+h))
		y += h
	}
	bottom := math.Max(y+l.Insets.Bottom, lead.Y)
	return geom.Rect{X: anchor.X, Y: anchor.Y, Width: width + l.Insets.Left + l.Insets.Right, Height: bottom - anchor.Y}
}

// HorizontalLayouter places children left to right and stretches them to a
// common height.
type HorizontalLayouter struct {
	Insets Insets
	Gap    float64
}

func (l HorizontalLayouter) Layout(c Composite, anchor, lead geom.Point) geom.Rect {
	children := c.Children()
	height := lead.Y - anchor.Y - l.Insets.Top - l.Insets.Bottom
	for _, ch := range children {
		height = math.Max(height, ch.Bounds().Height)
	}
	height = math.Max(height, 0)

	x := anchor.X + l.Insets.Left
	y := anchor.Y + l.Insets.Top
	for i, ch := range children {
		if i > 0 {
			x += l.Gap
		}
		w := ch.Bounds().Width
		ch.SetBounds(geom.Pt(x, y), geom.Pt(x+w, y+height))
		x += w
	}
	right := math.Max(x+l.Insets.Right, lead.X)
	return geom.Rect{X: anchor.X, Y: anchor.Y, Width: right - anchor.X, Height: height + l.Insets.Top + l.Insets.Bottom}
}

// Layouter kinds used for persistence.
const (
	LayoutVertical   = "vertical"
	LayoutHorizontal = "horizontal"
)

func layouterKind(l Layouter) string {
	switch l.(type) {
	case HorizontalLayouter, *HorizontalLayouter:
		return LayoutHorizontal
	case VerticalLayouter, *VerticalLayouter:
		return LayoutVertical
	default:
		return ""
	}
}

// DefaultInsets pad the children of restored composites.
var DefaultInsets = Insets{Top: 4, Left: 4, Bottom: 4, Right: 4}

// RestoreLayouter returns a layouter for a persisted kind. The empty kind
// means no layouter.
func RestoreLayouter(kind string) (Layouter, error) {
	switch kind {
	case "":
		return nil, nil
	case LayoutVertical:
		return VerticalLayouter{Insets: DefaultInsets, Gap: 2}, nil
	case LayoutHorizontal:
		return HorizontalLayouter{Insets: DefaultInsets, Gap: 2}, nil
	default:
		return nil, fmt.Errorf("unknown layouter: %s", kind)
	}
}
