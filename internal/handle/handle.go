// Package handle provides the manipulators that turn pointer gestures on a
// selected figure into undoable geometric edits.
package handle

import (
	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// Host is what handles need from the view that shows them.
type Host interface {
	Drawing() *drawing.Drawing
	// HandleSize is the side of a handle square in drawing units.
	HandleSize() float64
	// Tolerance is the hit slop in drawing units.
	Tolerance() float64
	// MinSize is the smallest width or height a resize may leave.
	MinSize() float64
	ShowConnectors(f figure.Connectable)
	HideConnectors()
}

// Handle manipulates one figure. A gesture is Start, any number of Steps,
// then End or Cancel.
type Handle interface {
	Owner() figure.Figure
	Bounds() geom.Rect
	Contains(p geom.Point) bool
	Draw(s figure.Surface, hover bool)
	Cursor() string

	Start(p geom.Point, mods input.Modifiers)
	Step(p geom.Point, mods input.Modifiers)
	// End finishes the gesture and returns its edit, or nil when nothing
	// changed or the gesture was aborted.
	End(p geom.Point, mods input.Modifiers) undo.Activity
	// Cancel restores the state captured at Start.
	Cancel()
	// CombinableWith reports whether one gesture may drive both handles.
	CombinableWith(h Handle) bool
}

// Clicker handles react to double clicks, for example to remove a node.
type Clicker interface {
	Handle
	DoubleClick(p geom.Point) undo.Activity
}

var (
	activePaint = figure.Paint{Fill: "#ffffff", Stroke: "#2f80ed", StrokeWidth: 1, Opacity: 1}
	hoverPaint  = figure.Paint{Fill: figure.NoColor, Stroke: "#9bbcf0", StrokeWidth: 1, Opacity: 1}
	nodePaint   = figure.Paint{Fill: "#2f80ed", Stroke: "#ffffff", StrokeWidth: 1, Opacity: 1}
)

func paintFor(hover bool) figure.Paint {
	if hover {
		return hoverPaint
	}
	return activePaint
}

func squareAt(p geom.Point, size float64) geom.Rect {
	return geom.Rect{X: p.X - size/2, Y: p.Y - size/2, Width: size, Height: size}
}

// orphaned reports whether the owner left the drawing during a gesture.
func orphaned(f figure.Figure) bool { return f.Owner() == "" }

// For builds the handles for f based on the capabilities it offers.
func For(f figure.Figure, host Host) []Handle {
	switch x := f.(type) {
	case figure.ConnectionFigure:
		hs := []Handle{NewConnectionEnd(x, true, host), NewConnectionEnd(x, false, host)}
		if x.Liner() == nil {
			if ne, ok := f.(figure.NodeEditable); ok {
				for i := 1; i < ne.NodeCount()-1; i++ {
					hs = append(hs, NewBezierNode(ne, i, host))
				}
			}
		}
		return hs
	case figure.NodeEditable:
		var hs []Handle
		for i := 0; i < x.NodeCount(); i++ {
			hs = append(hs, NewBezierNode(x, i, host))
			n := x.Node(i)
			if n.Mask&geom.C1Mask != 0 {
				hs = append(hs, NewBezierControl(x, i, 1, host))
			}
			if n.Mask&geom.C2Mask != 0 {
				hs = append(hs, NewBezierControl(x, i, 2, host))
			}
		}
		return hs
	case figure.TextHolder:
		return MoveHandles(f, host)
	default:
		return ResizeHandles(f, host)
	}
}
