package handle

import (
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// BezierNode drags one node of a path together with its control points.
type BezierNode struct {
	owner figure.NodeEditable
	index int
	host  Host

	before []figure.Geometry
	start  geom.Point
	origin geom.BezierNode
	active bool
}

func NewBezierNode(f figure.NodeEditable, index int, host Host) *BezierNode {
	return &BezierNode{owner: f, index: index, host: host}
}

func (h *BezierNode) Owner() figure.Figure { return h.owner }
func (h *BezierNode) Index() int           { return h.index }
func (h *BezierNode) Cursor() string       { return "move" }

func (h *BezierNode) valid() bool {
	return h.index < h.owner.NodeCount()
}

func (h *BezierNode) Bounds() geom.Rect {
	if !h.valid() {
		return geom.Rect{}
	}
	return squareAt(h.owner.Node(h.index).Point(), h.host.HandleSize())
}

func (h *BezierNode) Contains(p geom.Point) bool {
	return h.valid() && h.Bounds().Contains(p)
}

func (h *BezierNode) Draw(s figure.Surface, hover bool) {
	if !h.valid() {
		return
	}
	paint := nodePaint
	if hover {
		paint = hoverPaint
	}
	s.DrawPath(geom.RectPath(h.Bounds()), paint)
}

func (h *BezierNode) Start(p geom.Point, _ input.Modifiers) {
	if !h.valid() {
		return
	}
	h.before = undo.SnapshotGeometry([]figure.Figure{h.owner})
	h.start = p
	h.origin = h.owner.Node(h.index)
	h.active = true
}

func (h *BezierNode) Step(p geom.Point, _ input.Modifiers) {
	if !h.active || orphaned(h.owner) || !h.valid() {
		return
	}
	n := h.origin
	n.MoveTo(h.origin.Point().Add(p.Sub(h.start)))
	h.owner.SetNode(h.index, n)
}

func (h *BezierNode) End(p geom.Point, mods input.Modifiers) undo.Activity {
	if !h.active {
		return nil
	}
	h.Step(p, mods)
	h.active = false
	if orphaned(h.owner) || p == h.start {
		return nil
	}
	return undo.NewGeometryEdit("Move node", []figure.Figure{h.owner}, h.before)
}

func (h *BezierNode) Cancel() {
	if !h.active {
		return
	}
	h.active = false
	if !orphaned(h.owner) {
		h.owner.RestoreGeometry(h.before[0])
	}
}

func (h *BezierNode) CombinableWith(Handle) bool { return false }

// DoubleClick removes the node unless the path would become degenerate.
func (h *BezierNode) DoubleClick(geom.Point) undo.Activity {
	minNodes := 2
	if h.owner.IsClosed() {
		minNodes = 3
	}
	if !h.valid() || h.owner.NodeCount() <= minNodes {
		return nil
	}
	figs := []figure.Figure{h.owner}
	before := undo.SnapshotGeometry(figs)
	h.owner.RemoveNode(h.index)
	return undo.NewGeometryEdit("Remove node", figs, before)
}

// BezierControl drags the incoming (which == 1) or outgoing (which == 2)
// control point of a node.
type BezierControl struct {
	owner figure.NodeEditable
	index int
	which int
	host  Host

	before []figure.Geometry
	active bool
	moved  bool
}

func NewBezierControl(f figure.NodeEditable, index, which int, host Host) *BezierControl {
	return &BezierControl{owner: f, index: index, which: which, host: host}
}

func (h *BezierControl) Owner() figure.Figure { return h.owner }
func (h *BezierControl) Cursor() string       { return "crosshair" }

func (h *BezierControl) valid() bool {
	return h.index < h.owner.NodeCount()
}

func (h *BezierControl) Bounds() geom.Rect {
	if !h.valid() {
		return geom.Rect{}
	}
	return squareAt(h.owner.Node(h.index).C[h.which], h.host.HandleSize()*0.8)
}

func (h *BezierControl) Contains(p geom.Point) bool {
	return h.valid() && h.Bounds().Contains(p)
}

func (h *BezierControl) Draw(s figure.Surface, hover bool) {
	if !h.valid() {
		return
	}
	n := h.owner.Node(h.index)
	var stem geom.Path
	stem.MoveTo(n.Point())
	stem.LineTo(n.C[h.which])
	s.DrawPath(stem, hoverPaint)
	s.DrawPath(geom.EllipsePath(h.Bounds()), paintFor(hover))
}

func (h *BezierControl) Start(geom.Point, input.Modifiers) {
	if !h.valid() {
		return
	}
	h.before = undo.SnapshotGeometry([]figure.Figure{h.owner})
	h.active = true
	h.moved = false
}

// Step places the control point at p. With Alt held the opposite control
// point is left alone; otherwise it is mirrored to keep the node smooth.
func (h *BezierControl) Step(p geom.Point, mods input.Modifiers) {
	if !h.active || orphaned(h.owner) || !h.valid() {
		return
	}
	n := h.owner.Node(h.index)
	n.C[h.which] = p
	other := 3 - h.which
	if !mods.Has(input.Alt) && n.Mask&(1<<(other-1)) != 0 {
		n.C[other] = n.Point().Sub(p.Sub(n.Point()))
	}
	h.owner.SetNode(h.index, n)
	h.moved = true
}

func (h *BezierControl) End(p geom.Point, mods input.Modifiers) undo.Activity {
	if !h.active {
		return nil
	}
	h.Step(p, mods)
	h.active = false
	if orphaned(h.owner) || !h.moved {
		return nil
	}
	return undo.NewGeometryEdit("Move control point", []figure.Figure{h.owner}, h.before)
}

func (h *BezierControl) Cancel() {
	if !h.active {
		return
	}
	h.active = false
	if !orphaned(h.owner) {
		h.owner.RestoreGeometry(h.before[0])
	}
}

func (h *BezierControl) CombinableWith(Handle) bool { return false }
