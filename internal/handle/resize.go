package handle

import (
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// RelativeLocator places a point relative to the owner bounds, (0,0) being
// the top-left and (1,1) the bottom-right corner.
type RelativeLocator struct {
	RX, RY float64
}

func (l RelativeLocator) Locate(f figure.Figure) geom.Point {
	r := f.Bounds()
	return geom.Pt(r.X+r.Width*l.RX, r.Y+r.Height*l.RY)
}

var resizeCursors = map[RelativeLocator]string{
	{0, 0}: "nw-resize", {0.5, 0}: "n-resize", {1, 0}: "ne-resize",
	{1, 0.5}: "e-resize", {1, 1}: "se-resize", {0.5, 1}: "s-resize",
	{0, 1}: "sw-resize", {0, 0.5}: "w-resize",
}

// Resize drags one corner or edge of the owner bounds.
type Resize struct {
	owner   figure.Figure
	locator RelativeLocator
	host    Host

	before    []figure.Geometry
	start     geom.Rect
	startDrag geom.Point
	active    bool
}

// ResizeHandles returns the four corner and four edge handles of f.
func ResizeHandles(f figure.Figure, host Host) []Handle {
	locs := []RelativeLocator{{0, 0}, {0.5, 0}, {1, 0}, {1, 0.5}, {1, 1}, {0.5, 1}, {0, 1}, {0, 0.5}}
	hs := make([]Handle, len(locs))
	for i, l := range locs {
		hs[i] = &Resize{owner: f, locator: l, host: host}
	}
	return hs
}

func (h *Resize) Owner() figure.Figure       { return h.owner }
func (h *Resize) Locator() RelativeLocator   { return h.locator }
func (h *Resize) Cursor() string             { return resizeCursors[h.locator] }
func (h *Resize) Contains(p geom.Point) bool { return h.Bounds().Contains(p) }

func (h *Resize) Bounds() geom.Rect {
	return squareAt(h.locator.Locate(h.owner), h.host.HandleSize())
}

func (h *Resize) Draw(s figure.Surface, hover bool) {
	s.DrawPath(geom.RectPath(h.Bounds()), paintFor(hover))
}

func (h *Resize) Start(p geom.Point, _ input.Modifiers) {
	h.before = undo.SnapshotGeometry([]figure.Figure{h.owner})
	h.start = h.owner.Bounds()
	h.startDrag = p
	h.active = true
}

// Step moves the dragged edges by the pointer delta. The opposite edges
// stay put, and the dragged ones stop at the minimum size from them.
func (h *Resize) Step(p geom.Point, mods input.Modifiers) {
	if !h.active || orphaned(h.owner) {
		return
	}
	d := p.Sub(h.startDrag)
	r := h.start
	minX, minY, maxX, maxY := r.X, r.Y, r.MaxX(), r.MaxY()
	switch h.locator.RX {
	case 0:
		minX += d.X
	case 1:
		maxX += d.X
	}
	switch h.locator.RY {
	case 0:
		minY += d.Y
	case 1:
		maxY += d.Y
	}
	if mods.Has(input.Shift) && r.Width > 0 && r.Height > 0 && h.locator.RX != 0.5 && h.locator.RY != 0.5 {
		minX, minY, maxX, maxY = keepAspect(r, h.locator, minX, minY, maxX, maxY)
	}
	size := h.host.MinSize()
	switch h.locator.RX {
	case 0:
		minX = min(minX, maxX-size)
	case 1:
		maxX = max(maxX, minX+size)
	}
	switch h.locator.RY {
	case 0:
		minY = min(minY, maxY-size)
	case 1:
		maxY = max(maxY, minY+size)
	}
	h.owner.SetBounds(geom.Pt(minX, minY), geom.Pt(maxX, maxY))
}

// keepAspect scales the dragged corner so the original proportions hold.
func keepAspect(r geom.Rect, l RelativeLocator, minX, minY, maxX, maxY float64) (float64, float64, float64, float64) {
	s := max((maxX-minX)/r.Width, (maxY-minY)/r.Height)
	w, h := r.Width*s, r.Height*s
	if l.RX == 0 {
		minX = maxX - w
	} else {
		maxX = minX + w
	}
	if l.RY == 0 {
		minY = maxY - h
	} else {
		maxY = minY + h
	}
	return minX, minY, maxX, maxY
}

func (h *Resize) End(p geom.Point, mods input.Modifiers) undo.Activity {
	if !h.active {
		return nil
	}
	h.Step(p, mods)
	h.active = false
	if orphaned(h.owner) || h.owner.Bounds() == h.start {
		return nil
	}
	return undo.NewGeometryEdit("Resize", []figure.Figure{h.owner}, h.before)
}

func (h *Resize) Cancel() {
	if !h.active {
		return
	}
	h.active = false
	if !orphaned(h.owner) {
		h.owner.RestoreGeometry(h.before[0])
	}
}

func (h *Resize) CombinableWith(o Handle) bool {
	r, ok := o.(*Resize)
	return ok && r.locator == h.locator
}

// Move translates its owner. Text figures use it at their corners.
type Move struct {
	owner   figure.Figure
	locator RelativeLocator
	host    Host

	before []figure.Geometry
	last   geom.Point
	moved  bool
	active bool
}

// MoveHandles returns move handles at the four corners of f.
func MoveHandles(f figure.Figure, host Host) []Handle {
	locs := []RelativeLocator{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	hs := make([]Handle, len(locs))
	for i, l := range locs {
		hs[i] = &Move{owner: f, locator: l, host: host}
	}
	return hs
}

func (h *Move) Owner() figure.Figure       { return h.owner }
func (h *Move) Cursor() string             { return "move" }
func (h *Move) Contains(p geom.Point) bool { return h.Bounds().Contains(p) }

func (h *Move) Bounds() geom.Rect {
	return squareAt(h.locator.Locate(h.owner), h.host.HandleSize())
}

func (h *Move) Draw(s figure.Surface, hover bool) {
	s.DrawPath(geom.EllipsePath(h.Bounds()), paintFor(hover))
}

func (h *Move) Start(p geom.Point, _ input.Modifiers) {
	h.before = undo.SnapshotGeometry([]figure.Figure{h.owner})
	h.last = p
	h.moved = false
	h.active = true
}

func (h *Move) Step(p geom.Point, _ input.Modifiers) {
	if !h.active || orphaned(h.owner) || p == h.last {
		return
	}
	d := p.Sub(h.last)
	h.owner.Transform(geom.Translate(d.X, d.Y))
	h.last = p
	h.moved = true
}

func (h *Move) End(p geom.Point, mods input.Modifiers) undo.Activity {
	if !h.active {
		return nil
	}
	h.Step(p, mods)
	h.active = false
	if !h.moved || orphaned(h.owner) {
		return nil
	}
	return undo.NewGeometryEdit("Move", []figure.Figure{h.owner}, h.before)
}

func (h *Move) Cancel() {
	if !h.active {
		return
	}
	h.active = false
	if !orphaned(h.owner) {
		h.owner.RestoreGeometry(h.before[0])
	}
}

func (h *Move) CombinableWith(o Handle) bool {
	_, ok := o.(*Move)
	return ok
}
