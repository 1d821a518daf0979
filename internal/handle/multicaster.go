package handle

import (
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// Multicaster drives several combinable handles with one gesture and
// merges their edits into a single undo step.
type Multicaster struct {
	handles []Handle
}

// NewMulticaster combines primary with every other handle that can follow
// it. primary is always first.
func NewMulticaster(primary Handle, others []Handle) *Multicaster {
	m := &Multicaster{handles: []Handle{primary}}
	for _, h := range others {
		if h != primary && primary.CombinableWith(h) && h.CombinableWith(primary) {
			m.handles = append(m.handles, h)
		}
	}
	return m
}

func (m *Multicaster) Handles() []Handle { return m.handles }

func (m *Multicaster) Start(p geom.Point, mods input.Modifiers) {
	for _, h := range m.handles {
		h.Start(p, mods)
	}
}

func (m *Multicaster) Step(p geom.Point, mods input.Modifiers) {
	for _, h := range m.handles {
		h.Step(p, mods)
	}
}

// End finishes every handle. A single edit is returned as is; several are
// wrapped in one compound named after the first.
func (m *Multicaster) End(p geom.Point, mods input.Modifiers) undo.Activity {
	var edits []undo.Activity
	for _, h := range m.handles {
		if a := h.End(p, mods); a != nil {
			edits = append(edits, a)
		}
	}
	switch len(edits) {
	case 0:
		return nil
	case 1:
		return edits[0]
	default:
		return undo.NewCompound(edits[0].Name(), edits...)
	}
}

func (m *Multicaster) Cancel() {
	for i := len(m.handles) - 1; i >= 0; i-- {
		m.handles[i].Cancel()
	}
}

// Owners lists the figures the gesture manipulates.
func (m *Multicaster) Owners() []figure.Figure {
	out := make([]figure.Figure, 0, len(m.handles))
	for _, h := range m.handles {
		out = append(out, h.Owner())
	}
	return out
}
