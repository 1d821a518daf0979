// Package undo records reversible edits and replays them.
package undo

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrOrphaned is returned when an edit targets a figure that no longer
	// belongs to a drawing.
	ErrOrphaned = errors.New("edit target is no longer in a drawing")
)

// Activity is one reversible edit.
type Activity interface {
	Name() string
	Undo() error
	Redo() error
}

// Manager keeps the done and undone stacks. A failing replay drops the
// activity instead of moving it to the other stack.
type Manager struct {
	done     []Activity
	undone   []Activity
	limit    int
	onChange []func()
}

// NewManager keeps at most limit activities; limit <= 0 means unbounded.
func NewManager(limit int) *Manager {
	return &Manager{limit: limit}
}

func (m *Manager) Add(a Activity) {
	if a == nil {
		return
	}
	m.done = append(m.done, a)
	if m.limit > 0 && len(m.done) > m.limit {
		m.done = append([]Activity(nil), m.done[len(m.done)-m.limit:]...)
	}
	m.undone = nil
	m.changed()
}

func (m *Manager) CanUndo() bool { return len(m.done) > 0 }
func (m *Manager) CanRedo() bool { return len(m.undone) > 0 }

// UndoName names the activity Undo would revert, or "".
func (m *Manager) UndoName() string {
	if len(m.done) == 0 {
		return ""
	}
	return m.done[len(m.done)-1].Name()
}

func (m *Manager) RedoName() string {
	if len(m.undone) == 0 {
		return ""
	}
	return m.undone[len(m.undone)-1].Name()
}

func (m *Manager) Undo() error {
	if len(m.done) == 0 {
		return ErrNothingToUndo
	}
	a := m.done[len(m.done)-1]
	m.done = m.done[:len(m.done)-1]
	defer m.changed()
	if err := a.Undo(); err != nil {
		return fmt.Errorf("undo %s: %w", a.Name(), err)
	}
	m.undone = append(m.undone, a)
	return nil
}

func (m *Manager) Redo() error {
	if len(m.undone) == 0 {
		return ErrNothingToRedo
	}
	a := m.undone[len(m.undone)-1]
	m.undone = m.undone[:len(m.undone)-1]
	defer m.changed()
	if err := a.Redo(); err != nil {
		return fmt.Errorf("redo %s: %w", a.Name(), err)
	}
	m.done = append(m.done, a)
	return nil
}

func (m *Manager) Clear() {
	m.done, m.undone = nil, nil
	m.changed()
}

// OnChange registers fn to run whenever the stacks change.
func (m *Manager) OnChange(fn func()) {
	m.onChange = append(m.onChange, fn)
}

func (m *Manager) changed() {
	for _, fn := range m.onChange {
		fn()
	}
}

// Compound groups activities that undo and redo as one.
type Compound struct {
	name  string
	edits []Activity
}

func NewCompound(name string, edits ...Activity) *Compound {
	c := &Compound{name: name}
	for _, e := range edits {
		c.Append(e)
	}
	return c
}

func (c *Compound) Append(a Activity) {
	if a != nil {
		c.edits = append(c.edits, a)
	}
}

func (c *Compound) Len() int     { return len(c.edits) }
func (c *Compound) Name() string { return c.name }

// Undo reverts the parts in reverse order. If one fails, the parts already
// reverted are redone so the compound is left as it was.
func (c *Compound) Undo() error {
	for i := len(c.edits) - 1; i >= 0; i-- {
		if err := c.edits[i].Undo(); err != nil {
			for _, e := range c.edits[i+1:] {
				if rerr := e.Redo(); rerr != nil {
					slog.Debug("compound rollback failed", "edit", e.Name(), "error", rerr)
				}
			}
			return err
		}
	}
	return nil
}

// Redo reapplies the parts in order, rolling back the applied ones on
// failure.
func (c *Compound) Redo() error {
	for i, e := range c.edits {
		if err := e.Redo(); err != nil {
			for j := i - 1; j >= 0; j-- {
				if uerr := c.edits[j].Undo(); uerr != nil {
					slog.Debug("compound rollback failed", "edit", c.edits[j].Name(), "error", uerr)
				}
			}
			return err
		}
	}
	return nil
}

// Func adapts a pair of closures to an Activity.
type Func struct {
	Label    string
	UndoFunc func() error
	RedoFunc func() error
}

func (f Func) Name() string { return f.Label }
func (f Func) Undo() error  { return f.UndoFunc() }
func (f Func) Redo() error  { return f.RedoFunc() }
