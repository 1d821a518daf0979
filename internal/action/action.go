// Package action implements the commands that operate on a view's
// selection. Each command records exactly one undo activity.
package action

import (
	"errors"
	"fmt"
	"slices"

	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/undo"
)

var ErrEmptySelection = errors.New("selection is empty")

// Action names accepted by Perform.
const (
	Delete       = "delete"
	Duplicate    = "duplicate"
	BringToFront = "bring-to-front"
	SendToBack   = "send-to-back"
	Group        = "group"
	Ungroup      = "ungroup"
	SetAttribute = "set-attribute"
	SelectAll    = "select-all"
)

// Request is an action invocation.
type Request struct {
	Name      string `json:"name"`
	Attribute string `json:"attribute,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// Perform runs the named action on v's selection and records its activity.
func Perform(v *editor.View, r Request) error {
	ed := v.Editor()
	if ed != nil && ed.Busy() {
		return editor.ErrBusy
	}

	var (
		a   undo.Activity
		err error
	)
	switch r.Name {
	case Delete:
		a, err = DeleteSelection(v)
	case Duplicate:
		offset := editor.DefaultSettings().DuplicateOffset
		if ed != nil {
			offset = ed.Settings().DuplicateOffset
		}
		a, err = DuplicateSelection(v, geom.Pt(offset, offset))
	case BringToFront:
		a, err = BringSelectionToFront(v)
	case SendToBack:
		a, err = SendSelectionToBack(v)
	case Group:
		a, err = GroupSelection(v)
	case Ungroup:
		a, err = UngroupSelection(v)
	case SetAttribute:
		if r.Attribute == "" {
			return fmt.Errorf("%s: missing attribute", r.Name)
		}
		a, err = SetSelectionAttribute(v, r.Attribute, r.Value)
	case SelectAll:
		v.SelectAll(v.Drawing().Figures())
		return nil
	default:
		return fmt.Errorf("unknown action: %s", r.Name)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", r.Name, err)
	}
	if a != nil && ed != nil {
		ed.Record(a)
	}
	v.RefreshHandles()
	return nil
}

// zOrdered returns the selected top-level figures back to front.
func zOrdered(v *editor.View) []figure.Figure {
	d := v.Drawing()
	figs := slices.DeleteFunc(v.Selection(), func(f figure.Figure) bool { return !d.Contains(f) })
	slices.SortFunc(figs, func(a, b figure.Figure) int { return d.IndexOf(a) - d.IndexOf(b) })
	return figs
}

// DeleteSelection removes the selected figures. Connections attached to
// them freeze and are reattached by undo.
func DeleteSelection(v *editor.View) (undo.Activity, error) {
	figs := zOrdered(v)
	if len(figs) == 0 {
		return nil, ErrEmptySelection
	}
	return undo.RemoveFigures("Delete", v.Drawing(), figs)
}

// DuplicateSelection clones the selection, moves the clones by offset and
// selects them. Connections between duplicated figures are duplicated as
// connections between the clones.
func DuplicateSelection(v *editor.View, offset geom.Point) (undo.Activity, error) {
	figs := zOrdered(v)
	if len(figs) == 0 {
		return nil, ErrEmptySelection
	}
	clones := make(map[figure.Figure]figure.Figure, len(figs))
	var out []figure.Figure
	for _, f := range figs {
		c := f.Clone()
		clones[f] = c
		out = append(out, c)
	}
	m := geom.Translate(offset.X, offset.Y)
	for _, f := range figs {
		c := clones[f]
		c.Transform(m)
		if lc, ok := c.(*figure.LineConnection); ok {
			lc.Remap(f.(*figure.LineConnection), clones)
		}
	}
	d := v.Drawing()
	if err := d.AddAll(out); err != nil {
		return nil, err
	}
	v.ClearSelection()
	v.SelectAll(out)
	return undo.NewAddEdit("Duplicate", d, out...), nil
}

// BringSelectionToFront moves the selection above all other figures,
// keeping its relative order.
func BringSelectionToFront(v *editor.View) (undo.Activity, error) {
	figs := zOrdered(v)
	if len(figs) == 0 {
		return nil, ErrEmptySelection
	}
	d := v.Drawing()
	c := undo.NewCompound("Bring to front")
	for _, f := range figs {
		e, err := undo.MoveInZOrder("Bring to front", d, f, d.Len()-1)
		if err != nil {
			return nil, err
		}
		c.Append(e)
	}
	return c, nil
}

func SendSelectionToBack(v *editor.View) (undo.Activity, error) {
	figs := zOrdered(v)
	if len(figs) == 0 {
		return nil, ErrEmptySelection
	}
	d := v.Drawing()
	c := undo.NewCompound("Send to back")
	for i := len(figs) - 1; i >= 0; i-- {
		e, err := undo.MoveInZOrder("Send to back", d, figs[i], 0)
		if err != nil {
			return nil, err
		}
		c.Append(e)
	}
	return c, nil
}

// SetSelectionAttribute sets name on every selected figure. A nil value
// removes the attribute.
func SetSelectionAttribute(v *editor.View, name string, value any) (undo.Activity, error) {
	figs := v.Selection()
	if len(figs) == 0 {
		return nil, ErrEmptySelection
	}
	c := undo.NewCompound("Set " + name)
	for _, f := range figs {
		setDeep(c, f, name, value)
	}
	return c, nil
}

// setDeep sets the attribute on the leaves of groups.
func setDeep(c *undo.Compound, f figure.Figure, name string, value any) {
	if g, ok := f.(*figure.Group); ok {
		for _, ch := range g.Children() {
			setDeep(c, ch, name, value)
		}
		return
	}
	c.Append(undo.SetAttribute(f, name, value))
}

// placement is a figure and the z-index it had in the drawing.
type placement struct {
	fig   figure.Figure
	index int
}

// groupEdit moves figures between the drawing and a composite.
type groupEdit struct {
	name    string
	drawing *drawing.Drawing
	group   figure.Composite
	members []placement
	// inverse swaps Undo and Redo for ungrouping.
	inverse bool
}

func (e *groupEdit) Name() string { return e.name }

func (e *groupEdit) Undo() error {
	if e.inverse {
		return e.collect()
	}
	return e.scatter()
}

func (e *groupEdit) Redo() error {
	if e.inverse {
		return e.scatter()
	}
	return e.collect()
}

// collect moves the members into the group and puts the group where the
// backmost member was.
func (e *groupEdit) collect() error {
	d := e.drawing
	for i := len(e.members) - 1; i >= 0; i-- {
		if _, err := d.Detach(e.members[i].fig); err != nil {
			return err
		}
	}
	e.group.WillChange()
	for _, m := range e.members {
		e.group.Add(m.fig)
	}
	e.group.Changed()
	return d.AddAt(e.members[0].index, e.group)
}

// scatter returns the members to the drawing at their recorded indices.
func (e *groupEdit) scatter() error {
	d := e.drawing
	if _, err := d.Detach(e.group); err != nil {
		return err
	}
	e.group.WillChange()
	for _, m := range e.members {
		e.group.Remove(m.fig)
	}
	e.group.Changed()
	for _, m := range e.members {
		if err := d.AddAt(m.index, m.fig); err != nil {
			return err
		}
	}
	return nil
}

// GroupSelection replaces two or more selected figures with a group holding
// them.
func GroupSelection(v *editor.View) (undo.Activity, error) {
	figs := zOrdered(v)
	if len(figs) < 2 {
		return nil, fmt.Errorf("%w: grouping needs two figures", ErrEmptySelection)
	}
	d := v.Drawing()
	e := &groupEdit{name: "Group", drawing: d, group: figure.NewGroup()}
	for _, f := range figs {
		e.members = append(e.members, placement{fig: f, index: d.IndexOf(f)})
	}
	if err := e.collect(); err != nil {
		return nil, err
	}
	selectOnly(v, e.group)
	return e, nil
}

// UngroupSelection dissolves the selected composites into their children.
func UngroupSelection(v *editor.View) (undo.Activity, error) {
	figs := zOrdered(v)
	d := v.Drawing()
	c := undo.NewCompound("Ungroup")
	var freed []figure.Figure
	for i := len(figs) - 1; i >= 0; i-- {
		g, ok := figs[i].(figure.Composite)
		if !ok {
			continue
		}
		base := d.IndexOf(g)
		e := &groupEdit{name: "Ungroup", drawing: d, group: g, inverse: true}
		for j, ch := range g.Children() {
			e.members = append(e.members, placement{fig: ch, index: base + j})
			freed = append(freed, ch)
		}
		if err := e.scatter(); err != nil {
			return nil, err
		}
		c.Append(e)
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("%w: no group selected", ErrEmptySelection)
	}
	v.ClearSelection()
	v.SelectAll(freed)
	return c, nil
}

func selectOnly(v *editor.View, f figure.Figure) {
	v.ClearSelection()
	v.Select(f)
}
