// Package editor binds tools, views and the undo log into one interaction
// context. All methods except Post must run on the interaction thread.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/undo"
)

// ErrBusy is returned when another view owns the gesture in progress or
// the tool's unfinished work.
var ErrBusy = errors.New("editor is busy with another gesture")

// Tool interprets the event stream of the active view.
type Tool interface {
	Name() string
	Activate(v *View)
	// Deactivate ends or cancels any gesture in progress.
	Deactivate(v *View)
	PointerDown(v *View, e input.PointerEvent)
	PointerMove(v *View, e input.PointerEvent)
	PointerDrag(v *View, e input.PointerEvent)
	PointerUp(v *View, e input.PointerEvent)
	KeyDown(v *View, e input.KeyEvent)
	// DrawOverlay paints transient feedback such as a rubber band.
	DrawOverlay(v *View, s figure.Surface)
}

// Engaged is implemented by tools whose work spans several gestures, such
// as a path built click by click. While Engaged reports true only the
// active view may drive the tool.
type Engaged interface {
	Engaged() bool
}

// Editor owns the single active tool slot shared by all views.
type Editor struct {
	settings    Settings
	registry    *figure.Registry
	undo        *undo.Manager
	tool        Tool
	defaultTool Tool
	views       []*View
	active      *View
	gesture     *View

	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

func New(settings Settings, registry *figure.Registry) *Editor {
	if registry == nil {
		registry = figure.DefaultRegistry()
	}
	return &Editor{
		settings: settings,
		registry: registry,
		undo:     undo.NewManager(settings.UndoLimit),
		wake:     make(chan struct{}, 1),
	}
}

func (e *Editor) Settings() Settings         { return e.settings }
func (e *Editor) Registry() *figure.Registry { return e.registry }
func (e *Editor) UndoManager() *undo.Manager { return e.undo }
func (e *Editor) Tool() Tool                 { return e.tool }
func (e *Editor) ActiveView() *View          { return e.active }
func (e *Editor) Views() []*View             { return append([]*View(nil), e.views...) }
func (e *Editor) SetDefaultTool(t Tool)      { e.defaultTool = t }
func (e *Editor) Busy() bool                 { return e.gesture != nil }
func (e *Editor) Record(a undo.Activity)     { e.undo.Add(a) }
func (e *Editor) Wake() <-chan struct{}      { return e.wake }

// AddView attaches v. The first view becomes the active one.
func (e *Editor) AddView(v *View) {
	v.editor = e
	e.views = append(e.views, v)
	if e.active == nil {
		e.active = v
	}
}

func (e *Editor) RemoveView(v *View) {
	if e.gesture == v {
		e.cancelGesture()
	}
	for i, x := range e.views {
		if x == v {
			e.views = append(e.views[:i], e.views[i+1:]...)
			break
		}
	}
	v.detach()
	if e.active == v {
		e.active = nil
		if len(e.views) > 0 {
			e.active = e.views[0]
		}
	}
}

// SetTool deactivates the current tool, which finishes or cancels its
// gesture, and activates t.
func (e *Editor) SetTool(t Tool) {
	if e.tool != nil && e.active != nil {
		e.tool.Deactivate(e.active)
	}
	e.gesture = nil
	e.tool = t
	if t == nil {
		return
	}
	slog.Debug("tool selected", "tool", t.Name())
	if e.active != nil {
		t.Activate(e.active)
	}
}

// ToolDone returns to the default tool.
func (e *Editor) ToolDone() {
	if e.defaultTool != nil && e.tool != e.defaultTool {
		e.SetTool(e.defaultTool)
	}
}

func (e *Editor) activate(v *View) {
	if e.active == v {
		return
	}
	if e.tool != nil && e.active != nil {
		e.tool.Deactivate(e.active)
	}
	e.active = v
	if e.tool != nil {
		e.tool.Activate(v)
	}
}

// owner returns the view the tool is bound to, or nil when any view may
// take it over.
func (e *Editor) owner() *View {
	if e.gesture != nil {
		return e.gesture
	}
	if t, ok := e.tool.(Engaged); ok && t.Engaged() {
		return e.active
	}
	return nil
}

// Pointer routes a pointer event from v to the active tool. While another
// view owns a gesture or the tool's unfinished work the event is refused.
// Only a press moves the tool to v; hovering does not.
func (e *Editor) Pointer(v *View, ev input.PointerEvent) error {
	if o := e.owner(); o != nil && o != v {
		return ErrBusy
	}
	if e.tool == nil {
		return nil
	}
	switch ev.Kind {
	case input.PointerDown:
		e.activate(v)
		e.gesture = v
		e.tool.PointerDown(v, ev)
	case input.PointerDrag:
		e.tool.PointerDrag(v, ev)
	case input.PointerMove:
		e.tool.PointerMove(v, ev)
	case input.PointerUp:
		e.tool.PointerUp(v, ev)
		e.gesture = nil
	default:
		return fmt.Errorf("unknown pointer event kind: %s", ev.Kind)
	}
	return nil
}

// Key routes a key press from v to the active tool.
func (e *Editor) Key(v *View, ev input.KeyEvent) error {
	if o := e.owner(); o != nil && o != v {
		return ErrBusy
	}
	if e.tool == nil {
		return nil
	}
	e.activate(v)
	e.tool.KeyDown(v, ev)
	if ev.Key == input.KeyEscape {
		e.gesture = nil
	}
	return nil
}

func (e *Editor) cancelGesture() {
	if e.tool != nil && e.gesture != nil {
		e.tool.Deactivate(e.gesture)
		e.tool.Activate(e.gesture)
	}
	e.gesture = nil
}

// Undo reverts the last activity. It is refused during a gesture.
func (e *Editor) Undo() error {
	if e.gesture != nil {
		return ErrBusy
	}
	err := e.undo.Undo()
	e.refreshViews()
	return err
}

func (e *Editor) Redo() error {
	if e.gesture != nil {
		return ErrBusy
	}
	err := e.undo.Redo()
	e.refreshViews()
	return err
}

func (e *Editor) refreshViews() {
	for _, v := range e.views {
		v.RefreshHandles()
	}
}

// Post queues fn to run on the interaction thread. It is safe to call from
// any goroutine.
func (e *Editor) Post(fn func()) {
	e.mu.Lock()
	e.pending = append(e.pending, fn)
	e.mu.Unlock()
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// RunPending runs the queued functions in posting order and reports how
// many ran.
func (e *Editor) RunPending() int {
	e.mu.Lock()
	fns := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
