package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/inamate/figura/internal/action"
	"github.com/inamate/figura/internal/document"
	"github.com/inamate/figura/internal/drawing"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
	"github.com/inamate/figura/internal/typeid"
	"github.com/inamate/figura/internal/undo"
)

var (
	ErrUnknownView = errors.New("unknown view")
	ErrUnknownTool = errors.New("unknown tool")
)

// Engine owns one drawing, the editor working on it and one view per
// client. It is not safe for concurrent use; hosts call it from their
// interaction thread only.
type Engine struct {
	name    string
	drawing *drawing.Drawing
	editor  *editor.Editor
	views   map[string]*editor.View
	order   []string

	palette  map[string]editor.Tool
	measurer figure.TextMeasurer
	images   map[string]image.Image
	onPopup  func(Popup)

	// dirty is set by any change to the drawing and cleared by MarkClean.
	dirty bool
}

// Popup is a popup-menu request raised by the selection tool.
type Popup struct {
	View     string     `json:"view"`
	At       geom.Point `json:"at"`
	ObjectID string     `json:"objectId,omitempty"`
}

// NewEngine creates an engine holding an empty drawing.
func NewEngine(settings editor.Settings) *Engine {
	e := &Engine{
		name:     "Untitled",
		editor:   editor.New(settings, nil),
		views:    make(map[string]*editor.View),
		measurer: figure.EstimateMeasurer{},
		images:   make(map[string]image.Image),
	}
	e.buildPalette()
	e.attach(drawing.NewWithID(typeid.NewDrawingID()))
	e.editor.SetDefaultTool(e.palette[ToolSelection])
	e.editor.SetTool(e.palette[ToolSelection])
	return e
}

func (e *Engine) Drawing() *drawing.Drawing { return e.drawing }
func (e *Engine) Editor() *editor.Editor    { return e.editor }
func (e *Engine) Name() string              { return e.name }
func (e *Engine) Dirty() bool               { return e.dirty }
func (e *Engine) MarkClean()                { e.dirty = false }

// OnPopup installs the receiver of popup-menu requests.
func (e *Engine) OnPopup(fn func(Popup)) { e.onPopup = fn }

// SetMeasurer measures text figures with m from now on.
func (e *Engine) SetMeasurer(m figure.TextMeasurer) {
	if m == nil {
		m = figure.EstimateMeasurer{}
	}
	e.measurer = m
	for _, f := range e.drawing.Figures() {
		e.prepare(f)
	}
}

// attach makes d the edited drawing.
func (e *Engine) attach(d *drawing.Drawing) {
	if e.drawing != nil {
		e.drawing.RemoveListener(e)
	}
	e.drawing = d
	d.AddListener(e)
	for _, f := range d.Figures() {
		e.prepare(f)
	}
}

// --- Documents ---

// Load replaces the drawing with doc. Views keep their keys but lose their
// selection, and the undo history is cleared.
func (e *Engine) Load(doc *document.Document) error {
	d, err := document.Decode(doc, e.editor.Registry())
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	e.editor.SetTool(e.palette[ToolSelection])
	keys := slices.Clone(e.order)
	for _, key := range keys {
		e.RemoveView(key)
	}
	e.attach(d)
	for _, key := range keys {
		e.AddView(key)
	}
	e.editor.UndoManager().Clear()
	e.name = doc.Name
	e.dirty = false
	return nil
}

// LoadJSON loads a document from JSON.
func (e *Engine) LoadJSON(data string) error {
	var doc document.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	return e.Load(&doc)
}

// LoadSample loads the built-in sample drawing.
func (e *Engine) LoadSample() error {
	return e.Load(document.NewSampleDocument(typeid.NewDrawingID()))
}

func (e *Engine) Document() *document.Document {
	return document.Encode(e.drawing, e.name)
}

func (e *Engine) DocumentJSON() (string, error) {
	data, err := json.Marshal(e.Document())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// --- Views ---

// AddView creates a view on the drawing under key. Adding an existing key
// returns the existing view.
func (e *Engine) AddView(key string) *editor.View {
	if v, ok := e.views[key]; ok {
		return v
	}
	v := editor.NewView(e.drawing)
	e.editor.AddView(v)
	e.views[key] = v
	e.order = append(e.order, key)
	return v
}

func (e *Engine) RemoveView(key string) {
	v, ok := e.views[key]
	if !ok {
		return
	}
	e.editor.RemoveView(v)
	delete(e.views, key)
	e.order = slices.DeleteFunc(e.order, func(k string) bool { return k == key })
}

func (e *Engine) View(key string) (*editor.View, error) {
	v, ok := e.views[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, key)
	}
	return v, nil
}

func (e *Engine) keyOf(v *editor.View) string {
	for k, x := range e.views {
		if x == v {
			return k
		}
	}
	return ""
}

// --- Commands ---

// SelectTool arms the palette tool called name.
func (e *Engine) SelectTool(name string) error {
	t, ok := e.palette[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	e.editor.SetTool(t)
	return nil
}

// ToolName is the name of the armed tool.
func (e *Engine) ToolName() string {
	if t := e.editor.Tool(); t != nil {
		return t.Name()
	}
	return ""
}

func (e *Engine) Pointer(key string, ev input.PointerEvent) error {
	v, err := e.View(key)
	if err != nil {
		return err
	}
	return v.Pointer(ev)
}

func (e *Engine) Key(key string, ev input.KeyEvent) error {
	v, err := e.View(key)
	if err != nil {
		return err
	}
	return v.Key(ev)
}

func (e *Engine) Undo() error { return e.editor.Undo() }
func (e *Engine) Redo() error { return e.editor.Redo() }

// Perform runs a selection action in the view under key.
func (e *Engine) Perform(key string, r action.Request) error {
	v, err := e.View(key)
	if err != nil {
		return err
	}
	return action.Perform(v, r)
}

// SetSelection replaces the selection of the view under key. Unknown ids
// are ignored.
func (e *Engine) SetSelection(key string, ids []string) error {
	v, err := e.View(key)
	if err != nil {
		return err
	}
	v.ClearSelection()
	for _, id := range ids {
		if f, ok := e.drawing.FigureByID(id); ok {
			v.Select(f)
		}
	}
	return nil
}

// InsertImage adds an image figure for assetID covering r as one undoable
// step and selects it.
func (e *Engine) InsertImage(key, assetID string, r geom.Rect) (string, error) {
	v, err := e.View(key)
	if err != nil {
		return "", err
	}
	if e.editor.Busy() {
		return "", editor.ErrBusy
	}
	img := figure.NewImage(r, assetID)
	if err := e.drawing.Add(img); err != nil {
		return "", err
	}
	e.editor.Record(undo.NewAddEdit("Insert image", e.drawing, img))
	v.ClearSelection()
	v.Select(img)
	return img.ID(), nil
}

// AttachImage hands a decoded raster to every image figure showing
// assetID and reports how many were updated.
func (e *Engine) AttachImage(assetID string, img image.Image) int {
	e.images[assetID] = img
	n := 0
	for _, f := range e.drawing.Figures() {
		n += e.attachImage(f, assetID, img)
	}
	return n
}

func (e *Engine) attachImage(f figure.Figure, assetID string, img image.Image) int {
	n := 0
	if h, ok := f.(figure.ImageHolder); ok && h.AssetRef() == assetID && h.Image() == nil {
		h.SetImage(img)
		n++
	}
	if c, ok := f.(figure.Composite); ok {
		for _, ch := range c.Children() {
			n += e.attachImage(ch, assetID, img)
		}
	}
	return n
}

// MissingAssets lists asset ids of image figures still drawn as
// placeholders.
func (e *Engine) MissingAssets() []string {
	var ids []string
	var walk func(f figure.Figure)
	walk = func(f figure.Figure) {
		if h, ok := f.(figure.ImageHolder); ok && h.Image() == nil && h.AssetRef() != "" && !slices.Contains(ids, h.AssetRef()) {
			ids = append(ids, h.AssetRef())
		}
		if c, ok := f.(figure.Composite); ok {
			for _, ch := range c.Children() {
				walk(ch)
			}
		}
	}
	for _, f := range e.drawing.Figures() {
		walk(f)
	}
	return ids
}

// Post queues fn for the interaction thread. Safe from any goroutine.
func (e *Engine) Post(fn func()) { e.editor.Post(fn) }

// RunPending runs work posted to the editor from other goroutines.
func (e *Engine) RunPending() int { return e.editor.RunPending() }

// --- Queries ---

// Render compiles the view under key into draw commands: the figures back
// to front, each tagged with its id, then handles and tool feedback.
func (e *Engine) Render(key string) ([]DrawCommand, error) {
	v, err := e.View(key)
	if err != nil {
		return nil, err
	}
	rec := NewRecorder(e.measurer, geom.Scale(v.Scale(), v.Scale()))
	for _, f := range e.drawing.Figures() {
		rec.SetObject(f.ID())
		f.Draw(rec)
	}
	rec.SetObject("")
	v.DrawDecorations(rec)
	return rec.Commands(), nil
}

// RenderJSON is Render serialized for the frontend.
func (e *Engine) RenderJSON(key string) string {
	cmds, err := e.Render(key)
	if err != nil {
		return "[]"
	}
	out, _ := DrawCommandsToJSON(cmds)
	return out
}

// HitTest returns the id of the topmost figure at (x, y), or "".
func (e *Engine) HitTest(key string, x, y float64) string {
	v, err := e.View(key)
	if err != nil {
		return ""
	}
	if f := v.FindFigure(geom.Pt(x, y)); f != nil {
		return f.ID()
	}
	return ""
}

func (e *Engine) Selection(key string) []string {
	v, err := e.View(key)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, v.SelectionCount())
	for _, f := range v.Selection() {
		ids = append(ids, f.ID())
	}
	return ids
}

func (e *Engine) SelectionBounds(key string) geom.Rect {
	v, err := e.View(key)
	if err != nil {
		return geom.Rect{}
	}
	return v.SelectionBounds()
}

// UndoState describes what the undo and redo commands would do.
type UndoState struct {
	CanUndo  bool   `json:"canUndo"`
	CanRedo  bool   `json:"canRedo"`
	UndoName string `json:"undoName,omitempty"`
	RedoName string `json:"redoName,omitempty"`
}

func (e *Engine) UndoState() UndoState {
	m := e.editor.UndoManager()
	return UndoState{
		CanUndo:  m.CanUndo(),
		CanRedo:  m.CanRedo(),
		UndoName: m.UndoName(),
		RedoName: m.RedoName(),
	}
}

// TakeDamage returns and clears the area of the view under key that needs
// repainting.
func (e *Engine) TakeDamage(key string) geom.Rect {
	v, err := e.View(key)
	if err != nil {
		return geom.Rect{}
	}
	return v.TakeDamage()
}

// --- drawing.Listener ---

func (e *Engine) FigureAdded(ev drawing.Event) {
	e.prepare(ev.Figure)
	e.dirty = true
}

func (e *Engine) FigureRemoved(drawing.Event)   { e.dirty = true }
func (e *Engine) AreaInvalidated(drawing.Event) { e.dirty = true }

// prepare installs the text measurer and any cached raster on f and its
// children.
func (e *Engine) prepare(f figure.Figure) {
	if t, ok := f.(*figure.Text); ok {
		t.SetMeasurer(e.measurer)
	}
	if h, ok := f.(figure.ImageHolder); ok && h.Image() == nil {
		if img, ok := e.images[h.AssetRef()]; ok {
			h.SetImage(img)
		}
	}
	if c, ok := f.(figure.Composite); ok {
		for _, ch := range c.Children() {
			e.prepare(ch)
		}
	}
}
