//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/figura/internal/action"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/engine"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
)

// The browser hosts a single view.
const view = "main"

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(editor.DefaultSettings())
	eng.AddView(view)

	// Create the engine API object
	figuraEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	figuraEngine.Set("loadDocument", js.FuncOf(loadDocument))
	figuraEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	figuraEngine.Set("selectTool", js.FuncOf(selectTool))
	figuraEngine.Set("pointer", js.FuncOf(pointer))
	figuraEngine.Set("key", js.FuncOf(key))
	figuraEngine.Set("undo", js.FuncOf(undo))
	figuraEngine.Set("redo", js.FuncOf(redo))
	figuraEngine.Set("perform", js.FuncOf(perform))
	figuraEngine.Set("setSelection", js.FuncOf(setSelection))
	figuraEngine.Set("setScale", js.FuncOf(setScale))
	figuraEngine.Set("insertImage", js.FuncOf(insertImage))
	figuraEngine.Set("markClean", js.FuncOf(markClean))
	figuraEngine.Set("onPopup", js.FuncOf(onPopup))

	// --- Queries (frontend ← backend) ---
	figuraEngine.Set("render", js.FuncOf(render))
	figuraEngine.Set("hitTest", js.FuncOf(hitTest))
	figuraEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	figuraEngine.Set("takeDamage", js.FuncOf(takeDamage))
	figuraEngine.Set("getDocument", js.FuncOf(getDocument))
	figuraEngine.Set("getSelection", js.FuncOf(getSelection))
	figuraEngine.Set("getTool", js.FuncOf(getTool))
	figuraEngine.Set("getTools", js.FuncOf(getTools))
	figuraEngine.Set("getUndoState", js.FuncOf(getUndoState))
	figuraEngine.Set("isDirty", js.FuncOf(isDirty))

	// Register on global scope
	js.Global().Set("figuraEngine", figuraEngine)

	// Signal that WASM is ready
	js.Global().Set("figuraWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("document JSON")
	}
	return result(eng.LoadJSON(args[0].String()))
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	return result(eng.LoadSample())
}

func selectTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("tool name")
	}
	return result(eng.SelectTool(args[0].String()))
}

// pointer(kind, x, y, button, modifiers, clickCount, popupTrigger)
func pointer(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("pointer kind and position")
	}
	ev := input.PointerEvent{
		Kind: input.PointerKind(args[0].String()),
		Pos:  geom.Pt(args[1].Float(), args[2].Float()),
	}
	if len(args) > 3 {
		ev.Button = input.Button(args[3].Int())
	}
	if len(args) > 4 {
		ev.Modifiers = input.Modifiers(args[4].Int())
	}
	if len(args) > 5 {
		ev.ClickCount = args[5].Int()
	}
	if len(args) > 6 {
		ev.PopupTrigger = args[6].Bool()
	}
	return result(eng.Pointer(view, ev))
}

// key(name, modifiers)
func key(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("key name")
	}
	ev := input.KeyEvent{Key: args[0].String()}
	if len(args) > 1 {
		ev.Modifiers = input.Modifiers(args[1].Int())
	}
	return result(eng.Key(view, ev))
}

func undo(this js.Value, args []js.Value) interface{} {
	return result(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return result(eng.Redo())
}

// perform(requestJSON) runs an editing action on the selection.
func perform(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("action JSON")
	}
	var req action.Request
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return result(err)
	}
	return result(eng.Perform(view, req))
}

func setSelection(this js.Value, args []js.Value) interface{} {
	var ids []string
	if len(args) > 0 && args[0].Type() == js.TypeObject {
		arr := args[0]
		length := arr.Length()
		ids = make([]string, length)
		for i := 0; i < length; i++ {
			ids[i] = arr.Index(i).String()
		}
	}
	return result(eng.SetSelection(view, ids))
}

func setScale(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("scale")
	}
	v, err := eng.View(view)
	if err != nil {
		return result(err)
	}
	if s := args[0].Float(); s > 0 {
		v.SetScale(s)
	}
	return result(nil)
}

// insertImage(assetId, x, y, width, height) returns the new figure id.
func insertImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return missing("asset id and bounds")
	}
	r := geom.Rect{X: args[1].Float(), Y: args[2].Float(), Width: args[3].Float(), Height: args[4].Float()}
	id, err := eng.InsertImage(view, args[0].String(), r)
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": id})
}

func markClean(this js.Value, args []js.Value) interface{} {
	eng.MarkClean()
	return nil
}

// onPopup(fn) registers fn(popupJSON) for context menu requests.
func onPopup(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		eng.OnPopup(nil)
		return nil
	}
	fn := args[0]
	eng.OnPopup(func(p engine.Popup) {
		fn.Invoke(toJSON(p))
	})
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RenderJSON(view))
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(eng.HitTest(view, x, y))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(engine.RectToJSON(eng.SelectionBounds(view)))
}

func takeDamage(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(engine.RectToJSON(eng.TakeDamage(view)))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	doc, err := eng.DocumentJSON()
	if err != nil {
		return js.ValueOf("")
	}
	return js.ValueOf(doc)
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(toJSON(eng.Selection(view)))
}

func getTool(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.ToolName())
}

func getTools(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(toJSON(eng.ToolNames()))
}

func getUndoState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(toJSON(eng.UndoState()))
}

func isDirty(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Dirty())
}
