package engine

import (
	"slices"

	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/tool"
)

// Palette tool names.
const (
	ToolSelection       = "selection"
	ToolRectangle       = "rectangle"
	ToolRoundRect       = "roundrect"
	ToolEllipse         = "ellipse"
	ToolLine            = "line"
	ToolBezier          = "bezier"
	ToolConnection      = "connection"
	ToolElbowConnection = "elbow-connection"
	ToolText            = "text"
	ToolContainer       = "container"
)

// buildPalette creates one instance of every tool. Creation tools hand
// control back to the selection tool after one figure.
func (e *Engine) buildPalette() {
	text := tool.NewTextTool(ToolText, nil)
	creation := func(name string, t figure.Type, attrs map[string]any) *tool.CreationTool {
		ct := tool.NewCreationTool(name, t, attrs)
		ct.ToolDoneAfterCreation = true
		return ct
	}
	connection := func(name, liner string) *tool.ConnectionTool {
		ct := tool.NewConnectionTool(name, liner, map[string]any{figure.ArrowEnd.Name(): true})
		ct.ToolDoneAfterCreation = true
		return ct
	}
	bezier := tool.NewBezierTool(ToolBezier, map[string]any{figure.FillColor.Name(): figure.NoColor})
	bezier.ToolDoneAfterCreation = true

	tools := []editor.Tool{
		tool.NewDelegationSelectionTool(text, e.popup),
		creation(ToolRectangle, figure.TypeRectangle, nil),
		creation(ToolRoundRect, figure.TypeRectangle, map[string]any{figure.CornerRadius.Name(): 8.0}),
		creation(ToolEllipse, figure.TypeEllipse, nil),
		creation(ToolLine, figure.TypeBezier, map[string]any{figure.FillColor.Name(): figure.NoColor}),
		bezier,
		connection(ToolConnection, ""),
		connection(ToolElbowConnection, figure.LinerElbow),
		text,
		creation(ToolContainer, figure.TypeGraphicalComposite, nil),
	}
	e.palette = make(map[string]editor.Tool, len(tools))
	for _, t := range tools {
		e.palette[t.Name()] = t
	}
}

// ToolNames lists the palette in a stable order.
func (e *Engine) ToolNames() []string {
	names := make([]string, 0, len(e.palette))
	for name := range e.palette {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (e *Engine) popup(v *editor.View, at geom.Point, f figure.Figure) {
	if e.onPopup == nil {
		return
	}
	p := Popup{View: e.keyOf(v), At: at}
	if f != nil {
		p.ObjectID = f.ID()
	}
	e.onPopup(p)
}
