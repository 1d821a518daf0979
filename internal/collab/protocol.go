package collab

import (
	"encoding/json"

	"github.com/inamate/figura/internal/engine"
	"github.com/inamate/figura/internal/geom"
)

type Message struct {
	Type      string          `json:"type"`
	DrawingID string          `json:"drawingId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"` // echoed on the reply
	Payload   json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Editing, client to server
	TypePointer      = "pointer"
	TypeKey          = "key"
	TypeToolSelect   = "tool.select"
	TypeUndo         = "edit.undo"
	TypeRedo         = "edit.redo"
	TypeAction       = "action"
	TypeSelectionSet = "selection.set"
	TypeImageInsert  = "image.insert"
	TypeViewScale    = "view.scale"
	TypeRender       = "render"
	TypeSave         = "doc.save"

	// Editing, server to client
	TypeRenderResult = "render.result"
	TypeDamage       = "damage"
	TypePopup        = "popup"
	TypeSaved        = "doc.saved"
)

type WelcomePayload struct {
	ClientID  string   `json:"clientId"`
	DrawingID string   `json:"drawingId"`
	Name      string   `json:"name"`
	Tools     []string `json:"tools"`
	Tool      string   `json:"tool"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type ToolSelectPayload struct {
	Tool string `json:"tool"`
}

type SelectionSetPayload struct {
	IDs []string `json:"ids"`
}

type ImageInsertPayload struct {
	AssetID string    `json:"assetId"`
	Bounds  geom.Rect `json:"bounds"`
}

type ViewScalePayload struct {
	Scale float64 `json:"scale"`
}

type RenderResultPayload struct {
	Commands  []engine.DrawCommand `json:"commands"`
	Selection []string             `json:"selection"`
	Tool      string               `json:"tool"`
	Undo      engine.UndoState     `json:"undo"`
}

type DamagePayload struct {
	Rect geom.Rect `json:"rect"`
}

type SavedPayload struct {
	Version int `json:"version"`
}
