// Package input defines the normalized pointer and keyboard events hosts
// translate their native events into.
package input

import "github.com/inamate/figura/internal/geom"

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	Shift Modifiers = 1 << iota
	Ctrl
	Alt
	Meta
)

func (m Modifiers) Has(x Modifiers) bool { return m&x != 0 }

// PointerKind is the phase of a pointer event.
type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerMove PointerKind = "move"
	PointerDrag PointerKind = "drag"
	PointerUp   PointerKind = "up"
)

// PointerEvent is a pointer event in drawing coordinates.
type PointerEvent struct {
	Kind         PointerKind `json:"kind"`
	Pos          geom.Point  `json:"pos"`
	Button       Button      `json:"button"`
	Modifiers    Modifiers   `json:"modifiers"`
	ClickCount   int         `json:"clickCount"`
	PopupTrigger bool        `json:"popupTrigger"`
}

// Key names understood by tools.
const (
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
)

// KeyEvent is a key press.
type KeyEvent struct {
	Key       string    `json:"key"`
	Modifiers Modifiers `json:"modifiers"`
}
