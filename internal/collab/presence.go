package collab

import (
	"encoding/json"
	"log/slog"
	"slices"
)

// presenceTable holds the last presence each client in a room reported,
// keyed by client id. It belongs to the room goroutine.
type presenceTable map[string]*PresencePayload

// setSelection replaces a known client's selection, keeping its cursor. It
// reports the new presence, or nil when nothing changed.
func (pt presenceTable) setSelection(clientID string, ids []string) *PresencePayload {
	p, ok := pt[clientID]
	if !ok || slices.Equal(p.Selection, ids) {
		return nil
	}
	cp := *p
	cp.Selection = ids
	pt[clientID] = &cp
	return &cp
}

func (pt presenceTable) stateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pt})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{Type: TypePresenceState, Payload: payload}
}
