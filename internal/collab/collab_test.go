package collab

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figura/internal/document"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/engine"
	"github.com/inamate/figura/internal/geom"
	"github.com/inamate/figura/internal/input"
)

type memDocs struct {
	mu    sync.Mutex
	docs  map[string]*document.Document
	saves chan int
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[string]*document.Document{}, saves: make(chan int, 16)}
}

func (m *memDocs) load(_ context.Context, id string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, errors.New("drawing not found")
	}
	// Hand out a copy so rooms never share records.
	data, _ := json.Marshal(doc)
	var cp document.Document
	_ = json.Unmarshal(data, &cp)
	return &cp, nil
}

func (m *memDocs) save(_ context.Context, id string, doc *document.Document) (int, error) {
	m.mu.Lock()
	m.docs[id] = doc
	m.mu.Unlock()
	m.saves <- len(doc.Figures)
	return 2, nil
}

func newTestHub(t *testing.T, docs *memDocs) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub(Config{Settings: editor.DefaultSettings(), Load: docs.load, Save: docs.save})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return h, cancel
}

func join(t *testing.T, h *Hub, drawingID, clientID string) *Client {
	t.Helper()
	c := NewClient(h, nil, Identity{UserID: "user_" + clientID, DisplayName: clientID, DrawingID: drawingID, ClientID: clientID})
	require.NoError(t, h.Register(c))
	return c
}

// recv returns the next message of type typ, skipping others.
func recv(t *testing.T, c *Client, typ string) *Message {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case data, ok := <-c.send:
			require.True(t, ok, "client %s closed while waiting for %s", c.ClientID, typ)
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			if msg.Type == typ {
				return &msg
			}
		case <-timeout:
			t.Fatalf("client %s: no %s message", c.ClientID, typ)
		}
	}
}

func sendMsg(t *testing.T, h *Hub, c *Client, typ string, seq int64, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	h.handleMessage(c, &Message{Type: typ, Seq: seq, Payload: data, ClientID: c.ClientID, DrawingID: c.DrawingID})
}

func pointer(kind input.PointerKind, x, y float64) input.PointerEvent {
	return input.PointerEvent{Kind: kind, Pos: geom.Pt(x, y), Button: input.ButtonPrimary, ClickCount: 1}
}

func drawRect(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	sendMsg(t, h, c, TypeToolSelect, 0, ToolSelectPayload{Tool: engine.ToolRectangle})
	sendMsg(t, h, c, TypePointer, 0, pointer(input.PointerDown, 10, 10))
	sendMsg(t, h, c, TypePointer, 0, pointer(input.PointerDrag, 60, 50))
	sendMsg(t, h, c, TypePointer, 0, pointer(input.PointerUp, 60, 50))
}

func render(t *testing.T, h *Hub, c *Client, seq int64) RenderResultPayload {
	t.Helper()
	sendMsg(t, h, c, TypeRender, seq, nil)
	msg := recv(t, c, TypeRenderResult)
	assert.Equal(t, seq, msg.Seq)
	var res RenderResultPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &res))
	return res
}

func TestJoinAnnouncesPresence(t *testing.T) {
	docs := newMemDocs()
	docs.docs["drw_a"] = document.NewSampleDocument("drw_a")
	h, _ := newTestHub(t, docs)

	a := join(t, h, "drw_a", "a")
	var welcome WelcomePayload
	require.NoError(t, json.Unmarshal(recv(t, a, TypeWelcome).Payload, &welcome))
	assert.Equal(t, "drw_a", welcome.DrawingID)
	assert.Equal(t, "Sample", welcome.Name)
	assert.Contains(t, welcome.Tools, engine.ToolEllipse)
	assert.Equal(t, engine.ToolSelection, welcome.Tool)
	recv(t, a, TypePresenceState)

	b := join(t, h, "drw_a", "b")
	var state PresenceStatePayload
	require.NoError(t, json.Unmarshal(recv(t, b, TypePresenceState).Payload, &state))
	assert.Contains(t, state.Presences, "a")

	var joined PresenceJoinPayload
	require.NoError(t, json.Unmarshal(recv(t, a, TypePresenceJoin).Payload, &joined))
	assert.Equal(t, "b", joined.ClientID)
	assert.Equal(t, 1, h.RoomCount())
}

func TestEditsReachEveryView(t *testing.T) {
	docs := newMemDocs()
	docs.docs["drw_a"] = document.NewEmptyDocument("drw_a", "Empty")
	h, _ := newTestHub(t, docs)

	a := join(t, h, "drw_a", "a")
	b := join(t, h, "drw_a", "b")
	drawRect(t, h, a)

	recv(t, a, TypeDamage)
	recv(t, b, TypeDamage)

	// The creator's selection reaches the others as presence.
	var p PresencePayload
	require.NoError(t, json.Unmarshal(recv(t, b, TypePresenceUpdate).Payload, &p))
	require.Len(t, p.Selection, 1)

	res := render(t, h, b, 7)
	require.NotEmpty(t, res.Commands)
	assert.Equal(t, p.Selection[0], res.Commands[0].ObjectID)
	assert.Empty(t, res.Selection)
	assert.True(t, res.Undo.CanUndo)

	sendMsg(t, h, b, TypeUndo, 0, nil)
	recv(t, a, TypeDamage)
	res = render(t, h, a, 8)
	assert.False(t, res.Undo.CanUndo)
	assert.True(t, res.Undo.CanRedo)
}

func TestInputWhileAnotherClientDragsIsDropped(t *testing.T) {
	docs := newMemDocs()
	docs.docs["drw_a"] = document.NewEmptyDocument("drw_a", "Empty")
	h, _ := newTestHub(t, docs)

	a := join(t, h, "drw_a", "a")
	b := join(t, h, "drw_a", "b")
	sendMsg(t, h, a, TypeToolSelect, 0, ToolSelectPayload{Tool: engine.ToolRectangle})
	sendMsg(t, h, a, TypePointer, 0, pointer(input.PointerDown, 10, 10))
	sendMsg(t, h, b, TypePointer, 1, pointer(input.PointerDown, 100, 100))

	// Undo is refused during a gesture and reported.
	sendMsg(t, h, b, TypeUndo, 2, nil)
	msg := recv(t, b, TypeError)
	assert.Equal(t, int64(2), msg.Seq)
}

func TestUnknownMessageAndBadPayloadReportErrors(t *testing.T) {
	docs := newMemDocs()
	docs.docs["drw_a"] = document.NewEmptyDocument("drw_a", "Empty")
	h, _ := newTestHub(t, docs)
	a := join(t, h, "drw_a", "a")

	sendMsg(t, h, a, "teleport", 3, nil)
	assert.Equal(t, int64(3), recv(t, a, TypeError).Seq)

	sendMsg(t, h, a, TypeToolSelect, 4, ToolSelectPayload{Tool: "lasso"})
	assert.Equal(t, int64(4), recv(t, a, TypeError).Seq)

	sendMsg(t, h, a, TypeViewScale, 5, ViewScalePayload{Scale: -1})
	assert.Equal(t, int64(5), recv(t, a, TypeError).Seq)
}

func TestLastLeaveSavesAndReopenSeesEdits(t *testing.T) {
	docs := newMemDocs()
	docs.docs["drw_a"] = document.NewEmptyDocument("drw_a", "Empty")
	h, _ := newTestHub(t, docs)

	a := join(t, h, "drw_a", "a")
	drawRect(t, h, a)
	recv(t, a, TypeDamage)
	h.Unregister(a)

	select {
	case n := <-docs.saves:
		assert.Equal(t, 1, n)
	case <-time.After(5 * time.Second):
		t.Fatal("room did not save")
	}
	assert.Eventually(t, func() bool { return h.RoomCount() == 0 }, 5*time.Second, 10*time.Millisecond)

	b := join(t, h, "drw_a", "b")
	recv(t, b, TypeWelcome)
	res := render(t, h, b, 1)
	assert.NotEmpty(t, res.Commands)
}

func TestExplicitSaveBroadcastsVersion(t *testing.T) {
	docs := newMemDocs()
	docs.docs["drw_a"] = document.NewEmptyDocument("drw_a", "Empty")
	h, _ := newTestHub(t, docs)
	a := join(t, h, "drw_a", "a")
	b := join(t, h, "drw_a", "b")

	sendMsg(t, h, a, TypeSave, 0, nil)
	var saved SavedPayload
	require.NoError(t, json.Unmarshal(recv(t, b, TypeSaved).Payload, &saved))
	assert.Equal(t, 2, saved.Version)
}

func TestLoadFailureIsReported(t *testing.T) {
	h, _ := newTestHub(t, newMemDocs())
	a := join(t, h, "drw_missing", "a")

	var p ErrorPayload
	require.NoError(t, json.Unmarshal(recv(t, a, TypeError).Payload, &p))
	assert.Contains(t, p.Message, "drawing not found")

	sendMsg(t, h, a, TypeRender, 9, nil)
	assert.Equal(t, int64(9), recv(t, a, TypeError).Seq)
}

func TestShutdownSavesDirtyRooms(t *testing.T) {
	docs := newMemDocs()
	docs.docs["drw_a"] = document.NewEmptyDocument("drw_a", "Empty")
	h, cancel := newTestHub(t, docs)

	a := join(t, h, "drw_a", "a")
	drawRect(t, h, a)
	recv(t, a, TypeDamage)
	cancel()

	select {
	case n := <-docs.saves:
		assert.Equal(t, 1, n)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not save")
	}
	assert.Eventually(t, func() bool {
		return errors.Is(h.Register(NewClient(h, nil, Identity{UserID: "u", DisplayName: "U", DrawingID: "drw_a", ClientID: "late"})), ErrHubClosed)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPresenceSetSelectionKeepsCursor(t *testing.T) {
	pt := make(presenceTable)
	assert.Nil(t, pt.setSelection("a", []string{"x"}))

	pt["a"] = &PresencePayload{Cursor: &CursorPos{X: 1, Y: 2}}
	p := pt.setSelection("a", []string{"x"})
	require.NotNil(t, p)
	assert.Equal(t, []string{"x"}, p.Selection)
	assert.Equal(t, &CursorPos{X: 1, Y: 2}, p.Cursor)
	assert.Nil(t, pt.setSelection("a", []string{"x"}), "unchanged selection")

	assert.Same(t, p, pt["a"])
}

func TestLaggingClientKeepsQueuedMessages(t *testing.T) {
	c := &Client{Identity: Identity{ClientID: "slow"}, send: make(chan []byte, 1)}
	c.Send(&Message{Type: TypeDamage, Seq: 1})
	c.Send(&Message{Type: TypeDamage, Seq: 2})

	require.Len(t, c.send, 1)
	var msg Message
	require.NoError(t, json.Unmarshal(<-c.send, &msg))
	assert.Equal(t, int64(1), msg.Seq)
}
