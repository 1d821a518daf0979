package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/figura/internal/action"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/engine"
	"github.com/inamate/figura/internal/input"
)

const (
	roomQueueSize = 256
	loadTimeout   = 10 * time.Second
	saveTimeout   = 10 * time.Second
)

type eventKind int

const (
	eventJoin eventKind = iota
	eventLeave
	eventMessage
)

type event struct {
	kind   eventKind
	client *Client
	msg    *Message
}

// Room is one open drawing. Its goroutine is the interaction thread of
// the engine: every event, posted callback and save runs there.
type Room struct {
	drawingID string
	cfg       Config
	prev      <-chan struct{}

	events chan event
	stop   chan struct{}
	done   chan struct{}

	// guarded by Hub.mu
	members int

	// owned by the room goroutine
	engine   *engine.Engine
	clients  map[string]*Client // clientID -> client
	presence presenceTable
	loadErr  error
}

func newRoom(drawingID string, cfg Config, prev <-chan struct{}) *Room {
	return &Room{
		drawingID: drawingID,
		cfg:       cfg,
		prev:      prev,
		events:    make(chan event, roomQueueSize),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		clients:   make(map[string]*Client),
		presence:  make(presenceTable),
	}
}

func (r *Room) deliver(ev event) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

// Stop asks the room to save and exit. Events delivered before Stop are
// still handled.
func (r *Room) Stop() { close(r.stop) }

func (r *Room) run() {
	defer close(r.done)
	if r.prev != nil {
		<-r.prev
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.open(ctx)

	var autosave <-chan time.Time
	if r.cfg.AutosaveInterval > 0 {
		ticker := time.NewTicker(r.cfg.AutosaveInterval)
		defer ticker.Stop()
		autosave = ticker.C
	}

	for {
		select {
		case ev := <-r.events:
			r.handle(ev)
		case <-r.engine.Editor().Wake():
			if r.engine.RunPending() > 0 {
				r.flushDamage()
			}
		case <-autosave:
			r.save()
		case <-r.stop:
			r.drain()
			r.save()
			for id, c := range r.clients {
				close(c.send)
				delete(r.clients, id)
			}
			return
		}
	}
}

func (r *Room) drain() {
	for {
		select {
		case ev := <-r.events:
			r.handle(ev)
		default:
			return
		}
	}
}

func (r *Room) open(ctx context.Context) {
	r.engine = engine.NewEngine(r.cfg.Settings)
	if r.cfg.Measurer != nil {
		r.engine.SetMeasurer(r.cfg.Measurer)
	}
	r.engine.OnPopup(r.popup)

	if r.cfg.Load == nil {
		return
	}
	loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	doc, err := r.cfg.Load(loadCtx, r.drawingID)
	if err == nil {
		err = r.engine.Load(doc)
	}
	if err != nil {
		r.loadErr = fmt.Errorf("open drawing %s: %w", r.drawingID, err)
		slog.Error("room open failed", "drawing", r.drawingID, "error", err)
		return
	}
	if r.cfg.Assets != nil {
		r.cfg.Assets.Load(ctx, r.engine)
	}
	slog.Info("room opened", "drawing", r.drawingID, "figures", r.engine.Drawing().Len())
}

func (r *Room) save() {
	if r.loadErr != nil || r.cfg.Save == nil || !r.engine.Dirty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	version, err := r.cfg.Save(ctx, r.drawingID, r.engine.Document())
	if err != nil {
		slog.Error("room save failed", "drawing", r.drawingID, "error", err)
		return
	}
	r.engine.MarkClean()
	slog.Info("room saved", "drawing", r.drawingID, "version", version)
}

func (r *Room) handle(ev event) {
	switch ev.kind {
	case eventJoin:
		r.join(ev.client)
	case eventLeave:
		r.leave(ev.client)
	case eventMessage:
		if _, ok := r.clients[ev.client.ClientID]; !ok {
			return
		}
		r.handleMessage(ev.client, ev.msg)
	}
}

func (r *Room) join(client *Client) {
	if r.loadErr != nil {
		r.clients[client.ClientID] = client
		r.sendError(client, 0, r.loadErr)
		return
	}

	r.clients[client.ClientID] = client
	r.engine.AddView(client.ClientID)

	r.send(client, TypeWelcome, 0, WelcomePayload{
		ClientID:  client.ClientID,
		DrawingID: r.drawingID,
		Name:      r.engine.Name(),
		Tools:     r.engine.ToolNames(),
		Tool:      r.engine.ToolName(),
	})

	// Send current presence state to new client
	if stateMsg := r.presence.stateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}
	r.presence[client.ClientID] = &PresencePayload{DisplayName: client.DisplayName}

	// Broadcast join to other clients
	r.broadcast(TypePresenceJoin, client.UserID, PresenceJoinPayload{
		ClientID:    client.ClientID,
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	}, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "drawing", r.drawingID)
}

func (r *Room) leave(client *Client) {
	if _, ok := r.clients[client.ClientID]; !ok {
		return
	}
	delete(r.clients, client.ClientID)
	close(client.send)
	delete(r.presence, client.ClientID)
	if r.loadErr != nil {
		return
	}
	r.engine.RemoveView(client.ClientID)

	// Broadcast leave to remaining clients
	r.broadcast(TypePresenceLeave, client.UserID, PresenceLeavePayload{
		ClientID: client.ClientID,
		UserID:   client.UserID,
	}, "")
	r.flushDamage()

	slog.Info("client left", "user", client.UserID, "drawing", r.drawingID)
}

func (r *Room) handleMessage(sender *Client, msg *Message) {
	if r.loadErr != nil {
		r.sendError(sender, msg.Seq, r.loadErr)
		return
	}

	var err error
	switch msg.Type {
	case TypePresenceUpdate:
		err = r.handlePresenceUpdate(sender, msg)
	case TypeRender:
		err = r.sendRender(sender, msg.Seq)
	case TypeSave:
		err = r.handleSave(sender, msg)
	default:
		err = r.handleEdit(sender, msg)
		if errors.Is(err, editor.ErrBusy) && (msg.Type == TypePointer || msg.Type == TypeKey) {
			// Another client is mid-gesture.
			slog.Debug("input dropped while busy", "user", sender.UserID, "type", msg.Type)
			err = nil
		}
		r.flushDamage()
		r.syncSelection(sender)
	}
	if err != nil {
		r.sendError(sender, msg.Seq, err)
	}
}

func (r *Room) handleEdit(sender *Client, msg *Message) error {
	key := sender.ClientID
	switch msg.Type {
	case TypePointer:
		var ev input.PointerEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("invalid pointer payload: %w", err)
		}
		return r.engine.Pointer(key, ev)
	case TypeKey:
		var ev input.KeyEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("invalid key payload: %w", err)
		}
		return r.engine.Key(key, ev)
	case TypeToolSelect:
		var p ToolSelectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid tool payload: %w", err)
		}
		return r.engine.SelectTool(p.Tool)
	case TypeUndo:
		return r.engine.Undo()
	case TypeRedo:
		return r.engine.Redo()
	case TypeAction:
		var req action.Request
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return fmt.Errorf("invalid action payload: %w", err)
		}
		return r.engine.Perform(key, req)
	case TypeSelectionSet:
		var p SelectionSetPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid selection payload: %w", err)
		}
		return r.engine.SetSelection(key, p.IDs)
	case TypeImageInsert:
		var p ImageInsertPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid image payload: %w", err)
		}
		if _, err := r.engine.InsertImage(key, p.AssetID, p.Bounds); err != nil {
			return err
		}
		if r.cfg.Assets != nil {
			r.cfg.Assets.Load(context.Background(), r.engine)
		}
		return nil
	case TypeViewScale:
		var p ViewScalePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid scale payload: %w", err)
		}
		if p.Scale <= 0 {
			return fmt.Errorf("invalid scale %g", p.Scale)
		}
		v, err := r.engine.View(key)
		if err != nil {
			return err
		}
		v.SetScale(p.Scale)
		return nil
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func (r *Room) handlePresenceUpdate(sender *Client, msg *Message) error {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return nil
	}

	presence.DisplayName = sender.DisplayName
	presence.Selection = r.engine.Selection(sender.ClientID)
	r.presence[sender.ClientID] = &presence

	// Broadcast to other clients in room
	r.broadcast(TypePresenceUpdate, sender.UserID, presence, sender.ClientID)
	return nil
}

// syncSelection publishes sender's selection to the others when it
// changed.
func (r *Room) syncSelection(sender *Client) {
	if p := r.presence.setSelection(sender.ClientID, r.engine.Selection(sender.ClientID)); p != nil {
		r.broadcast(TypePresenceUpdate, sender.UserID, p, sender.ClientID)
	}
}

func (r *Room) handleSave(sender *Client, msg *Message) error {
	if r.cfg.Save == nil {
		return errors.New("saving is not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	version, err := r.cfg.Save(ctx, r.drawingID, r.engine.Document())
	if err != nil {
		slog.Error("room save failed", "drawing", r.drawingID, "error", err)
		return errors.New("save failed")
	}
	r.engine.MarkClean()
	r.broadcast(TypeSaved, sender.UserID, SavedPayload{Version: version}, "")
	return nil
}

func (r *Room) sendRender(client *Client, seq int64) error {
	cmds, err := r.engine.Render(client.ClientID)
	if err != nil {
		return err
	}
	r.send(client, TypeRenderResult, seq, RenderResultPayload{
		Commands:  cmds,
		Selection: r.engine.Selection(client.ClientID),
		Tool:      r.engine.ToolName(),
		Undo:      r.engine.UndoState(),
	})
	return nil
}

// flushDamage tells every client which area of its view needs repainting.
func (r *Room) flushDamage() {
	for id, c := range r.clients {
		if dmg := r.engine.TakeDamage(id); !dmg.IsEmpty() {
			r.send(c, TypeDamage, 0, DamagePayload{Rect: dmg})
		}
	}
}

func (r *Room) popup(p engine.Popup) {
	if c, ok := r.clients[p.View]; ok {
		r.send(c, TypePopup, 0, p)
	}
}

func (r *Room) send(client *Client, typ string, seq int64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", typ, "error", err)
		return
	}
	client.Send(&Message{Type: typ, DrawingID: r.drawingID, Seq: seq, Payload: data})
}

func (r *Room) sendError(client *Client, seq int64, err error) {
	r.send(client, TypeError, seq, ErrorPayload{Message: err.Error()})
}

func (r *Room) broadcast(typ, userID string, payload any, excludeClientID string) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", typ, "error", err)
		return
	}
	msg := &Message{Type: typ, DrawingID: r.drawingID, UserID: userID, Payload: data}
	for id, c := range r.clients {
		if id != excludeClientID {
			c.Send(msg)
		}
	}
}
