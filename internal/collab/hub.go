// Package collab hosts shared editing sessions. Each open drawing lives in
// a room whose goroutine owns the drawing's engine; every connected client
// gets its own view onto it.
package collab

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/figura/internal/asset"
	"github.com/inamate/figura/internal/document"
	"github.com/inamate/figura/internal/editor"
	"github.com/inamate/figura/internal/figure"
)

var ErrHubClosed = errors.New("hub closed")

// LoadFunc fetches the stored document of a drawing.
type LoadFunc func(ctx context.Context, drawingID string) (*document.Document, error)

// SaveFunc stores doc as the next version of a drawing.
type SaveFunc func(ctx context.Context, drawingID string, doc *document.Document) (int, error)

type Config struct {
	Settings editor.Settings
	Measurer figure.TextMeasurer
	Load     LoadFunc
	Save     SaveFunc
	Assets   *asset.Loader

	// AutosaveInterval is how often rooms with unsaved edits are saved.
	// Zero disables periodic saves; rooms still save when they close.
	AutosaveInterval time.Duration
}

type Hub struct {
	cfg Config

	mu       sync.Mutex
	rooms    map[string]*Room           // drawingID -> room
	stopping map[string]<-chan struct{} // drawingID -> done of a closing room
	closed   bool

	unregister chan *Client
	done       chan struct{}
	wg         sync.WaitGroup
}

func NewHub(cfg Config) *Hub {
	return &Hub{
		cfg:        cfg,
		rooms:      make(map[string]*Room),
		stopping:   make(map[string]<-chan struct{}),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes departures until ctx ends, then closes every room and
// waits for their final saves.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.shutdown()
			return
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	h.closed = true
	close(h.done)
	rooms := make([]*Room, 0, len(h.rooms))
	for id, room := range h.rooms {
		rooms = append(rooms, room)
		delete(h.rooms, id)
	}
	h.mu.Unlock()

	for _, room := range rooms {
		room.Stop()
	}
	h.wg.Wait()
	slog.Info("collab hub stopped", "rooms", len(rooms))
}

// Register joins client to the room of its drawing, opening the room if
// needed. Messages the client sends afterwards are ordered after the join.
func (h *Hub) Register(client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}

	room, ok := h.rooms[client.DrawingID]
	if !ok {
		prev := h.stopping[client.DrawingID]
		delete(h.stopping, client.DrawingID)
		room = newRoom(client.DrawingID, h.cfg, prev)
		h.rooms[client.DrawingID] = room
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			room.run()
		}()
	}
	room.members++
	room.deliver(event{kind: eventJoin, client: client})
	return nil
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DrawingID]
	if !ok {
		h.mu.Unlock()
		return
	}

	room.deliver(event{kind: eventLeave, client: client})
	room.members--
	if room.members == 0 {
		delete(h.rooms, client.DrawingID)
		h.stopping[client.DrawingID] = room.done
		go func(id string, done <-chan struct{}) {
			<-done
			h.mu.Lock()
			if h.stopping[id] == done {
				delete(h.stopping, id)
			}
			h.mu.Unlock()
		}(client.DrawingID, room.done)
		room.Stop()
	}
	h.mu.Unlock()
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	h.mu.Lock()
	room, ok := h.rooms[sender.DrawingID]
	h.mu.Unlock()
	if !ok {
		return
	}
	room.deliver(event{kind: eventMessage, client: sender, msg: msg})
}

// RoomCount reports how many rooms are open.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
