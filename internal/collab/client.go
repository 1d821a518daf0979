package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait   = 10 * time.Second
	pingPeriod  = 30 * time.Second
	maxMsgSize  = 64 * 1024
	sendBacklog = 256
)

// Identity names who is on the other end of a connection and which drawing
// they opened.
type Identity struct {
	UserID      string
	DisplayName string
	DrawingID   string
	ClientID    string
}

// Client is one websocket connection to a drawing room. Only the room
// goroutine sends on it, and it closes send when the client leaves.
//
// A client that falls sendBacklog messages behind is disconnected rather
// than having damage dropped, since its view would silently diverge from
// the document. It can reconnect and render from scratch.
type Client struct {
	Identity

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	lagOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, id Identity) *Client {
	return &Client{
		Identity: id,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBacklog),
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					slog.Debug("read error", "error", err, "client", c.ClientID)
				}
			}
			return
		}
		if typ != websocket.MessageText {
			slog.Warn("binary frame ignored", "client", c.ClientID)
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			continue
		}

		// Identity comes from the connection, never from the payload.
		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.DrawingID = c.DrawingID

		c.hub.handleMessage(c, &msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, data); err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Send queues msg for the write pump. It must only be called from the
// room goroutine.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "type", msg.Type, "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		c.lagOnce.Do(func() {
			slog.Warn("client lagging, disconnecting", "client", c.ClientID, "drawing", c.DrawingID)
			if c.conn != nil {
				go c.conn.Close(websocket.StatusPolicyViolation, "too slow")
			}
		})
	}
}
