package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zaqqye/hotel_backend/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// RoomHub pushes committed room events to every connected websocket client.
// It implements services.Notifier.
type RoomHub struct {
	register   chan *roomClient
	unregister chan *roomClient
	broadcast  chan []byte
	clients    map[*roomClient]struct{}
	done       chan struct{}

	log     *slog.Logger
	onCount func(int)
}

// NewRoomHub builds a hub; onCount, if set, is called from the hub goroutine
// whenever the number of clients changes.
func NewRoomHub(log *slog.Logger, onCount func(int)) *RoomHub {
	if log == nil {
		log = slog.Default()
	}
	if onCount == nil {
		onCount = func(int) {}
	}
	return &RoomHub{
		register:   make(chan *roomClient),
		unregister: make(chan *roomClient),
		broadcast:  make(chan []byte, sendBufferSize),
		clients:    make(map[*roomClient]struct{}),
		done:       make(chan struct{}),
		log:        log,
		onCount:    onCount,
	}
}

// Run owns the client set until ctx is cancelled, then disconnects everyone.
func (h *RoomHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			h.onCount(0)
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.onCount(len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.onCount(len(h.clients))
			}
		case msg := <-h.broadcast:
			dropped := false
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					h.drop(client)
					dropped = true
				}
			}
			if dropped {
				h.onCount(len(h.clients))
			}
		}
	}
}

func (h *RoomHub) drop(client *roomClient) {
	delete(h.clients, client)
	close(client.send)
	client.conn.Close()
}

// NotifyRoom queues ev for broadcast. It never blocks: when the queue is full
// the event is dropped and clients catch up on their next poll.
func (h *RoomHub) NotifyRoom(_ context.Context, ev services.RoomEvent) {
	if h == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("ws: marshal room event", "err", err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.log.Warn("ws: broadcast queue full, dropping event", "type", ev.Type, "room_id", ev.Room.ID)
	}
}

func (h *RoomHub) join(client *roomClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *RoomHub) leave(client *roomClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

type roomClient struct {
	hub  *RoomHub
	conn *websocket.Conn
	send chan []byte
}

func newRoomClient(hub *RoomHub, conn *websocket.Conn) *roomClient {
	return &roomClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// readPump only keeps the read deadline alive; clients never send data.
func (c *roomClient) readPump() {
	defer c.hub.leave(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *roomClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
