// Package ws mirrors the notification feed over WebSocket as JSON events.
// Every connected client receives them in real time, and a client that
// connects late is first sent the most recent state event. The hub also
// handles ping/pong keepalives so stale connections get cleaned up.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Hub manages WebSocket client connections and fans out broadcast messages
// to all of them. It is safe for concurrent use; register, unregister, and
// broadcast all go through channels.
type Hub struct {
	clients    map[*websocket.Conn]struct{}
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan message
	done       chan struct{} // closed when Run returns
	upgrader   websocket.Upgrader

	latest []byte // last retained message, replayed on register
	count  atomic.Int64
}

type message struct {
	data   []byte
	retain bool
}

// NewHub allocates a hub with buffered channels.
// Call Run in a goroutine to start the event loop.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]struct{}),
		register:   make(chan *websocket.Conn, 16),
		unregister: make(chan *websocket.Conn, 16),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Run processes registrations, unregistrations, broadcasts, and keepalive
// pings in a single select loop. It closes all clients when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				_ = c.Close()
			}
			h.clients = map[*websocket.Conn]struct{}{}
			h.count.Store(0)
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			if h.latest != nil {
				h.write(c, websocket.TextMessage, h.latest, 3*time.Second)
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				_ = c.Close()
			}

		case msg := <-h.broadcast:
			if msg.retain {
				h.latest = msg.data
			}
			for c := range h.clients {
				h.write(c, websocket.TextMessage, msg.data, 3*time.Second)
			}

		case <-ping.C:
			for c := range h.clients {
				h.write(c, websocket.PingMessage, nil, 2*time.Second)
			}
		}
		h.count.Store(int64(len(h.clients)))
	}
}

func (h *Hub) write(c *websocket.Conn, kind int, data []byte, timeout time.Duration) {
	_ = c.SetWriteDeadline(time.Now().Add(timeout))
	if err := c.WriteMessage(kind, data); err != nil {
		delete(h.clients, c)
		_ = c.Close()
	}
}

// ClientCount returns the number of connected WebSocket clients as of the
// last event loop iteration.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Handler returns an http.Handler that upgrades incoming requests to
// WebSocket connections and registers them with the hub.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
			return
		}
		if !h.join(conn) {
			return
		}

		go func() {
			defer h.leave(conn)
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			conn.SetPongHandler(func(string) error {
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				return nil
			})

			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})
}

// join hands conn to the event loop. It reports false, and closes conn,
// once Run has returned.
func (h *Hub) join(conn *websocket.Conn) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		_ = conn.Close()
		return false
	}
}

// leave is join's counterpart for a client whose reader has stopped.
func (h *Hub) leave(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
		_ = conn.Close()
	}
}

// BroadcastJSON marshals v to JSON and queues it for delivery to all
// connected clients. If the broadcast channel is full the message is
// silently dropped to avoid blocking the caller.
func (h *Hub) BroadcastJSON(v any) {
	h.enqueue(v, false)
}

// PublishJSON is BroadcastJSON for state events: the message is also
// retained and sent to clients that connect later.
func (h *Hub) PublishJSON(v any) {
	h.enqueue(v, true)
}

func (h *Hub) enqueue(v any, retain bool) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- message{data: b, retain: retain}:
	default:
	}
}
