// Package hub pushes notification codes to clients connected on a local
// unix stream socket. The protocol is push only: each state change is
// written as "<code>\n" and clients never send anything.
package hub

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/large-farva/usage-bar/internal/typing"
)

const (
	acceptPoll   = 1 * time.Second
	writeTimeout = 2 * time.Second
)

type client struct {
	id        string
	conn      net.Conn
	connected time.Time
}

// ClientInfo describes one registered client.
type ClientInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Hub owns the listening socket and the client registry. Broadcast and the
// accept loop may run on different goroutines.
type Hub struct {
	path  string
	log   *log.Logger
	debug bool

	ln    *net.UnixListener
	bound bool

	mu      sync.Mutex
	clients map[net.Conn]*client
	closed  bool

	// sendMu serializes Broadcast calls; mu is never held while writing.
	sendMu sync.Mutex
}

// New returns a hub for the socket at path. Nothing is bound until Listen.
func New(path string, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Hub{
		path:    path,
		log:     logger,
		clients: make(map[net.Conn]*client),
	}
}

// SetDebug enables per-client connect/drop logging.
func (h *Hub) SetDebug(on bool) { h.debug = on }

// Path returns the socket path.
func (h *Hub) Path() string { return h.path }

// Listen removes any stale socket left by a previous run and binds a new one.
func (h *Hub) Listen() error {
	if err := os.Remove(h.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale socket %s: %w", h.path, err)
	}

	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: h.path, Net: "unix"})
	if err != nil {
		return fmt.Errorf("bind %s: %w", h.path, err)
	}
	// Shutdown removes the file itself so the behaviour is the same
	// whether or not the listener was closed cleanly.
	ln.SetUnlinkOnClose(false)

	h.mu.Lock()
	h.ln = ln
	h.bound = true
	h.closed = false
	h.mu.Unlock()

	h.log.Printf("notification socket listening on %s", h.path)
	return nil
}

// Run accepts clients until ctx is cancelled or Shutdown is called. Accept
// waits are bounded so cancellation is noticed within acceptPoll.
func (h *Hub) Run(ctx context.Context) {
	h.mu.Lock()
	ln := h.ln
	h.mu.Unlock()
	if ln == nil {
		return
	}

	for {
		if ctx.Err() != nil || h.isClosed() {
			return
		}

		_ = ln.SetDeadline(time.Now().Add(acceptPoll))
		conn, err := ln.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if h.isClosed() || errors.Is(err, net.ErrClosed) {
				return
			}
			h.log.Printf("accept: %v", err)
			continue
		}
		h.add(conn)
	}
}

func (h *Hub) add(conn net.Conn) {
	c := &client{id: uuid.NewString(), conn: conn, connected: time.Now()}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[conn] = c
	n := len(h.clients)
	h.mu.Unlock()

	if h.debug {
		h.log.Printf("client %s connected (%d total)", c.id, n)
	}
}

// Broadcast writes n to every connected client and returns how many
// received it. Clients whose write fails are dropped after the pass; a
// failing or stalled client never prevents delivery to the others, and the
// registry stays available to the accept loop while writes are in flight.
func (h *Hub) Broadcast(n typing.Notification) int {
	msg := []byte(n.Code() + "\n")

	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	var failed []*client
	delivered := 0
	for _, c := range targets {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := c.conn.Write(msg); err != nil {
			failed = append(failed, c)
			if h.debug {
				h.log.Printf("client %s write failed: %v", c.id, err)
			}
			continue
		}
		delivered++
	}

	if len(failed) == 0 {
		return delivered
	}
	h.mu.Lock()
	for _, c := range failed {
		delete(h.clients, c.conn)
	}
	h.mu.Unlock()
	for _, c := range failed {
		_ = c.conn.Close()
	}
	return delivered
}

// Clients lists the registered clients, oldest first.
func (h *Hub) Clients() []ClientInfo {
	h.mu.Lock()
	out := make([]ClientInfo, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, ClientInfo{ID: c.id, ConnectedAt: c.connected})
	}
	h.mu.Unlock()

	slices.SortFunc(out, func(a, b ClientInfo) int {
		return a.ConnectedAt.Compare(b.ConnectedAt)
	})
	return out
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown stops accepting, drops every client and removes the socket
// file. It is idempotent and safe to call on a hub that never listened.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	ln := h.ln
	bound := h.bound
	h.ln = nil
	h.bound = false
	clients := h.clients
	h.clients = make(map[net.Conn]*client)
	h.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	for conn := range clients {
		_ = conn.Close()
	}
	if bound {
		if err := os.Remove(h.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			h.log.Printf("remove socket %s: %v", h.path, err)
		}
	}
}

func (h *Hub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
