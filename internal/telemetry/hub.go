// Package telemetry streams snapshots to WebSocket clients and takes
// sheet and rudder commands back from them.
package telemetry

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/san-kum/sailsim/internal/logging"
	"github.com/san-kum/sailsim/internal/sailing"
)

const sendBuffer = 64

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, sendBuffer)}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans snapshots out to every connected client. A client that falls
// behind loses frames rather than slowing the simulation.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	every   int
	log     *logging.Logger
}

func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.Discard()
	}
	return &Hub{clients: make(map[*client]struct{}), every: 1, log: log}
}

// Every thins the stream to one snapshot in n steps.
func (h *Hub) Every(n int) *Hub {
	if n > 0 {
		h.every = n
	}
	return h
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("client connected", "remote", c.remote(), "clients", n)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.close()
		h.log.Info("client disconnected", "remote", c.remote(), "clients", n)
	}
}

func (c *client) remote() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends snap to every client as JSON.
func (h *Hub) Broadcast(snap sailing.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return logging.Wrap(err, "encode snapshot %d", snap.Step)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.log.Debug("dropping frame for slow client", "remote", c.remote(), "step", snap.Step)
		}
	}
	return nil
}

// OnStep lets the hub observe a simulator directly.
func (h *Hub) OnStep(snap sailing.Snapshot, in sailing.Input, t float64) {
	if snap.Step%h.every != 0 {
		return
	}
	if err := h.Broadcast(snap); err != nil {
		h.log.Warn("broadcast failed", "error", err)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
}
