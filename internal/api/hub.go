package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// hub fans one telemetry snapshot per tick out to every registered
// websocket client, generalizing niceyeti-tabular's single-client
// publishEleUpdates loop into a registered-client broadcast. Each
// client gets its own write goroutine so one slow reader cannot stall
// the others or the tick loop.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

type client struct {
	conn *websocket.Conn
	send chan telemetrySnapshot
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) broadcast(snap telemetrySnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- snap:
		default:
			// Slow client; drop this tick rather than block the hub.
		}
	}
}

// serve registers a client whose connection the caller has already
// upgraded, and runs its write pump (one goroutine) plus a minimal read
// pump to drive the
// gorilla/websocket ping/pong control-frame handlers, matching the
// pattern of niceyeti-tabular's serveWebsocket/publishEleUpdates.
func (h *hub) serve(c *client) {
	h.register(c)
	defer h.unregister(c)
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case snap, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(snap); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
