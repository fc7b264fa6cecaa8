package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/bridge"
	"github.com/gogpu/gpubridge/config"
)

const writeTimeout = 10 * time.Second

// client is one websocket connection. gorilla connections allow a single
// concurrent writer, so every write goes through mu.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// hub tracks connected clients for event broadcast.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     *slog.Logger
}

func newHub(log *slog.Logger) *hub {
	return &hub{clients: make(map[*client]struct{}), log: log}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *hub) snapshot() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// broadcast is the registry's event handler.
func (h *hub) broadcast(e gpubridge.Event) {
	msg, err := bridge.EncodeEvent(e)
	if err != nil {
		h.log.Warn("gpubridged: encode event", "err", err)
		return
	}
	for _, c := range h.snapshot() {
		if err := c.write(msg); err != nil {
			h.log.Debug("gpubridged: event dropped", "event", e.Type, "err", err)
		}
	}
}

func (h *hub) closeAll() {
	for _, c := range h.snapshot() {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
		c.mu.Unlock()
		_ = c.conn.Close()
	}
}

type server struct {
	cfg      *config.Config
	dispatch *bridge.Dispatcher
	hub      *hub
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func newServer(cfg *config.Config, d *bridge.Dispatcher, h *hub, log *slog.Logger) *server {
	s := &server{cfg: cfg, dispatch: d, hub: h, log: log}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return cfg.AllowOrigin(r.Header.Get("Origin"), r.Host)
		},
	}
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("gpubridged: upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.cfg.MaxMessageBytes)

	c := &client{conn: conn}
	s.hub.add(c)
	defer s.hub.remove(c)
	s.log.Debug("gpubridged: client connected", "remote", r.RemoteAddr)

	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("gpubridged: read failed", "remote", r.RemoteAddr, "err", err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		if err := c.write(s.dispatch.Handle(r.Context(), msg)); err != nil {
			s.log.Debug("gpubridged: write failed", "remote", r.RemoteAddr, "err", err)
			return
		}
	}
}
