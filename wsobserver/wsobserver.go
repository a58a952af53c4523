// Package wsobserver fans out live diagnostics.Record events to
// WebSocket-connected viewers. It implements diagnostics.Diagnostics,
// so wiring it into an engine is the same WithDiagnostics call as any
// other sink; every connected client receives every record as JSON,
// one text frame per step.
package wsobserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/fluxorio/iotfsm/diagnostics"
	"github.com/fluxorio/iotfsm/internal/corelog"
)

// Hub tracks connected WebSocket clients and broadcasts every Observe
// call to all of them.
type Hub struct {
	upgrader websocket.Upgrader
	logger   corelog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan diagnostics.Record
}

// NewHub builds a Hub. allowAnyOrigin controls the upgrader's
// CheckOrigin, which returns it unconditionally: true accepts any
// origin, matching a development or same-host deployment; false
// rejects every upgrade request, same-origin ones included. The Hub
// exposes no way to replace the upgrader afterwards.
func NewHub(logger corelog.Logger, allowAnyOrigin bool) *Hub {
	if logger == nil {
		logger = corelog.New()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return allowAnyOrigin },
		},
		clients: make(map[*websocket.Conn]chan diagnostics.Record),
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and
// registers it as a broadcast recipient until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("wsobserver: upgrade failed: %v", err)
		return
	}
	out := make(chan diagnostics.Record, 64)
	h.mu.Lock()
	h.clients[conn] = out
	h.mu.Unlock()

	go h.writeLoop(conn, out)
	go h.readLoop(conn)
}

// readLoop exists only to notice the client disappearing — the
// protocol is broadcast-only, so any message from the client is
// discarded, but a closed or errored connection must still trigger
// cleanup.
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, out chan diagnostics.Record) {
	for rec := range out {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	out, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		close(out)
	}
	conn.Close()
}

// Observe implements diagnostics.Diagnostics: it fans rec out to every
// connected client's buffered channel, dropping it for any client whose
// buffer is full rather than blocking the engine's Step call.
func (h *Hub) Observe(rec diagnostics.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, out := range h.clients {
		select {
		case out <- rec:
		default:
			h.logger.Debugf("wsobserver: dropping record for slow client %s", conn.RemoteAddr())
		}
	}
}

// ClientCount returns the number of currently connected clients, for a
// status endpoint to report.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and stops accepting broadcasts.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*websocket.Conn]chan diagnostics.Record)
	h.mu.Unlock()
	for conn, out := range clients {
		close(out)
		conn.Close()
	}
}
