// Package livereload tells open shells to re-run their current navigation
// when the content root changes on disk.
package livereload

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 8
)

// Event is pushed to every subscriber as JSON.
type Event struct {
	Type     string `json:"type"`
	Path     string `json:"path,omitempty"`
	Manifest bool   `json:"manifest,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans events out to websocket subscribers. A subscriber that falls
// behind by more than its buffer is dropped.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]chan Event
	closed bool
	log    *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{subs: make(map[string]chan Event), log: log}
}

// ServeHTTP upgrades the request and streams events until the client goes
// away or is dropped.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Closed() {
		http.Error(w, "live reload is shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id, ch, ok := h.add()
	if !ok {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		return
	}
	defer h.remove(id)
	h.log.Debug("live reload subscriber joined", "id", id)

	// Reads only detect the peer closing; clients send nothing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Debug("websocket read", "id", id, "error", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug("websocket write", "id", id, "error", err)
				return
			}
		case <-gone:
			return
		}
	}
}

func (h *Hub) add() (string, chan Event, bool) {
	id := uuid.NewString()
	ch := make(chan Event, sendBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", nil, false
	}
	h.subs[id] = ch
	return id, ch, true
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Broadcast queues ev for every subscriber and returns how many received
// it.
func (h *Hub) Broadcast(ev Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for id, ch := range h.subs {
		select {
		case ch <- ev:
			sent++
		default:
			h.log.Warn("dropping slow live reload subscriber", "id", id)
			delete(h.subs, id)
			close(ch)
		}
	}
	return sent
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Closed reports whether Close has been called.
func (h *Hub) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close drops every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Notify returns a change handler that reloads manifests when one of them
// changed and then tells every subscriber to re-render.
func Notify(h *Hub, reloadManifests func(context.Context)) func(context.Context, Change) {
	return func(ctx context.Context, c Change) {
		if c.Manifest && reloadManifests != nil {
			reloadManifests(ctx)
		}
		ev := Event{Type: "reload", Manifest: c.Manifest}
		if len(c.Paths) > 0 {
			ev.Path = c.Paths[0]
		}
		n := h.Broadcast(ev)
		h.log.Info("live reload", "paths", c.Paths, "manifest", c.Manifest, "subscribers", n)
	}
}
