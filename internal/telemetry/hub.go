// Package telemetry distributes command lifecycle events to SSE
// subscribers, with a per-server replay buffer for Last-Event-ID
// resume.
package telemetry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Event is one command lifecycle event.
type Event struct {
	ID     int64                  `json:"id"`
	Type   string                 `json:"type"`
	Server string                 `json:"server,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
	Ts     string                 `json:"ts"`
}

// bufferCapacity is the per-server replay depth.
const bufferCapacity = 64

// subscriberBuffer is the per-subscriber channel depth. Slow
// subscribers drop events rather than block publishers.
const subscriberBuffer = 16

// Hub fans events out to subscribers. Publishing never blocks.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextSub     int
	nextID      int64
	buffers     map[string][]Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int]chan Event),
		buffers:     make(map[string][]Event),
	}
}

// PublishCommand broadcasts a command lifecycle event.
func (h *Hub) PublishCommand(serverName, eventType string, data map[string]interface{}) {
	h.mu.Lock()

	h.nextID++
	event := Event{
		ID:     h.nextID,
		Type:   eventType,
		Server: serverName,
		Data:   data,
		Ts:     time.Now().UTC().Format(time.RFC3339),
	}

	buf := append(h.buffers[serverName], event)
	if len(buf) > bufferCapacity {
		buf = buf[len(buf)-bufferCapacity:]
	}
	h.buffers[serverName] = buf

	channels := make([]chan Event, 0, len(h.subscribers))
	for _, ch := range h.subscribers {
		channels = append(channels, ch)
	}
	h.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
			// Subscriber is not keeping up; it can resume from the
			// replay buffer.
		}
	}
}

// Subscribe registers a subscriber. The returned cancel func must be
// called exactly once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subscribers[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, id)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Replay returns buffered events with ID greater than afterID,
// optionally filtered by server name.
func (h *Hub) Replay(serverName string, afterID int64) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []Event
	if serverName != "" {
		for _, e := range h.buffers[serverName] {
			if e.ID > afterID {
				out = append(out, e)
			}
		}
		return out
	}
	for _, buf := range h.buffers {
		for _, e := range buf {
			if e.ID > afterID {
				out = append(out, e)
			}
		}
	}
	return out
}

// ServeHTTP streams events as SSE. Supports the Last-Event-ID header
// and an optional ?server= filter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	serverFilter := r.URL.Query().Get("server")

	lastID := int64(0)
	if raw := r.Header.Get("Last-Event-ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			lastID = id
		}
	}

	ch, cancel := h.Subscribe()
	defer cancel()

	for _, event := range h.Replay(serverFilter, lastID) {
		writeSSE(w, event)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-ch:
			if serverFilter != "" && event.Server != serverFilter {
				continue
			}
			writeSSE(w, event)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
}
