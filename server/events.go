package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/projecteru2/core/log"
	"github.com/projecteru2/ovxview/metrics"
	"github.com/projecteru2/ovxview/utils"
)

const (
	defaultHeartbeat = 15 * time.Second
	subscriberBuffer = 16
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data any
}

// Hub fans pipeline events out to event stream clients. Slow clients miss
// events instead of blocking the pipeline.
type Hub struct {
	mu        sync.Mutex
	subs      map[string]chan Event
	heartbeat time.Duration
}

// NewHub creates a hub. Zero heartbeat means 15s.
func NewHub(heartbeat time.Duration) *Hub {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &Hub{subs: map[string]chan Event{}, heartbeat: heartbeat}
}

// Publish implements pipeline.Publisher.
func (h *Hub) Publish(event string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- Event{Name: event, Data: data}:
		default:
		}
	}
}

// Subscribe registers a client. cancel unregisters it and closes ch.
func (h *Hub) Subscribe() (id string, ch <-chan Event, cancel func()) {
	id = utils.NewID()
	c := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[id] = c
	h.mu.Unlock()
	metrics.Subscribers.Inc()

	var once sync.Once
	return id, c, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(c)
			h.mu.Unlock()
			metrics.Subscribers.Dec()
		})
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP streams events until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.WithFunc("server.events")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}
	id, events, cancel := h.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, ": subscribed %s\n\n", id)
	flusher.Flush()
	logger.Debugf(ctx, "subscriber %s connected", id)

	tick := time.NewTicker(h.heartbeat)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Debugf(ctx, "subscriber %s gone", id)
			return
		case ev := <-events:
			data, err := json.Marshal(ev.Data)
			if err != nil {
				logger.Warnf(ctx, "encode %s event: %v", ev.Name, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
				return
			}
			flusher.Flush()
		case <-tick.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
