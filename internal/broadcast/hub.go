package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/domain"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/metrics"
)

// SnapshotFunc returns the current session list for the initial envelope
// delivered to a newly connected subscriber.
type SnapshotFunc func() []*domain.Session

// Hub fans registry events out to every connected subscriber. Publish is
// called synchronously from inside the registry's mutation path; each
// subscriber gets events in exactly the order mutations committed. Delivery
// is best-effort per subscriber: a full buffer or broken socket drops that
// subscriber without touching the others or the originating mutation.
type Hub struct {
	mu             sync.Mutex
	subscribers    map[*websocket.Conn]*subscriberWriter
	clock          clockwork.Clock
	snapshot       SnapshotFunc
	maxSubscribers int
}

// NewHub creates a hub. snapshot supplies the session list for initial
// envelopes; maxSubscribers caps concurrent connections.
func NewHub(snapshot SnapshotFunc, clock clockwork.Clock, maxSubscribers int) *Hub {
	return &Hub{
		subscribers:    make(map[*websocket.Conn]*subscriberWriter),
		clock:          clock,
		snapshot:       snapshot,
		maxSubscribers: maxSubscribers,
	}
}

// Register adds a subscriber and sends it the initial snapshot envelope.
// The subscriber is added to the set before the snapshot is read, so an
// event racing with the read is duplicated for this subscriber, never lost.
func (h *Hub) Register(conn *websocket.Conn) error {
	h.mu.Lock()
	if len(h.subscribers) >= h.maxSubscribers {
		h.mu.Unlock()
		_ = conn.Close()
		return fmt.Errorf("max subscribers (%d) reached", h.maxSubscribers)
	}
	writer := newSubscriberWriter(conn, h.clock)
	h.subscribers[conn] = writer
	count := len(h.subscribers)
	h.mu.Unlock()

	metrics.ConnectedSubscribers.Set(float64(count))
	slog.Info("Subscriber connected", "total_subscribers", count)

	initial := domain.Event{
		Type:      domain.EventInitial,
		Data:      domain.SnapshotData{Sessions: h.snapshot()},
		Timestamp: h.clock.Now().UTC(),
	}
	data, err := json.Marshal(initial)
	if err != nil {
		return fmt.Errorf("failed to marshal initial snapshot: %w", err)
	}
	if !writer.enqueue(data) {
		h.Unregister(conn)
		return fmt.Errorf("subscriber buffer full before snapshot delivery")
	}
	return nil
}

// Unregister removes a subscriber and closes its writer. Safe to call for
// connections the hub no longer tracks.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	writer, ok := h.subscribers[conn]
	if ok {
		delete(h.subscribers, conn)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if !ok {
		return
	}
	writer.stop()
	metrics.ConnectedSubscribers.Set(float64(count))
	slog.Info("Subscriber disconnected", "total_subscribers", count)
}

// Publish fans an event out to every subscriber with a non-blocking enqueue.
// Slow subscribers are dropped; their writers are stopped off the caller's
// goroutine so the mutation path never waits on a dead socket.
func (h *Hub) Publish(event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "type", event.Type, "error", err)
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(event.Type).Inc()

	h.mu.Lock()
	var slow []*subscriberWriter
	for conn, writer := range h.subscribers {
		if !writer.enqueue(data) {
			slow = append(slow, writer)
			delete(h.subscribers, conn)
		}
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	for _, writer := range slow {
		metrics.SlowSubscribersEvicted.Inc()
		slog.Warn("Dropping slow subscriber", "event_type", event.Type)
		go writer.stop()
	}
	if len(slow) > 0 {
		metrics.ConnectedSubscribers.Set(float64(count))
	}
}

// SendPong answers an inbound ping on a single connection.
func (h *Hub) SendPong(conn *websocket.Conn) {
	h.mu.Lock()
	writer, ok := h.subscribers[conn]
	h.mu.Unlock()
	if !ok {
		return
	}

	data, err := json.Marshal(domain.Event{Type: domain.EventPong, Timestamp: h.clock.Now().UTC()})
	if err != nil {
		return
	}
	writer.enqueue(data)
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Stop disconnects every subscriber with a close frame.
func (h *Hub) Stop() {
	h.mu.Lock()
	writers := make([]*subscriberWriter, 0, len(h.subscribers))
	for conn, writer := range h.subscribers {
		writers = append(writers, writer)
		delete(h.subscribers, conn)
	}
	h.mu.Unlock()

	for _, writer := range writers {
		writer.stopGraceful("Server shutting down")
	}
	metrics.ConnectedSubscribers.Set(0)
	slog.Info("Broadcast hub stopped", "disconnected_subscribers", len(writers))
}
