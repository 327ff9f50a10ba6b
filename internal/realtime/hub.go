package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/taskflow-api/internal/events"
)

// ErrHubClosed is returned when registering a client on a closed hub.
var ErrHubClosed = errors.New("realtime hub is closed")

// DefaultClientBuffer is the per-client send buffer used when none is configured.
const DefaultClientBuffer = 32

// Envelope is the wire format of every WebSocket frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hub tracks connected clients and broadcasts frames to all of them.
type Hub struct {
	mu           sync.RWMutex
	clients      map[*Client]struct{}
	closed       bool
	clientBuffer int
	emitter      events.EventEmitter
	logger       *slog.Logger
}

var _ events.EventHandler = (*Hub)(nil)

// NewHub creates an empty hub. clientBuffer bounds each client's outbound queue.
func NewHub(clientBuffer int, logger *slog.Logger) *Hub {
	if clientBuffer <= 0 {
		clientBuffer = DefaultClientBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:      make(map[*Client]struct{}),
		clientBuffer: clientBuffer,
		logger:       logger.With(slog.String("component", "realtime_hub")),
	}
}

// SetEmitter routes client-originated events through emitter instead of
// broadcasting them directly. Must be called before clients connect.
func (h *Hub) SetEmitter(emitter events.EventEmitter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.emitter = emitter
}

// HandleEvent broadcasts event to every connected client.
func (h *Hub) HandleEvent(_ context.Context, event *events.Event) error {
	frame, err := json.Marshal(Envelope{Event: event.Name, Data: event.Payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s frame: %w", event.Name, err)
	}
	h.Broadcast(frame)
	return nil
}

// Broadcast queues frame on every client without blocking. Clients whose
// buffer is full miss the frame.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.logger.Warn("client buffer full, dropping frame",
				"user_id", c.userID,
				"buffer_size", cap(c.send))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.logger.Info("realtime hub closed")
}

func (h *Hub) register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	h.clients[c] = struct{}{}
	h.logger.Debug("client connected", "user_id", c.userID, "clients", len(h.clients))
	return nil
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Debug("client disconnected", "user_id", c.userID, "clients", len(h.clients))
}

// relay handles a frame received from a client.
func (h *Hub) relay(ctx context.Context, c *Client, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		h.logger.Debug("ignoring malformed client frame", "user_id", c.userID, "error", err)
		return
	}

	if env.Event != events.EventTaskAdded {
		h.logger.Debug("ignoring client event", "user_id", c.userID, "event", env.Event)
		return
	}

	data := env.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	event, err := events.NewEvent(events.EventNewTask, data)
	if err != nil {
		h.logger.Warn("failed to build new-task event", "error", err)
		return
	}

	h.mu.RLock()
	emitter := h.emitter
	h.mu.RUnlock()

	if emitter == nil {
		_ = h.HandleEvent(ctx, event)
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		h.logger.Warn("failed to emit new-task event", "user_id", c.userID, "error", err)
	}
}
