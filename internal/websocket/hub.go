// Package websocket streams ingest-run progress to review clients. A
// single Hub fans broadcast frames out to every registered client; each
// client runs the usual read/write pump pair over a gorilla connection.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts messages to
// them. Register, unregister and broadcast all go through channels owned
// by the run loop; the mutex only guards the client set for readers.
// Frames are queued and send channels closed only through the client's
// guarded trySend/closeSend, so a queued frame can never race a close.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	stopped bool
	quit    chan struct{}
	done    chan struct{}

	logger *slog.Logger
}

// NewHub creates a hub. Call Start before registering clients.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start launches the hub's run loop. A stopped hub cannot be restarted.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running || h.stopped {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// Stop shuts the run loop down and returns once it has disconnected
// every client.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

			h.sendDirect(client, events.Message{
				Type:      events.MessageTypeConnect,
				Timestamp: time.Now(),
				Data: events.ConnectPayload{
					Status:   "connected",
					ClientID: client.id,
					Message:  "connected to ledger progress stream",
				},
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client unregistered",
				slog.String("client_id", client.id),
				slog.Duration("connected_for", time.Since(client.connectedAt)),
				slog.Int("total_clients", count))

		case message := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				targets = append(targets, client)
			}
			h.mu.RUnlock()

			for _, client := range targets {
				if client.trySend(message) {
					continue
				}
				// Buffer full means the client stopped draining; drop
				// it rather than stall every other client.
				h.mu.Lock()
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					client.closeSend()
				}
				h.mu.Unlock()
				h.logger.Warn("client send buffer full, disconnecting",
					slog.String("client_id", client.id))
			}
		}
	}
}

// sendDirect queues a message for one client, skipping the broadcast fan-out.
func (h *Hub) sendDirect(client *Client, msg events.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return
	}
	if !client.trySend(data) {
		h.logger.Warn("dropping direct message, client buffer full",
			slog.String("client_id", client.id))
	}
}

// sendError queues a MessageTypeError frame for one client, best effort.
func (h *Hub) sendError(client *Client, code, message string, fatal bool) {
	client.trySend(errorFrame(code, message, fatal))
}

// errorFrame encodes a MessageTypeError frame. The payload is plain
// strings, so marshalling cannot fail.
func errorFrame(code, message string, fatal bool) []byte {
	data, _ := json.Marshal(events.Message{
		Type:      events.MessageTypeError,
		Timestamp: time.Now(),
		Data: events.ErrorPayload{
			Code:    code,
			Message: message,
			Fatal:   fatal,
		},
	})
	return data
}

// Broadcast sends one frame to every connected client. Safe to call from
// any goroutine; drops the frame when the hub is stopped. A payload that
// fails to encode is replaced with a MessageTypeError frame so clients
// learn they missed an update.
func (h *Hub) Broadcast(msg events.Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		data = errorFrame(events.ErrCodeServerError,
			"failed to encode "+string(msg.Type)+" frame", false)
	}

	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}

// Register queues a client for registration with the run loop. When the
// hub is already stopped the client's send channel is closed so its
// write pump exits.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.closeSend()
	}
}

// Unregister queues a client for removal. Never blocks after shutdown;
// the run loop's own teardown already closed the client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
