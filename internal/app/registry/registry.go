package registry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

// Hub tracks live connections and their channel memberships and performs the
// per-socket sends. It implements contracts.Hub.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]contracts.Client            // socket_id → client
	channels map[string]map[string]contracts.Client // channel → socket_id → client
	joined   map[string]map[string]struct{}         // socket_id → channels
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]contracts.Client),
		channels: make(map[string]map[string]contracts.Client),
		joined:   make(map[string]map[string]struct{}),
	}
}

func (h *Hub) Register(c contracts.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.SocketID()] = c
	h.joined[c.SocketID()] = make(map[string]struct{})
}

// Unregister removes the client and its channel memberships.
func (h *Hub) Unregister(c contracts.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sid := c.SocketID()
	for channel := range h.joined[sid] {
		h.leave(sid, channel)
	}
	delete(h.joined, sid)
	delete(h.clients, sid)
}

func (h *Hub) Subscribe(c contracts.Client, channel string) {
	if channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	sid := c.SocketID()
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[string]contracts.Client)
	}
	h.channels[channel][sid] = c
	if h.joined[sid] == nil {
		h.joined[sid] = make(map[string]struct{})
	}
	h.joined[sid][channel] = struct{}{}
}

func (h *Hub) Unsubscribe(c contracts.Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sid := c.SocketID()
	h.leave(sid, channel)
	delete(h.joined[sid], channel)
}

// leave must be called with the lock held.
func (h *Hub) leave(socketID, channel string) {
	delete(h.channels[channel], socketID)
	if len(h.channels[channel]) == 0 {
		delete(h.channels, channel)
	}
}

func (h *Hub) Has(socketID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[socketID]
	return ok
}

func (h *Hub) ToAll(ctx context.Context, channel, event string, data json.RawMessage) error {
	return h.emit(ctx, channel, event, data, "")
}

func (h *Hub) ToOthers(ctx context.Context, socketID, channel, event string, data json.RawMessage) error {
	return h.emit(ctx, channel, event, data, socketID)
}

func (h *Hub) emit(ctx context.Context, channel, event string, data json.RawMessage, exclude string) error {
	frame, err := json.Marshal(domain.OutboundMessage{
		Event:   event,
		Channel: channel,
		Data:    data,
	})
	if err != nil {
		return err
	}
	h.mu.RLock()
	members := make([]contracts.Client, 0, len(h.channels[channel]))
	for sid, c := range h.channels[channel] {
		if sid == exclude {
			continue
		}
		members = append(members, c)
	}
	h.mu.RUnlock()
	for _, c := range members {
		// A slow or closed member must not abort the rest of the fanout.
		_ = c.Send(ctx, frame)
	}
	return nil
}
