package ingress

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
	"github.com/aria-khodro/cargo-relay/internal/platform/metrics"
)

// HTTPBackend accepts broadcast events over POST /apps/{appID}/events. The
// route is registered once; Start attaches the callback and Stop detaches it,
// after which the route answers 503.
type HTTPBackend struct {
	mu       sync.RWMutex
	onEvent  contracts.EventHandler
	inflight sync.WaitGroup
	devMode  bool
	log      *slog.Logger
}

func NewHTTPBackend(log *slog.Logger, devMode bool) *HTTPBackend {
	return &HTTPBackend{
		log:     log,
		devMode: devMode,
	}
}

// Register mounts the events route on the shared mux.
func (b *HTTPBackend) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /apps/{appID}/events", b.handleEvents)
}

func (b *HTTPBackend) Start(ctx context.Context, onEvent contracts.EventHandler) error {
	b.mu.Lock()
	b.onEvent = onEvent
	b.mu.Unlock()
	b.log.Info("http ingress - start - listening for http events")
	return nil
}

// Stop detaches the callback and drains requests that already picked it up,
// so no callback runs after Stop returns.
func (b *HTTPBackend) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.onEvent = nil
	b.mu.Unlock()
	b.inflight.Wait()
	return nil
}

type eventsBody struct {
	Channel  string          `json:"channel"`
	Channels []string        `json:"channels"`
	Name     string          `json:"name"`
	Data     json.RawMessage `json:"data"`
	SocketID string          `json:"socket_id"`
}

func (b *HTTPBackend) handleEvents(w http.ResponseWriter, r *http.Request) {
	// The in-flight count is taken under the same lock as the callback read;
	// Stop nils the callback first and then waits out this count.
	b.mu.RLock()
	onEvent := b.onEvent
	if onEvent != nil {
		b.inflight.Add(1)
	}
	b.mu.RUnlock()
	if onEvent == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "ingress stopped"})
		return
	}
	defer b.inflight.Done()

	var body eventsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		metrics.IngressDropped.WithLabelValues("http").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	channels := body.Channels
	if len(channels) == 0 && body.Channel != "" {
		channels = []string{body.Channel}
	}
	if len(channels) == 0 || body.Name == "" || emptyData(body.Data) {
		metrics.IngressDropped.WithLabelValues("http").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "event must include channel, event name and data"})
		return
	}

	event := domain.Event{
		Name:     body.Name,
		Data:     nestedJSON(body.Data),
		SocketID: body.SocketID,
	}
	if b.devMode {
		b.log.Info("http ingress - handle events - event received", "app_id", r.PathValue("appID"), "channels", channels, "event", event.Name)
	}

	// The callback is awaited per channel so a routing error surfaces to the
	// caller instead of being silently dropped.
	for _, channel := range channels {
		metrics.IngressEvents.WithLabelValues("http").Inc()
		if err := onEvent(r.Context(), channel, event); err != nil {
			b.log.ErrorContext(r.Context(), "http ingress - handle events - callback failed", "channel", channel, "event", event.Name, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// emptyData reports whether the data field is absent or carries no payload.
// JSON null and the empty string count as missing, same as an omitted field.
func emptyData(data json.RawMessage) bool {
	switch string(data) {
	case "", "null", `""`:
		return true
	}
	return false
}

// nestedJSON unwraps a data value that arrived as a JSON string containing
// JSON, falling back to the raw value when the inner parse fails.
func nestedJSON(data json.RawMessage) json.RawMessage {
	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return data
	}
	if json.Valid([]byte(inner)) {
		return json.RawMessage(inner)
	}
	return data
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
