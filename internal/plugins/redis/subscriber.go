package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
	"github.com/aria-khodro/cargo-relay/internal/platform/metrics"
)

// Subscriber is the store-subscription ingress backend: a pattern
// subscription over every channel key under the configured prefix.
type Subscriber struct {
	rdb       *redis.Client
	keyPrefix string
	devMode   bool
	log       *slog.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewSubscriber(log *slog.Logger, rdb *redis.Client, keyPrefix string, devMode bool) *Subscriber {
	return &Subscriber{
		log:       log,
		rdb:       rdb,
		keyPrefix: keyPrefix,
		devMode:   devMode,
	}
}

func (s *Subscriber) Start(ctx context.Context, onEvent contracts.EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pubsub != nil {
		return nil
	}
	pubsub := s.rdb.PSubscribe(ctx, s.keyPrefix+"*")
	// Confirm the subscription before reporting a successful start.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	s.pubsub = pubsub
	s.done = make(chan struct{})

	ch := pubsub.Channel()
	go func() {
		defer close(s.done)
		for msg := range ch {
			s.handleMessage(ctx, msg.Channel, msg.Payload, onEvent)
		}
	}()

	s.log.Info("redis ingress - start - listening for redis events", "pattern", s.keyPrefix+"*")
	return nil
}

// handleMessage decodes one raw pub/sub message. Decode failures are logged
// and discarded; redelivery is the backend's concern, not this system's.
func (s *Subscriber) handleMessage(ctx context.Context, channelKey, payload string, onEvent contracts.EventHandler) {
	var event domain.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		metrics.IngressDropped.WithLabelValues("redis").Inc()
		s.log.WarnContext(ctx, "redis ingress - handle message - discarded non-json message", "channel_key", channelKey)
		return
	}
	if event.Name == "" {
		metrics.IngressDropped.WithLabelValues("redis").Inc()
		s.log.WarnContext(ctx, "redis ingress - handle message - discarded message without event name", "channel_key", channelKey)
		return
	}
	channel := strings.TrimPrefix(channelKey, s.keyPrefix)
	if s.devMode {
		s.log.Info("redis ingress - handle message - event received", "channel", channel, "event", event.Name)
	}
	metrics.IngressEvents.WithLabelValues("redis").Inc()
	if err := onEvent(ctx, channel, event); err != nil {
		s.log.ErrorContext(ctx, "redis ingress - handle message - callback failed", "channel", channel, "event", event.Name, "err", err)
	}
}

// Stop disconnects the subscription and waits for the reader goroutine so no
// callback runs after it returns. Safe without a prior Start and safe to call
// twice.
func (s *Subscriber) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pubsub == nil {
		return nil
	}
	err := s.pubsub.Close()
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.pubsub = nil
	s.done = nil
	return err
}
