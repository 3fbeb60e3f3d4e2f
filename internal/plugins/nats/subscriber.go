// Package nats provides an optional ingress backend over a NATS wildcard
// subject. Disabled by default; the subject suffix becomes the channel name.
package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	natspkg "github.com/nats-io/nats.go"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
	"github.com/aria-khodro/cargo-relay/internal/platform/metrics"
)

type Subscriber struct {
	url           string
	subjectPrefix string
	log           *slog.Logger

	mu     sync.Mutex
	conn   *natspkg.Conn
	sub    *natspkg.Subscription
	closed chan struct{}
}

func NewSubscriber(log *slog.Logger, url, subjectPrefix string) *Subscriber {
	return &Subscriber{
		log:           log,
		url:           url,
		subjectPrefix: subjectPrefix,
	}
}

func (s *Subscriber) Start(ctx context.Context, onEvent contracts.EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}
	closed := make(chan struct{})
	conn, err := natspkg.Connect(s.url, natspkg.ClosedHandler(func(*natspkg.Conn) {
		close(closed)
	}))
	if err != nil {
		return err
	}
	sub, err := conn.Subscribe(s.subjectPrefix+">", func(msg *natspkg.Msg) {
		s.handleMessage(ctx, msg.Subject, msg.Data, onEvent)
	})
	if err != nil {
		conn.Close()
		return err
	}
	s.conn = conn
	s.sub = sub
	s.closed = closed
	s.log.Info("nats ingress - start - listening for nats events", "subject", s.subjectPrefix+">")
	return nil
}

func (s *Subscriber) handleMessage(ctx context.Context, subject string, payload []byte, onEvent contracts.EventHandler) {
	var event domain.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		metrics.IngressDropped.WithLabelValues("nats").Inc()
		s.log.WarnContext(ctx, "nats ingress - handle message - discarded non-json message", "subject", subject)
		return
	}
	if event.Name == "" {
		metrics.IngressDropped.WithLabelValues("nats").Inc()
		s.log.WarnContext(ctx, "nats ingress - handle message - discarded message without event name", "subject", subject)
		return
	}
	channel := strings.TrimPrefix(subject, s.subjectPrefix)
	metrics.IngressEvents.WithLabelValues("nats").Inc()
	if err := onEvent(ctx, channel, event); err != nil {
		s.log.ErrorContext(ctx, "nats ingress - handle message - callback failed", "channel", channel, "event", event.Name, "err", err)
	}
}

// Stop drains the subscription so in-flight handlers finish, then closes the
// connection. Safe without a prior Start and safe to call twice.
func (s *Subscriber) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Drain()
	select {
	case <-s.closed:
	case <-ctx.Done():
		s.conn.Close()
		err = ctx.Err()
	}
	s.conn = nil
	s.sub = nil
	s.closed = nil
	return err
}
