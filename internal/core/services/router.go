package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
	"github.com/aria-khodro/cargo-relay/internal/platform/metrics"
)

var routerTracer = otel.Tracer("router-service")

type IRouter interface {
	// Route issues delivery for one ingress event and fans it out to the
	// side-effect paths.
	Route(ctx context.Context, channel string, event domain.Event) error
}

// Router is the fan-out point between ingress and the transport layer. The
// delivery decision is echo-suppressed: an event whose origin socket is still
// connected goes to the other members of the channel only.
type Router struct {
	transport      contracts.Transport
	dispatcher     *Dispatcher
	coords         *CoordsBuffer
	webhook        contracts.WebhookSink // nil when webhook forwarding is disabled
	telemetryEvent string
	log            *slog.Logger
}

func NewRouter(
	log *slog.Logger,
	transport contracts.Transport,
	dispatcher *Dispatcher,
	coords *CoordsBuffer,
	webhook contracts.WebhookSink,
	telemetryEvent string,
) *Router {
	return &Router{
		log:            log,
		transport:      transport,
		dispatcher:     dispatcher,
		coords:         coords,
		webhook:        webhook,
		telemetryEvent: telemetryEvent,
	}
}

func (r *Router) Route(ctx context.Context, channel string, event domain.Event) error {
	ctx, span := routerTracer.Start(ctx, "Router.Route", trace.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("event", event.Name),
	))
	defer span.End()

	var err error
	if event.SocketID != "" && r.transport.Has(event.SocketID) {
		err = r.transport.ToOthers(ctx, event.SocketID, channel, event.Name, event.Data)
	} else {
		err = r.transport.ToAll(ctx, channel, event.Name, event.Data)
	}
	if err != nil {
		span.RecordError(err)
		r.log.ErrorContext(ctx, "router - route - delivery failed", "channel", channel, "event", event.Name, "err", err)
	}
	metrics.RoutedEvents.Inc()

	// Side effects run after the delivery decision has been issued and
	// independently of it and of each other. The forward context must outlive
	// the ingress request that produced the event.
	fwdCtx := context.WithoutCancel(ctx)
	go r.forwardPush(fwdCtx, channel, event)
	if r.webhook != nil {
		go r.forwardWebhook(fwdCtx, channel, event)
	}
	if event.Name == r.telemetryEvent {
		r.coords.Append(event.Data)
	}
	return err
}

func (r *Router) forwardPush(ctx context.Context, channel string, event domain.Event) {
	outcome, err := r.dispatcher.Dispatch(ctx, channel, event)
	if err != nil {
		metrics.SideEffectFailures.WithLabelValues("push").Inc()
		r.log.ErrorContext(ctx, "router - forward push - dispatch failed", "channel", channel, "event", event.Name, "err", err)
		return
	}
	if len(outcome.FailedTokens) > 0 {
		r.log.WarnContext(ctx, "router - forward push - partial delivery", "channel", channel, "sent", outcome.Sent, "failed", len(outcome.FailedTokens))
	}
}

func (r *Router) forwardWebhook(ctx context.Context, channel string, event domain.Event) {
	if err := r.webhook.SendEvent(ctx, channel, event.Name, event.Data); err != nil {
		metrics.SideEffectFailures.WithLabelValues("webhook").Inc()
		r.log.ErrorContext(ctx, "router - forward webhook - send failed", "channel", channel, "event", event.Name, "err", err)
	}
}
