package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
	"github.com/aria-khodro/cargo-relay/internal/platform/metrics"
)

var dispatchTracer = otel.Tracer("dispatcher-service")

type IDispatcher interface {
	// Dispatch resolves recipients for one routed event and sends a single
	// multicast push. Unknown events and empty target sets are silent no-ops.
	Dispatch(ctx context.Context, channel string, event domain.Event) (domain.DispatchOutcome, error)
}

// Dispatcher maps routed events to push notifications. Tokens are resolved
// fresh per event from the store; the provider call is awaited as one unit so
// the outcome is never partially observed.
type Dispatcher struct {
	tokens   contracts.TokenStore
	provider contracts.PushProvider
	log      *slog.Logger
}

func NewDispatcher(log *slog.Logger, tokens contracts.TokenStore, provider contracts.PushProvider) *Dispatcher {
	return &Dispatcher{
		log:      log,
		tokens:   tokens,
		provider: provider,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, channel string, event domain.Event) (domain.DispatchOutcome, error) {
	var data domain.EventData
	if len(event.Data) > 0 {
		// Payloads without the dispatcher's fields are fine; they resolve to
		// an unknown template below.
		_ = json.Unmarshal(event.Data, &data)
	}

	note, scope, ok := domain.ResolveTemplate(event.Name, data)
	if !ok || data.Clients == "" {
		return domain.DispatchOutcome{}, nil
	}

	ctx, span := dispatchTracer.Start(ctx, "Dispatcher.Dispatch", trace.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("event", event.Name),
		attribute.String("scope", string(scope)),
	))
	defer span.End()

	tokens, err := d.tokens.Tokens(ctx, scope, data.Clients)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token resolution failed")
		return domain.DispatchOutcome{}, fmt.Errorf("dispatcher: resolve tokens: %w", err)
	}
	if len(tokens) == 0 {
		return domain.DispatchOutcome{}, nil
	}
	span.SetAttributes(attribute.Int("tokens", len(tokens)))

	msg := domain.PushMessage{
		Tokens: tokens,
		Title:  note.Title,
		Body:   note.Body,
		Data: map[string]string{
			"screen":  "CargoHomeScreen",
			"channel": channel,
		},
		Tag: channel,
	}

	result, err := d.provider.SendMulticast(ctx, scope, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "multicast failed")
		return domain.DispatchOutcome{}, fmt.Errorf("dispatcher: multicast send: %w", err)
	}

	// Failure indices correlate with the tokens array positionally.
	var outcome domain.DispatchOutcome
	for i, resp := range result.Responses {
		if resp.Success {
			outcome.Sent++
			continue
		}
		outcome.FailedTokens = append(outcome.FailedTokens, tokens[i])
	}
	if n := len(outcome.FailedTokens); n > 0 {
		metrics.PushTokenFailures.Add(float64(n))
		d.log.ErrorContext(ctx, "dispatcher - dispatch - provider reported failures", "channel", channel, "event", event.Name, "failed", n, "sent", outcome.Sent)
		for i, token := range outcome.FailedTokens {
			d.log.WarnContext(ctx, "dispatcher - dispatch - failed token", "index", i, "token", token)
		}
	}
	return outcome, nil
}
