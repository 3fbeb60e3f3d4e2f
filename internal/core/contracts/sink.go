package contracts

import (
	"context"
	"encoding/json"
)

// WebhookSink receives routed events and bulk telemetry batches. Failures are
// logged and counted by the caller, never retried here.
type WebhookSink interface {
	SendEvent(ctx context.Context, channel, event string, data json.RawMessage) error
	SendCoords(ctx context.Context, coords []json.RawMessage) error
}
