package contracts

import (
	"context"

	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

// EventHandler is the shared callback every ingress backend feeds.
type EventHandler func(ctx context.Context, channel string, event domain.Event) error

// IngressBackend produces a stream of (channel, event) pairs from an external
// signal source.
type IngressBackend interface {
	// Start attaches the callback and begins consuming. A backend must not
	// invoke onEvent after Stop returns.
	Start(ctx context.Context, onEvent EventHandler) error
	// Stop detaches and releases backend resources. Safe to call more than
	// once and safe to call without a prior Start.
	Stop(ctx context.Context) error
}
