package contracts

import (
	"context"

	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

// TokenStore resolves the device tokens registered under a tenant scope for a
// client. Targets are never cached; they are re-resolved per event.
type TokenStore interface {
	Tokens(ctx context.Context, scope domain.TenantScope, clientID string) ([]string, error)
}

// PushProvider sends one multicast to a batch of device tokens under the
// credential set of the given tenant scope. Responses are positional: index i
// reports the token at index i of msg.Tokens.
type PushProvider interface {
	SendMulticast(ctx context.Context, scope domain.TenantScope, msg domain.PushMessage) (domain.MulticastResult, error)
}
