package contracts

import (
	"context"

	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

// IdentityVerifier validates the bearer credential carried in a connection
// handshake against the identity service. A connection is admitted only on
// success; the router and dispatcher never re-validate.
type IdentityVerifier interface {
	Verify(ctx context.Context, bearer string) (domain.Identity, error)
}
