package middleware

import (
	"context"
	"net/http"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

type identityKeyType struct{}

var identityKey = identityKeyType{}

// AdmissionMiddleware validates the handshake bearer credential against the
// identity service before the connection reaches any ingress or router logic.
// Absence of a credential or a rejected check refuses the connection.
func AdmissionMiddleware(verifier contracts.IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := r.Header.Get("Authorization")
			if bearer == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			identity, err := verifier.Verify(r.Context(), bearer)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity attached by AdmissionMiddleware.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
