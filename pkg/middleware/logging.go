package middleware

import (
	"log/slog"
	"net/http"

	"github.com/aria-khodro/cargo-relay/pkg/logging"
)

// RequestLogger injects a request-scoped logger into the context and logs
// each incoming request.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := log.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)

			ctx := logging.WithContext(r.Context(), reqLog)
			reqLog.Debug("request started")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
