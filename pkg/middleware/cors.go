package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORSOptions mirrors the apiOriginAllow configuration surface.
type CORSOptions struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
}

// CORS builds the CORS middleware for the HTTP ingress routes.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: splitList(opts.AllowOrigin),
		AllowedMethods: splitList(opts.AllowMethods),
		AllowedHeaders: splitList(opts.AllowHeaders),
	})
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
