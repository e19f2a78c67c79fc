package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

// corsMaxAge caches preflight responses for a day
const corsMaxAge = 86400

// CORS creates CORS middleware for the given origins. Preflight requests
// are answered directly with 204.
func CORS(allowedOrigins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	origins := normalizeOrigins(allowedOrigins)
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	if logger != nil {
		logger.Info("cors_configured", zap.Strings("allowed_origins", origins))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:       origins,
		AllowCredentials:     true,
		MaxAge:               corsMaxAge,
		OptionsSuccessStatus: http.StatusNoContent,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{
			"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
		},
	})
	return c.Handler
}

// normalizeOrigins trims whitespace and trailing slashes and drops duplicates
func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}
