package middleware

import (
	"net/http"

	logpkg "github.com/smart-todo/smart-todo-list/internal/logger"
	"github.com/smart-todo/smart-todo-list/internal/request"
	"go.uber.org/zap"
)

// Audit logs abuse-related responses (rate limiting, oversized or
// mistyped bodies) together with the client address.
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			var event string
			switch wrapped.statusCode {
			case http.StatusTooManyRequests:
				event = "rate_limit_violation"
			case http.StatusRequestEntityTooLarge:
				event = "oversized_request_rejected"
			case http.StatusUnsupportedMediaType:
				event = "unsupported_media_type_rejected"
			default:
				return
			}

			logger.Warn(event,
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				zap.String("request_id", request.RequestID(r)),
			)
		})
	}
}
