package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	logpkg "github.com/smart-todo/smart-todo-list/internal/logger"
	"github.com/smart-todo/smart-todo-list/internal/request"
	"github.com/smart-todo/smart-todo-list/internal/validation"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success   bool                    `json:"success"`
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	Details   []validation.FieldError `json:"details,omitempty"`
	Timestamp string                  `json:"timestamp"`
	Path      string                  `json:"path"`
	RequestID string                  `json:"request_id,omitempty"`
}

// ErrorHandler creates error handling middleware
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					// Log panic details server-side but don't expose to client
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("method", r.Method),
						zap.String("request_id", request.RequestID(r)),
					)
					WriteError(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred", nil, logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// WriteError sends the JSON error envelope used by every endpoint.
func WriteError(w http.ResponseWriter, r *http.Request, status int, errorType, message string, details []validation.FieldError, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Success:   false,
		Error:     errorType,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
		RequestID: request.RequestID(r),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil && logger != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		)
	}
}
