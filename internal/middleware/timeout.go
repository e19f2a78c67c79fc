package middleware

import (
	"net/http"
	"time"

	"github.com/smart-todo/smart-todo-list/internal/config"
)

// DefaultRequestTimeout is the default request timeout. config.Load keeps the
// AI call timeout below it so suggestion requests can reach their fallback.
const DefaultRequestTimeout = config.RequestTimeout

// timeoutBody is the envelope written when a handler overruns its deadline
const timeoutBody = `{"success":false,"error":"Service Unavailable","message":"Request timed out"}`

// Timeout bounds handler execution. The handler's context is cancelled at
// the deadline and the client receives a 503 JSON body.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// TimeoutHandler writes the body without a content type on timeout
			w.Header().Set("Content-Type", "application/json")
			th.ServeHTTP(w, r)
		})
	}
}
