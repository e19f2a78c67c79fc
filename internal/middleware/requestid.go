package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/smart-todo/smart-todo-list/internal/request"
)

// requestIDPattern accepts client supplied IDs that are safe to log and echo
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// RequestID attaches a request ID to the context and echoes it in the
// response. A well-formed X-Request-ID from the client is reused.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(request.HeaderRequestID)
		if !requestIDPattern.MatchString(id) {
			id = uuid.NewString()
		}

		w.Header().Set(request.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}
