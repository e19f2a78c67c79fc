package middleware

import (
	"net/http"
	"strings"
)

// ContentType requires application/json on requests that carry a body.
// Bodyless POSTs such as POST /categories/{id}/reset-usage pass through.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")

			if contentType == "" {
				if r.ContentLength == 0 {
					next.ServeHTTP(w, r)
					return
				}
				WriteError(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type header is required", nil, nil)
				return
			}

			// application/json with or without parameters such as charset
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json") {
				WriteError(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type must be application/json", nil, nil)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
