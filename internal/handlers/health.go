package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	logpkg "github.com/smart-todo/smart-todo-list/internal/logger"
	"github.com/smart-todo/smart-todo-list/internal/services/ai"
	"go.uber.org/zap"
)

// Version is reported by /version and the root endpoint
const Version = "1.0.0"

const healthCheckTimeout = 5 * time.Second

// Pinger is a dependency that can report its reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// RedisPinger checks a Redis connection
func RedisPinger(client redis.UniversalClient) Pinger {
	return PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// AIStatusReporter exposes the state of the AI integration
type AIStatusReporter interface {
	Status() ai.Status
}

// HealthChecker handles health check requests
type HealthChecker struct {
	db     Pinger
	redis  Pinger
	ai     AIStatusReporter
	logger *zap.Logger
}

// NewHealthChecker creates a new health checker. redisPinger and aiStatus may be nil.
func NewHealthChecker(db, redisPinger Pinger, aiStatus AIStatusReporter, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{db: db, redis: redisPinger, ai: aiStatus, logger: logger}
}

// RegisterRoutes registers the service endpoints on the root router
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.Root).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/version", h.Version).Methods("GET")
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	AI        *ai.Status        `json:"ai,omitempty"`
}

// HealthCheck handles the /healthz endpoint. With ?mode=extended it checks
// the database and, when configured, Redis. The AI integration is reported
// but never makes the service unhealthy since suggestions degrade gracefully.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		respondJSON(w, http.StatusOK, response)
		return
	}

	checks := make(map[string]string)
	checks["database"] = h.check(r.Context(), "database", h.db)
	if h.redis != nil {
		checks["redis"] = h.check(r.Context(), "redis", h.redis)
	}
	for _, result := range checks {
		if result != "healthy" {
			response.Status = "unhealthy"
		}
	}
	response.Checks = checks

	if h.ai != nil {
		status := h.ai.Status()
		response.AI = &status
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	respondJSON(w, statusCode, response)
}

// check pings dep and returns "healthy" or a sanitized failure description
func (h *HealthChecker) check(ctx context.Context, name string, dep Pinger) string {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := dep.Ping(ctx); err != nil {
		h.logger.Warn("health_check_failed",
			zap.String("dependency", name),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return "unhealthy: " + logpkg.SanitizeError(err)
	}
	return "healthy"
}

// Health is the plain liveness endpoint
func (h *HealthChecker) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Version reports the API version
func (h *HealthChecker) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Root describes the API and where to find its documentation
func (h *HealthChecker) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Smart Todo List API",
		"version": Version,
		"docs":    "/api/v1/openapi.json",
		"api":     "/api/v1",
	})
}
