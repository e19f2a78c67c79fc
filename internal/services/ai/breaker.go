package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when the breaker rejects a call without
// contacting the provider.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig holds the configuration for the provider circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip the circuit.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before allowing a probe.
	Timeout time.Duration

	// HalfOpenMaxRequests is the number of probes allowed while half-open.
	HalfOpenMaxRequests uint32
}

// DefaultBreakerConfig trips after three straight failures and probes again
// after thirty seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:         3,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}
}

// BreakerMetrics counts calls that went through the breaker.
type BreakerMetrics struct {
	TotalRequests        uint64 `json:"total_requests"`
	TotalSuccesses       uint64 `json:"total_successes"`
	TotalFailures        uint64 `json:"total_failures"`
	TotalRejected        uint64 `json:"total_rejected"`
	TotalCancelled       uint64 `json:"total_cancelled"`
	ConsecutiveFailures  uint32 `json:"consecutive_failures"`
	ConsecutiveSuccesses uint32 `json:"consecutive_successes"`
}

// Breaker wraps gobreaker around provider calls so that a failing provider
// is skipped quickly and callers move straight to their fallback.
type Breaker struct {
	breaker *gobreaker.CircuitBreaker
	mu      sync.RWMutex
	metrics BreakerMetrics
}

// NewBreaker creates a breaker that logs its state transitions.
func NewBreaker(name string, config BreakerConfig, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: config.HalfOpenMaxRequests,
		Interval:    0,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		// A caller giving up says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("ai_circuit_state_changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Breaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker. An open circuit returns ErrCircuitOpen
// immediately. Cancelled calls never count toward tripping the circuit; a
// deadline that expires does.
func (b *Breaker) Execute(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		b.record(err)
		return "", err
	}

	result, err := b.breaker.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			b.reject()
			return "", ErrCircuitOpen
		}
		b.record(err)
		return "", err
	}

	b.record(nil)
	text, _ := result.(string)
	return text, nil
}

// State returns "closed", "open" or "half-open".
func (b *Breaker) State() string {
	switch b.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Metrics returns a snapshot of the breaker counters.
func (b *Breaker) Metrics() BreakerMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := b.breaker.Counts()
	m := b.metrics
	m.ConsecutiveFailures = counts.ConsecutiveFailures
	m.ConsecutiveSuccesses = counts.ConsecutiveSuccesses
	return m
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metrics.TotalRequests++
	switch {
	case err == nil:
		b.metrics.TotalSuccesses++
	case errors.Is(err, context.Canceled):
		b.metrics.TotalCancelled++
	default:
		b.metrics.TotalFailures++
	}
}

func (b *Breaker) reject() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metrics.TotalRequests++
	b.metrics.TotalRejected++
}
