package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smart-todo/smart-todo-list/internal/request"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	// DefaultRateLimit is the default limit per client IP, in limiter's
	// "<limit>-<period>" format
	DefaultRateLimit = "20-S"

	rateLimitKeyPrefix = "smart_todo_ratelimit"
)

// NewRedisClient parses redisURL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewRateLimitStore returns a Redis backed store when a client is given and
// a process-local store otherwise.
func NewRateLimitStore(redisClient *redis.Client) (limiter.Store, error) {
	if redisClient == nil {
		return memorystore.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitKeyPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), nil
	}
	store, err := redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{
		Prefix:   rateLimitKeyPrefix,
		MaxRetry: limiter.DefaultMaxRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis rate limit store: %w", err)
	}
	return store, nil
}

// RateLimit limits requests per client IP using ulule/limiter. Store errors
// fail open so that a Redis outage does not take the API down.
func RateLimit(store limiter.Store, rateStr string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if rateStr == "" {
		rateStr = DefaultRateLimit
	}
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rateStr, err)
	}

	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	limitReached := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", strconv.Itoa(int(rate.Period.Seconds())))
		WriteError(w, r, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded, retry later", nil, logger)
	}

	return func(next http.Handler) http.Handler {
		mw := stdlibmw.NewMiddleware(instance,
			stdlibmw.WithKeyGetter(keyGetter),
			stdlibmw.WithLimitReachedHandler(limitReached),
			stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				logger.Warn("rate_limit_bypassed",
					zap.Error(err),
					zap.String("request_id", request.RequestID(r)),
				)
				next.ServeHTTP(w, r)
			}),
		)
		return mw.Handler(next)
	}, nil
}
