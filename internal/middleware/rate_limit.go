package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Counter increments a windowed counter and returns the new value.
// RedisCounter implements it on Redis.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter is a fixed-window counter kept in Redis
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a new RedisCounter
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr bumps key and starts its expiry on the first hit of a window
func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// RateLimit allows limit requests per client IP per window. A nil counter
// disables limiting. Counter errors let the request through.
func RateLimit(counter Counter, limit int, window time.Duration, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if counter == nil || limit <= 0 {
			return next
		}
		return func(c echo.Context) error {
			key := fmt.Sprintf("ratelimit:poll:%s", c.RealIP())
			count, err := counter.Incr(c.Request().Context(), key, window)
			if err != nil {
				logger.Error("rate limit counter unavailable", "key", key, "error", err)
				return next(c)
			}
			if count > int64(limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
