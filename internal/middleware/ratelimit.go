package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
	"github.com/AnshRaj112/ai-journal-backend/pkg/clientip"
)

// RateLimitKeyPrefix is the Redis key prefix for rate limiting
const RateLimitKeyPrefix = "ratelimit:"

// Limiter decides whether another request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
	Window() time.Duration
}

// RedisLimiter is a fixed-window counter shared by every instance.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	redisKey := RateLimitKeyPrefix + key

	// SET NX opens the window with its TTL; INCR keeps it
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, redisKey, 0, l.window)
		incr = pipe.Incr(ctx, redisKey)
		return nil
	})
	if err != nil {
		return true, l.limit, err
	}
	n := incr.Val()

	count := int(n)
	if count > l.limit {
		return false, 0, nil
	}
	return true, l.limit - count, nil
}

func (l *RedisLimiter) Limit() int            { return l.limit }
func (l *RedisLimiter) Window() time.Duration { return l.window }

// LocalLimiter is the in-process fallback when Redis is not configured.
type LocalLimiter struct {
	buckets *IPLimiter
	limit   int
	window  time.Duration
}

func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		buckets: NewIPLimiter(rate.Every(window/time.Duration(limit)), limit),
		limit:   limit,
		window:  window,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	lim := l.buckets.get(key)
	if !lim.Allow() {
		return false, 0, nil
	}
	remaining := int(lim.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, nil
}

func (l *LocalLimiter) Limit() int            { return l.limit }
func (l *LocalLimiter) Window() time.Duration { return l.window }

// Close stops the bucket janitor.
func (l *LocalLimiter) Close() { l.buckets.Close() }

// RateLimit applies limiter per client IP and route. Limiter errors fail open.
func RateLimit(limiter Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// /api/auth/login and /auth/login share a bucket
			key := fmt.Sprintf("%s:%s", strings.TrimPrefix(r.URL.Path, "/api"), clientip.RealClientIP(r))

			allowed, remaining, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
				writeError(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.", string(apperrors.KindRateLimited))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
