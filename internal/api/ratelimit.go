package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cognicore/habitual/internal/logging"
)

// RedisRateLimiter is a fixed-window counter per client IP kept in Redis,
// shared by every instance pointing at the same server.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisRateLimiter allows limit requests per window for each IP.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Limit is the middleware. Requests pass through when Redis fails.
func (rl *RedisRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, windowEnd := rl.windowKey(clientIP(r), time.Now())
		reset := windowEnd.Unix()

		allowed, remaining, err := rl.allow(r.Context(), key, windowEnd)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))

		if !allowed {
			w.Header().Set("Retry-After", strconv.FormatInt(reset-time.Now().Unix(), 10))
			respondError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded, try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// windowKey names the counter for ip in the window containing now. The
// window start is part of the key, so a counter never outlives its window.
func (rl *RedisRateLimiter) windowKey(ip string, now time.Time) (string, time.Time) {
	start := now.Truncate(rl.window)
	return fmt.Sprintf("%s:%s:%d", rl.prefix, ip, start.Unix()), start.Add(rl.window)
}

func (rl *RedisRateLimiter) allow(ctx context.Context, key string, windowEnd time.Time) (allowed bool, remaining int, err error) {
	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, windowEnd)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, rl.limit, err
	}

	count := int(incr.Val())
	remaining = rl.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.limit, remaining, nil
}

// clientIP relies on middleware.RealIP having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}
