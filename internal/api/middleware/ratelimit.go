package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"codeprep/internal/common"
	"codeprep/internal/platform/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CounterStore increments a fixed-window counter and returns the new
// count. The window TTL is set when the counter is first created.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounterStore struct {
	rdb redis.Scripter
}

func NewRedisCounterStore(rdb *redis.Client) CounterStore {
	return &redisCounterStore{rdb: rdb}
}

// Single script so the increment and the window TTL are set
// atomically; a counter can never outlive its window.
const incrWindowScript = `local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count`

func (s *redisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return s.rdb.Eval(ctx, incrWindowScript, []string{key}, window.Milliseconds()).Int64()
}

// clientIP relies on chi's RealIP having already rewritten RemoteAddr
// for proxied requests; the port is dropped so the counter key is
// stable per client.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit enforces a fixed window of max requests per client IP.
// Counter-store failures fail open.
func RateLimit(store CounterStore, max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, err := store.Incr(r.Context(), "ratelimit:"+clientIP(r), window)
			if err != nil {
				zap.S().Warnw("rate limiter store failure", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(max) {
				metrics.RateLimited.Inc()
				common.RespondWithError(w, http.StatusTooManyRequests,
					"Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
