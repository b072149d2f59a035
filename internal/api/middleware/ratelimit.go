package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/automarket/automarket/internal/api/response"
)

// maxTrackedClients bounds the number of per-client limiters kept in memory.
// The least recently seen client is evicted first.
const maxTrackedClients = 10000

// RateLimiter applies a token bucket per authenticated account, falling back
// to the remote IP for anonymous requests.
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a RateLimiter allowing rps requests per second with
// the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	cache, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &RateLimiter{limiters: cache, rate: rate.Limit(rps), burst: burst}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if l, ok := rl.limiters.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	// A concurrent request for the same key may have stored one first.
	if existing, ok, _ := rl.limiters.PeekOrAdd(key, l); ok {
		return existing
	}
	return l
}

// Handler returns the rate limiting middleware. It must run after Auth so the
// account identity is available.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		if !rl.limiter(key).Allow() {
			requestID := GetRequestID(r.Context())
			slog.Warn("rate limit exceeded", "key", key, "path", r.URL.Path, "requestId", requestID)

			retryAfter := 1
			if rl.rate > 0 {
				retryAfter = int(math.Ceil(1 / float64(rl.rate)))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			response.Err(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", requestID)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if identity := GetIdentity(r.Context()); identity != nil {
		return "account:" + identity.AccountID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
