package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"txdash/internal/cache"
)

// Limiter keeps one token bucket per client. Idle clients are forgotten after
// IdleTTL and at most MaxClients buckets are kept.
type Limiter struct {
	clients *cache.LRUCache[*rate.Limiter]
	limit   rate.Limit
	burst   int

	totalHits atomic.Int64
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	Burst             int
	MaxClients        int
	IdleTTL           time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		MaxClients:        10000,
		IdleTTL:           10 * time.Minute,
	}
}

// NewLimiter creates a new rate limiter. Burst defaults to RequestsPerMinute.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.Burst <= 0 {
		config.Burst = config.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}

	return &Limiter{
		clients: cache.NewLRUCache[*rate.Limiter](config.MaxClients, config.IdleTTL),
		limit:   rate.Every(time.Minute / time.Duration(config.RequestsPerMinute)),
		burst:   config.Burst,
	}
}

// Allow reports whether a request from clientIP may proceed now. When it may
// not, the returned duration is how long until a token is available.
func (rl *Limiter) Allow(clientIP string) (bool, time.Duration) {
	bucket := rl.clients.GetOrCreate(clientIP, func() *rate.Limiter {
		return rate.NewLimiter(rl.limit, rl.burst)
	})

	now := time.Now()
	res := bucket.ReserveN(now, 1)
	if !res.OK() {
		rl.totalHits.Add(1)
		return false, time.Minute
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		rl.totalHits.Add(1)
		return false, delay
	}
	return true, 0
}

// Cleaner exposes the client table so a cache.Manager can purge idle entries.
func (rl *Limiter) Cleaner() cache.Cleaner {
	return rl.clients
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	return rl.clients.Size()
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

// GetMetrics returns current rate limiting metrics
func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits:   rl.totalHits.Load(),
		ClientCount: int64(rl.ActiveClients()),
	}
}

// Middleware creates HTTP middleware for rate limiting. Retry-After is set
// before onLimit runs.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := rl.Allow(extractIP(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
