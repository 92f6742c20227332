package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tripdesk/backoffice/pkg/ctxutil"
)

// idleLimiterTTL is how long an unused limiter survives cleanup.
const idleLimiterTTL = 10 * time.Minute

// KeyFunc picks the limiter a request is charged to.
type KeyFunc func(r *http.Request) string

// ByUserOrIP charges authenticated requests to the user and anonymous ones
// to the client IP.
func ByUserOrIP(r *http.Request) string {
	if userID, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
		return "user:" + userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// RateLimiter keeps one rate.Limiter per key.
type RateLimiter struct {
	limiters sync.Map // map[string]*keyedLimiter
	stop     chan struct{}
	once     sync.Once
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// NewRateLimiter creates a rate limiter with background cleanup.
// Call Stop() on shutdown.
func NewRateLimiter(cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{stop: make(chan struct{})}
	go rl.cleanup(cleanupInterval)
	return rl
}

// Stop terminates the background cleanup goroutine. Safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limit returns middleware allowing maxPerMinute requests per key, with a
// burst of maxPerMinute. maxPerMinute <= 0 disables limiting.
func (rl *RateLimiter) Limit(maxPerMinute int, key KeyFunc) Middleware {
	return func(next http.Handler) http.Handler {
		if maxPerMinute <= 0 {
			return next
		}
		retryAfter := strconv.Itoa(60/maxPerMinute + 1)
		every := rate.Every(time.Minute / time.Duration(maxPerMinute))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.getLimiter(key(r), every, maxPerMinute).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) getLimiter(key string, every rate.Limit, burst int) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := rl.limiters.Load(key); ok {
		kl := v.(*keyedLimiter)
		kl.lastSeen.Store(now)
		return kl.limiter
	}

	kl := &keyedLimiter{limiter: rate.NewLimiter(every, burst)}
	kl.lastSeen.Store(now)
	v, _ := rl.limiters.LoadOrStore(key, kl)
	return v.(*keyedLimiter).limiter
}

// evictIdle drops limiters not used since before now-idleLimiterTTL.
func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.limiters.Range(func(key, value any) bool {
		last := time.Unix(0, value.(*keyedLimiter).lastSeen.Load())
		if now.Sub(last) > idleLimiterTTL {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}
