package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultLimiterIdleTTL is how long a client's bucket survives without traffic.
const DefaultLimiterIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client address.
type ClientLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	clients   map[string]*clientBucket
	lastSweep time.Time
	now       func() time.Time
}

func NewClientLimiter(limit rate.Limit, burst int, idleTTL time.Duration) *ClientLimiter {
	if idleTTL <= 0 {
		idleTTL = DefaultLimiterIdleTTL
	}
	return &ClientLimiter{
		limit:   limit,
		burst:   burst,
		idleTTL: idleTTL,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	b, ok := l.clients[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for longer than idleTTL. Caller holds mu.
func (l *ClientLimiter) sweep(now time.Time) {
	for key, b := range l.clients {
		if now.Sub(b.lastSeen) >= l.idleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

func (l *ClientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// clientKey is the host part of RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests with 429 once the caller's bucket is exhausted.
// A nil limiter disables limiting.
func RateLimit(l *ClientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
