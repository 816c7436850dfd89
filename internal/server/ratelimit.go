package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"resumescore/internal/errors"

	"golang.org/x/time/rate"
)

// staleClientAge is how long a caller can be idle before its token
// bucket is evicted.
const staleClientAge = 10 * time.Minute

// clientLimiter is the token bucket for one caller, keyed by API key
// or client IP.
type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles analysis requests per caller using token
// buckets from golang.org/x/time/rate.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	perSec  rate.Limit
	burst   int
	done    chan struct{}
	logger  *errors.Logger
}

// NewRateLimiter creates a limiter allowing requestsPerMin sustained
// requests with bursts up to burstCapacity, and starts the background
// eviction of idle callers.
func NewRateLimiter(requestsPerMin, burstCapacity int, logger *errors.Logger) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		perSec:  rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burstCapacity,
		done:    make(chan struct{}),
		logger:  logger,
	}

	go rl.evictLoop()
	return rl
}

// Allow reports whether the caller identified by key may proceed. It
// never blocks.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{bucket: rate.NewLimiter(rl.perSec, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastSeen = time.Now()
	rl.mu.Unlock()

	return cl.bucket.Allow()
}

// GetStats returns the limiter state exposed by the stats endpoint.
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]any{
		"active_clients":  len(rl.clients),
		"rate_per_second": float64(rl.perSec),
		"rate_per_minute": float64(rl.perSec) * 60.0,
		"burst_capacity":  rl.burst,
	}
}

// Close stops the eviction goroutine.
func (rl *RateLimiter) Close() {
	close(rl.done)
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(staleClientAge)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictStale()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) evictStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-staleClientAge)
	for key, cl := range rl.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}

	if rl.logger != nil {
		rl.logger.Debug("Evicted idle rate limit buckets",
			"active_clients", len(rl.clients))
	}
}

// rateLimitMiddleware throttles a handler per caller. When rate
// limiting is disabled the handler is returned unchanged.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := limitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(key) {
				s.Logger.Info("Rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"client_ip", clientIP(r))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// limitKey identifies the caller for throttling purposes. API key
// identity wins over IP so authenticated clients behind a shared
// proxy are not throttled together.
func limitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				apiKey = bearer
			}
		}
		if apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + clientIP(r)
	}
	return ""
}

// clientIP resolves the originating address, preferring proxy headers
// over the socket peer.
func clientIP(r *http.Request) string {
	for ip := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); net.ParseIP(xri) != nil {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
