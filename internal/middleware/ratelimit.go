package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for the rate limiter middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit (tokens added per second).
	RequestsPerSecond float64
	// Burst is the maximum number of requests allowed in a burst.
	Burst int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterPool struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	clients map[string]*clientLimiter
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cl, ok := p.clients[ip]; ok {
		cl.lastSeen = time.Now()
		return cl.limiter
	}
	limiter := rate.NewLimiter(rate.Limit(p.cfg.RequestsPerSecond), p.cfg.Burst)
	p.clients[ip] = &clientLimiter{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// evictStale drops limiters for clients not seen within idle.
func (p *limiterPool) evictStale(idle time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ip, cl := range p.clients {
		if time.Since(cl.lastSeen) > idle {
			delete(p.clients, ip)
		}
	}
}

// RateLimiter enforces a per-client token-bucket rate limit. Translation and
// summarization both spend model tokens, so the ask endpoint is the main
// thing this protects. Exceeding the limit returns 429 with Retry-After.
// The background sweep stops when ctx is cancelled.
func RateLimiter(ctx context.Context, cfg RateLimitConfig) func(http.Handler) http.Handler {
	pool := &limiterPool{cfg: cfg, clients: make(map[string]*clientLimiter)}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pool.evictStale(10 * time.Minute)
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := pool.get(clientIP(r))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				writeTooManyRequests(w, 0)
				return
			}
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				writeTooManyRequests(w, int(delay.Seconds())+1)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client IP address from the request, stripping the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, retryAfter int) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"kind":    "RateLimited",
		"message": "too many requests",
	})
}
