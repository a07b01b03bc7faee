package kit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// IPRateLimiter caps requests per client IP with a fixed window counter.
type IPRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]window
}

func NewIPRateLimiter(limit int, windowSeconds int) *IPRateLimiter {
	return &IPRateLimiter{
		limit:   limit,
		window:  time.Duration(windowSeconds) * time.Second,
		windows: make(map[string]window),
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[ip]
	if now.Sub(w.start) >= l.window {
		w = window{start: now}
	}
	if w.count >= l.limit {
		l.windows[ip] = w
		return false
	}

	w.count++
	l.windows[ip] = w
	return true
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if parts := strings.Split(xff, ","); len(parts) > 0 {
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
