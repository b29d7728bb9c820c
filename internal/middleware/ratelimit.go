package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimit enforces a per-client sliding window. The window tracks
// request timestamps per IP; requests beyond max inside the window get
// a 429 with a Turkish message matching the rest of the API.
func RateLimit(max int, window time.Duration) gin.HandlerFunc {
	w := newIPWindow(max, window)

	return func(c *gin.Context) {
		if !w.allow(clientIP(c), time.Now()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Çok fazla istek. Lütfen 1 dakika bekleyin.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ipWindow holds per-IP request timestamps. Keys whose timestamps have
// all aged out are swept once per window, so the map stays bounded by
// the number of clients active within one window.
type ipWindow struct {
	max    int
	window time.Duration

	mu        sync.Mutex
	requests  map[string][]time.Time
	nextSweep time.Time
}

func newIPWindow(max int, window time.Duration) *ipWindow {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &ipWindow{
		max:       max,
		window:    window,
		requests:  make(map[string][]time.Time),
		nextSweep: time.Now().Add(window),
	}
}

func (w *ipWindow) allow(ip string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.After(w.nextSweep) {
		w.sweep(now)
		w.nextSweep = now.Add(w.window)
	}

	recent := w.prune(ip, now)
	if len(recent) >= w.max {
		w.requests[ip] = recent
		return false
	}
	w.requests[ip] = append(recent, now)
	return true
}

// prune drops aged-out timestamps for one key, reusing its backing array.
func (w *ipWindow) prune(ip string, now time.Time) []time.Time {
	recent := w.requests[ip][:0]
	for _, t := range w.requests[ip] {
		if now.Sub(t) < w.window {
			recent = append(recent, t)
		}
	}
	return recent
}

// sweep evicts keys with no timestamp inside the window.
func (w *ipWindow) sweep(now time.Time) {
	for ip := range w.requests {
		if recent := w.prune(ip, now); len(recent) == 0 {
			delete(w.requests, ip)
		} else {
			w.requests[ip] = recent
		}
	}
}

// clientIP prefers the first address in X-Forwarded-For; proxies append
// to the right, so the first entry is the original client.
func clientIP(c *gin.Context) string {
	if xf := c.GetHeader("X-Forwarded-For"); xf != "" {
		if first := strings.TrimSpace(strings.Split(xf, ",")[0]); first != "" {
			return first
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
