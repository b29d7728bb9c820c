package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(max int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(max, window))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r *gin.Engine, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAboveMax(t *testing.T) {
	r := newLimitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		w := get(r, "198.51.100.7")
		assert.Equal(t, http.StatusOK, w.Code, "request %d inside the window", i+1)
	}

	w := get(r, "198.51.100.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Çok fazla istek")
}

func TestRateLimitIsolatesClients(t *testing.T) {
	r := newLimitedRouter(1, time.Minute)

	assert.Equal(t, http.StatusOK, get(r, "198.51.100.7").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "198.51.100.7").Code)
	assert.Equal(t, http.StatusOK, get(r, "203.0.113.9").Code)
}

func TestRateLimitWindowExpires(t *testing.T) {
	r := newLimitedRouter(1, 20*time.Millisecond)

	assert.Equal(t, http.StatusOK, get(r, "198.51.100.7").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "198.51.100.7").Code)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, http.StatusOK, get(r, "198.51.100.7").Code)
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	w := newIPWindow(2, time.Minute)
	t0 := time.Now()

	assert.True(t, w.allow("198.51.100.7", t0))
	assert.True(t, w.allow("203.0.113.9", t0))
	assert.Len(t, w.requests, 2)

	// A request past the window triggers a sweep; idle keys are dropped
	// so the map does not grow with one-off clients.
	assert.True(t, w.allow("192.0.2.1", t0.Add(2*time.Minute)))
	assert.Len(t, w.requests, 1)
	assert.Contains(t, w.requests, "192.0.2.1")
}

func TestRateLimitUsesFirstForwardedAddress(t *testing.T) {
	r := newLimitedRouter(1, time.Minute)

	assert.Equal(t, http.StatusOK, get(r, "198.51.100.7, 10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "198.51.100.7, 10.0.0.2").Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	// A caller-supplied id is echoed back untouched.
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
