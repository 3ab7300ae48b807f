package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newMiddlewareRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.Any("/test", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": len(body)})
	})
	return router
}

func TestCORS(t *testing.T) {
	t.Run("preflight is answered without hitting the handler", func(t *testing.T) {
		router := newMiddlewareRouter(CORS())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "https://app.thereadylab.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS",
			w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Origin, Content-Length, Content-Type, Authorization",
			w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("allows the PATCH method used by profile updates", func(t *testing.T) {
		router := newMiddlewareRouter(CORS())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "https://app.thereadylab.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("regular requests pass through with CORS headers", func(t *testing.T) {
		router := newMiddlewareRouter(CORS())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestSizeLimit(t *testing.T) {
	tests := []struct {
		name       string
		bodySize   int
		wantStatus int
	}{
		{"small request under limit", 100, http.StatusOK},
		{"request exactly at limit", 1024 * 1024, http.StatusOK},
		{"request over limit", 1024*1024 + 1, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newMiddlewareRouter(RequestSizeLimit())

			w := httptest.NewRecorder()
			body := strings.Repeat("a", tt.bodySize)
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	t.Run("GET requests are not limited", func(t *testing.T) {
		router := newMiddlewareRouter(RequestSizeLimitWithSize(10))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("custom limit applies to PATCH", func(t *testing.T) {
		router := newMiddlewareRouter(RequestSizeLimitWithSize(64))

		w := httptest.NewRecorder()
		body := strings.Repeat("a", 128)
		req := httptest.NewRequest(http.MethodPatch, "/test", strings.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestPerClientRateLimit(t *testing.T) {
	newRateLimitedRouter := func(rps, burst int) (*gin.Engine, chan struct{}) {
		cleanupStop := make(chan struct{})
		mw := PerClientRateLimit(&sync.Map{}, cleanupStop, &sync.Once{}, rps, burst)
		return newMiddlewareRouter(mw), cleanupStop
	}

	doGet := func(router *gin.Engine, remoteAddr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = remoteAddr
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("requests within the burst succeed", func(t *testing.T) {
		router, stop := newRateLimitedRouter(10, 5)
		defer close(stop)

		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, doGet(router, "127.0.0.1:12345"))
		}
	})

	t.Run("requests beyond the burst are rejected", func(t *testing.T) {
		router, stop := newRateLimitedRouter(1, 2)
		defer close(stop)

		require.Equal(t, http.StatusOK, doGet(router, "127.0.0.1:12345"))
		require.Equal(t, http.StatusOK, doGet(router, "127.0.0.1:12345"))
		assert.Equal(t, http.StatusTooManyRequests, doGet(router, "127.0.0.1:12345"))
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		router, stop := newRateLimitedRouter(1, 1)
		defer close(stop)

		require.Equal(t, http.StatusOK, doGet(router, "127.0.0.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, doGet(router, "127.0.0.1:12345"))

		assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.1:54321"))
	})
}

func TestEvictStaleRateLimiters(t *testing.T) {
	rateLimiters := &sync.Map{}
	rateLimiters.Store("1.2.3.4", &clientLimiter{
		limiter:  rate.NewLimiter(1, 1),
		lastSeen: time.Now().Add(-2 * time.Hour),
	})
	rateLimiters.Store("5.6.7.8", &clientLimiter{
		limiter:  rate.NewLimiter(1, 1),
		lastSeen: time.Now(),
	})

	evictStaleRateLimiters(rateLimiters, 10*time.Minute)

	_, staleKept := rateLimiters.Load("1.2.3.4")
	assert.False(t, staleKept, "idle client limiter is evicted")
	_, activeKept := rateLimiters.Load("5.6.7.8")
	assert.True(t, activeKept, "active client limiter survives")
}
