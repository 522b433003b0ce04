package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	calls int
	count int64
	err   error
}

func (f *fakeCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	f.calls++
	return f.count, f.err
}

func newThrottledRouter(counter *fakeCounter, authed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if authed {
		r.Use(func(c *gin.Context) {
			c.Set(ContextKeyUserID, "user-1")
			c.Next()
		})
	}
	r.Use(RateLimit(counter))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func doPing(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AuthenticatedRequestBypassesCounter(t *testing.T) {
	counter := &fakeCounter{count: 9999}
	r := newThrottledRouter(counter, true)

	w := doPing(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, counter.calls)
}

func TestRateLimit_UnderCapPasses(t *testing.T) {
	counter := &fakeCounter{count: 1}
	r := newThrottledRouter(counter, false)

	w := doPing(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, counter.calls)
}

func TestRateLimit_OverCapRejects(t *testing.T) {
	counter := &fakeCounter{count: rateLimitMax + 1}
	r := newThrottledRouter(counter, false)

	w := doPing(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimit_CounterErrorFailsOpen(t *testing.T) {
	counter := &fakeCounter{err: context.DeadlineExceeded}
	r := newThrottledRouter(counter, false)

	w := doPing(r)
	assert.Equal(t, http.StatusOK, w.Code)
}
