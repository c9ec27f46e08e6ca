package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"carebaby/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetRateLimitType(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodGet, "/ping", RateLimitTypeHealth},
		{http.MethodPatch, "/api/v1/admin/tags/:id/active", RateLimitTypeAdmin},
		{http.MethodGet, "/api/v1/tags/suggest", RateLimitTypeSuggest},
		{http.MethodPut, "/api/v1/children/:id/tags", RateLimitTypeWrite},
		{http.MethodPost, "/api/v1/children", RateLimitTypeWrite},
		{http.MethodGet, "/api/v1/children/:id/tags", RateLimitTypeDefault},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, getRateLimitType(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func TestMiddleware_Returns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newTestLimiter(t, testConfig())

	router := gin.New()
	router.Use(Middleware(rl, logger.Discard()))
	router.GET("/api/v1/tags/suggest", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tags/suggest?q=ecz", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 3; i++ {
		w := call()
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	}

	w := call()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", getClientIP(c))

	c.Request.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", getClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "not-an-ip")
	assert.Equal(t, "198.51.100.2", getClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", getClientIP(c))
}
