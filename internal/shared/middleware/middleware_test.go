package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"carebaby/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthRouter() *gin.Engine {
	return newAuthRouterWithLog(logger.Discard())
}

func newAuthRouterWithLog(log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuth(testSecret, log))
	router.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	router.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func get(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", "", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, RoleCaregiver, claims["role"])

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := IssueToken(testSecret, "user-1", RoleCaregiver, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.Error(t, err, "expired")

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"type":    "refresh",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseToken(testSecret, refresh)
	assert.Error(t, err, "refresh token")

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseToken(testSecret, anonymous)
	assert.Error(t, err, "no user id")

	_, err = ParseToken(testSecret, "garbage")
	assert.Error(t, err)
}

func TestJWTAuth(t *testing.T) {
	router := newAuthRouter()
	token, err := IssueToken(testSecret, "user-1", RoleCaregiver, time.Hour)
	require.NoError(t, err)

	w := get(router, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	for _, header := range []string{"", token, "Basic " + token, "Bearer nope"} {
		w := get(router, "/me", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestJWTAuth_LogsFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	router := newAuthRouterWithLog(logger.NewWithWriter(&buf, "info"))

	w := get(router, "/me", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, buf.String(), "Authentication Failure")
	assert.Contains(t, buf.String(), "Authorization header is required")

	buf.Reset()
	w = get(router, "/me", "Bearer nope")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, buf.String(), "invalid or expired token")

	buf.Reset()
	token, err := IssueToken(testSecret, "user-1", RoleCaregiver, time.Hour)
	require.NoError(t, err)
	w = get(router, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, buf.String())
}

func TestRequireAdmin(t *testing.T) {
	router := newAuthRouter()

	caregiver, err := IssueToken(testSecret, "user-1", RoleCaregiver, time.Hour)
	require.NoError(t, err)
	w := get(router, "/admin", "Bearer "+caregiver)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, err := IssueToken(testSecret, "ops-1", RoleAdmin, time.Hour)
	require.NoError(t, err)
	w = get(router, "/admin", "Bearer "+admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProcessTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ProcessTime())
	router.GET("/json", func(c *gin.Context) {
		time.Sleep(2 * time.Millisecond)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/empty", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	pattern := regexp.MustCompile(`^\d+\.\d{2}$`)
	for _, path := range []string{"/json", "/empty"} {
		w := get(router, path, "")
		header := w.Header().Get("X-Process-Time-Ms")
		assert.Regexp(t, pattern, header, path)
	}

	w := get(router, "/json", "")
	assert.NotEqual(t, "0.00", w.Header().Get("X-Process-Time-Ms"))
}
