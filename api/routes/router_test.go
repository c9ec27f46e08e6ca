package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"carebaby/internal/shared/config"
	"carebaby/internal/shared/database"
	"carebaby/internal/synonyms"
	"carebaby/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestEngine(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	return newTestEngineWithMode(t, "test")
}

func newTestEngineWithMode(t *testing.T, ginMode string) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	pg, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	dict, err := synonyms.LoadOrDefault("")
	require.NoError(t, err)

	cfg := &config.Config{APIPrefix: "/api", APIVersion: "v1", GinMode: ginMode}
	cfg.JWT.Secret = "router-secret"

	engine := gin.New()
	NewRouter(cfg, &database.DB{PostgreSQL: pg}, dict, nil, logger.Discard()).SetupRoutes(engine)
	return engine, mock
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealthRoutes(t *testing.T) {
	engine, mock := newTestEngine(t)

	w := serve(engine, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, w.Code)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, false, status["redis_cache"])
	assert.Greater(t, status["synonyms"], float64(0))

	mock.ExpectPing()
	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthFailureDetail(t *testing.T) {
	for _, tc := range []struct {
		mode       string
		showsError bool
	}{
		{mode: "debug", showsError: true},
		{mode: "release", showsError: false},
	} {
		t.Run(tc.mode, func(t *testing.T) {
			engine, mock := newTestEngineWithMode(t, tc.mode)
			mock.ExpectPing().WillReturnError(errors.New("dial tcp db.internal:5432: connection refused"))

			w := serve(engine, http.MethodGet, "/health")
			require.Equal(t, http.StatusServiceUnavailable, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "unhealthy", body["status"])
			if tc.showsError {
				assert.Contains(t, body["error"], "connection refused")
			} else {
				assert.NotContains(t, body, "error")
				assert.NotContains(t, w.Body.String(), "db.internal")
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	engine, _ := newTestEngine(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/children/0b7f5a52-2a55-4d61-9c3e-0d8b2f1f3a10/tags"},
		{http.MethodPut, "/api/v1/children/0b7f5a52-2a55-4d61-9c3e-0d8b2f1f3a10/tags"},
		{http.MethodPost, "/api/v1/children"},
		{http.MethodPatch, "/api/v1/admin/tags/0b7f5a52-2a55-4d61-9c3e-0d8b2f1f3a10/active"},
	} {
		w := serve(engine, tc.method, tc.path)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSuggestRouteIsPublic(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := serve(engine, http.MethodGet, "/api/v1/tags/suggest?q=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
