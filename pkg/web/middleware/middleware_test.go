package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/web/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestRecovery 测试 panic 恢复与上报
func TestRecovery(t *testing.T) {
	var reported any
	r := gin.New()
	r.Use(Recovery(logger.NewNoop(), func(_ context.Context, rec any) { reported = rec }))
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Equal(t, "boom", reported)
}

// TestRateLimit 测试超限返回 429
func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2, MaxKeys: 10}, nil, logger.NewNoop())
	defer rl.Close()

	r := gin.New()
	r.POST("/login", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/login", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/login", nil).Code)

	w := do(r, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())

	ok, _ := rl.Reserve("another-ip")
	assert.True(t, ok)
}

// TestCORS 测试凭据模式下的来源回显
func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/api/auth", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/api/auth", map[string]string{"Origin": "http://ui.local"})
	assert.Equal(t, "http://ui.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	r = gin.New()
	r.Use(CORS([]string{"http://ui.local"}))
	r.GET("/api/auth", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = do(r, http.MethodGet, "/api/auth", map[string]string{"Origin": "http://other.local"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// TestMetrics 测试按路由模板计数
func TestMetrics(t *testing.T) {
	m := metrics.NewHTTP(prometheus.NewRegistry(), "test")
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/project/:projectId/tasks", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(r, http.MethodGet, "/api/project/p1/tasks", nil)
	do(r, http.MethodGet, "/api/project/p2/tasks", nil)
	do(r, http.MethodGet, "/nowhere", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/project/:projectId/tasks", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
}

// TestLoggerAndTracing 测试访问日志与追踪中间件不影响响应
func TestLoggerAndTracing(t *testing.T) {
	r := gin.New()
	r.Use(Logger(logger.NewNoop(), "/health"), Tracing("test"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", nil).Code)
	require.Equal(t, http.StatusBadGateway, do(r, http.MethodGet, "/fail", nil).Code)
}
