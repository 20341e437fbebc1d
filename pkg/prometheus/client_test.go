package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHandler 测试注册的指标出现在输出中
func TestHandler(t *testing.T) {
	c, err := New(&Config{Namespace: "recordhub", EnableGoCollector: true})
	require.NoError(t, err)
	assert.Equal(t, "/metrics", c.Path())

	g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: c.Namespace(), Name: "probe", Help: "probe"})
	c.Registerer().MustRegister(g)
	g.Set(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "recordhub_probe 3")
	assert.Contains(t, string(body), "go_goroutines")
}

// TestValidate 测试空命名空间
func TestValidate(t *testing.T) {
	_, err := New(&Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
