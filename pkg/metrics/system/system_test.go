package system

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSampleAndCollect 测试采集结果与指标导出
func TestSampleAndCollect(t *testing.T) {
	c, err := New("recordhub")
	require.NoError(t, err)

	c.Sample()
	s := c.Stats()
	assert.Positive(t, s.Goroutines)
	assert.Positive(t, s.MemoryBytes)
	assert.False(t, s.UpdatedAt.IsZero())

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// TestStartStop 测试重复启动与停止
func TestStartStop(t *testing.T) {
	c, err := New("recordhub")
	require.NoError(t, err)

	c.Start(10 * time.Millisecond)
	c.Start(10 * time.Millisecond)
	first := c.Stats().UpdatedAt
	require.Eventually(t, func() bool { return c.Stats().UpdatedAt.After(first) }, time.Second, 5*time.Millisecond)

	c.Stop()
	c.Stop()
}
