package gateway

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryReplace 测试后登记者覆盖与比较删除
func TestRegistryReplace(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "test")
	r := NewRegistry(m)
	a, b := newFakeConn("a"), newFakeConn("b")

	assert.Nil(t, r.Register("s1", a))
	assert.True(t, r.IsLive("s1"))

	prev := r.Register("s1", b)
	require.NotNil(t, prev)
	assert.Equal(t, "a", prev.ID())
	assert.Equal(t, 0, a.closeCount(), "replaced connection is not closed")
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []Conn{b}, r.Snapshot())

	// 旧连接关闭时不能删除新连接
	assert.False(t, r.UnregisterConn("s1", a))
	assert.True(t, r.IsLive("s1"))
	assert.True(t, r.Owns("s1", b))
	assert.False(t, r.Owns("s1", a))

	assert.Nil(t, r.Register("s1", b), "re-registering the same handle replaces nothing")

	assert.True(t, r.UnregisterConn("s1", b))
	assert.False(t, r.IsLive("s1"))
	assert.False(t, r.UnregisterConn("s1", b))

	r.Register("s2", a)
	r.Unregister("s2")
	r.Unregister("s2")
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.registered))
}

// TestRegistrySnapshot 测试快照只含 OPEN 连接且与内部状态隔离
func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry(nil)
	open, closing := newFakeConn("open"), newFakeConn("closing")
	r.Register("s1", open)
	r.Register("s2", closing)
	_ = closing.Close()

	snap := r.Snapshot()
	assert.Equal(t, []Conn{open}, snap)
	assert.False(t, r.IsLive("s2"))
	assert.Equal(t, 2, r.Len())

	snap[0] = nil
	assert.True(t, r.IsLive("s1"))
}
