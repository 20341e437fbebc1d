package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestBroadcastIsolation 测试单个连接失败只影响自己
func TestBroadcastIsolation(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "test")
	r := NewRegistry(m)
	b := NewBroadcaster(r, logger.NewNoop(), WithBroadcastMetrics(m))

	conns := []*fakeConn{newFakeConn("a"), newFakeConn("b"), newFakeConn("c")}
	conns[1].failSend = true
	for i, c := range conns {
		r.Register(string(rune('1'+i)), c)
	}

	n := b.Broadcast(context.Background(), NewEvent(EventPersonAdded, map[string]string{"_id": "p1"}))
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{`{"type":"PERSON_ADDED","data":{"_id":"p1"}}`}, conns[0].received())
	assert.Empty(t, conns[1].received())
	assert.Len(t, conns[2].received(), 1)

	assert.False(t, r.IsLive("2"))
	assert.Equal(t, 2, r.Len())
	require.Eventually(t, func() bool { return conns[1].closeCount() == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.broadcasts.WithLabelValues("PERSON_ADDED")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.registered))
}

// TestBroadcastReplacedSession 测试会话重新登记后只有新连接收到
func TestBroadcastReplacedSession(t *testing.T) {
	r := NewRegistry(nil)
	b := NewBroadcaster(r, logger.NewNoop())
	old, next := newFakeConn("old"), newFakeConn("new")

	r.Register("s1", old)
	b.Broadcast(context.Background(), NewEvent(EventProjectAdded, 1))
	r.Register("s1", next)
	b.Broadcast(context.Background(), NewEvent(EventProjectAdded, 2))

	assert.Equal(t, []string{`{"type":"PROJECT_ADDED","data":1}`}, old.received())
	assert.Equal(t, []string{`{"type":"PROJECT_ADDED","data":2}`}, next.received())
	assert.True(t, old.IsOpen())
}

// TestBroadcastOrder 测试并发广播时每个接收方看到的顺序一致
func TestBroadcastOrder(t *testing.T) {
	r := NewRegistry(nil)
	b := NewBroadcaster(r, logger.NewNoop())
	x, y := newFakeConn("x"), newFakeConn("y")
	r.Register("sx", x)
	r.Register("sy", y)

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func(i int) {
			for j := 0; j < 25; j++ {
				b.Broadcast(context.Background(), NewEvent(EventTasksUpdated, i*100+j))
			}
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	require.Len(t, x.received(), 100)
	assert.Equal(t, x.received(), y.received())
}

// TestBroadcastEmptyAndUnencodable 测试无连接与无法编码的事件
func TestBroadcastEmptyAndUnencodable(t *testing.T) {
	r := NewRegistry(nil)
	b := NewBroadcaster(r, logger.NewNoop())
	assert.Equal(t, 0, b.Broadcast(context.Background(), NewEvent(EventPersonDeleted, nil)))

	c := newFakeConn("a")
	r.Register("s", c)
	assert.Equal(t, 0, b.Broadcast(context.Background(), NewEvent(EventPersonDeleted, make(chan int))))
	assert.Empty(t, c.received())
	assert.True(t, r.IsLive("s"))
}

// TestBroadcastSpan 测试广播 span
func TestBroadcastSpan(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := NewRegistry(nil)
	r.Register("s", newFakeConn("a"))
	b := NewBroadcaster(r, logger.NewNoop(), WithTracer(tp.Tracer("test")))
	b.Broadcast(context.Background(), NewEvent(EventPersonUpdated, "x"))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "gateway.broadcast", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("event.type", "PERSON_UPDATED"))
	assert.Contains(t, spans[0].Attributes, attribute.Int("gateway.delivered", 1))
}
