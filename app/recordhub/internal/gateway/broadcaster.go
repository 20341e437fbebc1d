package gateway

import (
	"context"
	"sync"

	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/lk2023060901/recordhub/app/recordhub/internal/gateway"

// Broadcaster 向注册表中所有 OPEN 连接投递事件
// 广播串行执行，每个接收方按调用顺序收到事件
type Broadcaster struct {
	mu       sync.Mutex
	registry *Registry
	metrics  *Metrics
	tracer   trace.Tracer
	logger   logger.Logger
}

// BroadcasterOption 广播器选项
type BroadcasterOption func(*Broadcaster)

// WithTracer 指定 tracer，默认使用全局 TracerProvider
func WithTracer(t trace.Tracer) BroadcasterOption {
	return func(b *Broadcaster) { b.tracer = t }
}

// WithBroadcastMetrics 设置指标
func WithBroadcastMetrics(m *Metrics) BroadcasterOption {
	return func(b *Broadcaster) { b.metrics = m }
}

// NewBroadcaster 创建广播器
func NewBroadcaster(reg *Registry, l logger.Logger, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{registry: reg, logger: l.Named("gateway.broadcast")}
	for _, opt := range opts {
		opt(b)
	}
	if b.tracer == nil {
		b.tracer = otel.Tracer(instrumentation)
	}
	return b
}

// Broadcast 编码一次后投递到调用时刻快照中的每个连接，返回成功入队的连接数
// 某个连接投递失败只会注销并关闭该连接
func (b *Broadcaster) Broadcast(ctx context.Context, e Event) int {
	ctx, span := b.tracer.Start(ctx, "gateway.broadcast",
		trace.WithAttributes(attribute.String("event.type", string(e.Type))))
	defer span.End()

	frame, err := e.Marshal()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		b.logger.ErrorContext(ctx, "failed to encode event", "type", e.Type, "error", err)
		return 0
	}
	msg := websocket.NewTextMessage(frame)

	b.mu.Lock()
	defer b.mu.Unlock()

	targets := b.registry.entries()
	delivered := 0
	for _, t := range targets {
		if err := t.conn.Send(msg); err != nil {
			b.metrics.deliveryFailed()
			b.logger.DebugContext(ctx, "delivery failed, dropping connection",
				"session_id", t.sessionID, "conn_id", t.conn.ID(), "error", err)
			b.registry.UnregisterConn(t.sessionID, t.conn)
			go func(c Conn) { _ = c.Close() }(t.conn)
			continue
		}
		delivered++
	}

	b.metrics.broadcast(e.Type)
	span.SetAttributes(
		attribute.Int("gateway.recipients", len(targets)),
		attribute.Int("gateway.delivered", delivered),
	)
	b.logger.DebugContext(ctx, "event broadcast", "type", e.Type, "recipients", len(targets), "delivered", delivered)
	return delivered
}
