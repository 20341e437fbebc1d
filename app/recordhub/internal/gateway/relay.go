package gateway

import (
	"context"

	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/websocket"
)

// MetadataSessionID 连接元数据中保存会话 ID 的键
const MetadataSessionID = "session_id"

var _ websocket.Handler = (*Relay)(nil)

// Relay 把客户端发来的白名单事件转发给所有连接，发送方也会收到
type Relay struct {
	registry    *Registry
	broadcaster *Broadcaster
	allowed     map[EventType]struct{}
	metrics     *Metrics
	logger      logger.Logger
}

// NewRelay 创建转发器，types 为允许转发的事件类型
func NewRelay(reg *Registry, b *Broadcaster, types []string, m *Metrics, l logger.Logger) *Relay {
	allowed := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		allowed[EventType(t)] = struct{}{}
	}
	return &Relay{registry: reg, broadcaster: b, allowed: allowed, metrics: m, logger: l.Named("gateway.relay")}
}

// Allowed 事件类型是否允许转发
func (r *Relay) Allowed(t EventType) bool {
	_, ok := r.allowed[t]
	return ok
}

// OnMessage 处理入站帧，丢弃的消息不会关闭连接
func (r *Relay) OnMessage(c *websocket.Connection, msg *websocket.Message) error {
	sessionID, _ := c.Metadata(MetadataSessionID)
	id, _ := sessionID.(string)
	r.relay(context.Background(), id, c, msg.Data)
	return nil
}

// relay 返回消息是否被广播
func (r *Relay) relay(ctx context.Context, sessionID string, c Conn, data []byte) bool {
	if sessionID == "" || !r.registry.Owns(sessionID, c) {
		r.metrics.relayDrop(dropNotRegistered)
		r.logger.DebugContext(ctx, "relay from unregistered connection dropped", "conn_id", c.ID())
		return false
	}

	e, err := decodeEnvelope(data)
	if err != nil {
		r.metrics.relayDrop(dropMalformed)
		r.logger.WarnContext(ctx, "malformed relay message dropped", "session_id", sessionID, "error", err)
		return false
	}
	if !r.Allowed(e.Type) {
		r.metrics.relayDrop(dropUnsupported)
		r.logger.DebugContext(ctx, "unsupported relay type dropped", "session_id", sessionID, "type", e.Type)
		return false
	}

	r.broadcaster.Broadcast(ctx, e)
	return true
}
