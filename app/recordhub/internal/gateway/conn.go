package gateway

import "github.com/lk2023060901/recordhub/pkg/websocket"

// Conn 网关持有的推送连接句柄
// Send 必须非阻塞：连接已关闭或发送队列已满时直接返回错误
type Conn interface {
	ID() string
	Send(msg *websocket.Message) error
	Close() error
	IsOpen() bool
}

var _ Conn = (*websocket.Connection)(nil)
