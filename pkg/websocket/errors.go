package websocket

import "errors"

var (
	// ErrConnectionClosed 连接已进入 CLOSING 或 CLOSED
	ErrConnectionClosed = errors.New("websocket: connection closed")
	// ErrSendQueueFull 发送队列已满，对端消费过慢
	ErrSendQueueFull = errors.New("websocket: send queue full")
	// ErrPoolFull 连接数达到上限
	ErrPoolFull = errors.New("websocket: connection pool full")
	// ErrMaxConnectionsPerIP 单 IP 连接数达到上限
	ErrMaxConnectionsPerIP = errors.New("websocket: too many connections from ip")
	// ErrServerClosed 服务端已关闭
	ErrServerClosed = errors.New("websocket: server closed")
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("websocket: invalid config")
)
