package websocket

import "github.com/gorilla/websocket"

// MessageType 帧类型，与 RFC 6455 opcode 一致
type MessageType int

const (
	TextMessage   MessageType = websocket.TextMessage
	BinaryMessage MessageType = websocket.BinaryMessage
)

func (t MessageType) String() string {
	switch t {
	case TextMessage:
		return "text"
	case BinaryMessage:
		return "binary"
	default:
		return "unknown"
	}
}

// Message 一帧数据
type Message struct {
	Type MessageType
	Data []byte
}

// NewTextMessage 构造文本帧
func NewTextMessage(data []byte) *Message {
	return &Message{Type: TextMessage, Data: data}
}

// ConnectionState 连接状态，只能按 OPEN -> CLOSING -> CLOSED 单向迁移
type ConnectionState int32

const (
	StateOpen ConnectionState = iota
	StateClosing
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateHook 状态迁移回调，在触发迁移的 goroutine 中同步执行
type StateHook func(c *Connection, from, to ConnectionState)

// Handler 处理入站帧，返回的错误只记日志，不会关闭连接
type Handler interface {
	OnMessage(c *Connection, msg *Message) error
}

// HandlerFunc 函数形式的 Handler
type HandlerFunc func(c *Connection, msg *Message) error

func (f HandlerFunc) OnMessage(c *Connection, msg *Message) error {
	return f(c, msg)
}
