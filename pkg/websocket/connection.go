package websocket

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lk2023060901/recordhub/pkg/logger"
)

// Connection 服务端 WebSocket 连接
// 一个读 goroutine (ReadLoop)，一个写 goroutine (WriteLoop)，所有出站帧经 sendChan 串行写出
type Connection struct {
	id   string
	conn *websocket.Conn

	writeTimeout time.Duration
	pongTimeout  time.Duration

	sendChan chan *Message
	logger   logger.Logger
	metrics  *Metrics

	metadata sync.Map

	state     atomic.Int32
	closeChan chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	closeErr  error

	hookMu sync.Mutex
	hooks  []StateHook

	remoteAddr  string
	connectedAt time.Time
}

func newConnection(ws *websocket.Conn, cfg *Config, log logger.Logger, m *Metrics) *Connection {
	c := &Connection{
		id:           uuid.NewString(),
		conn:         ws,
		writeTimeout: cfg.WriteTimeout,
		pongTimeout:  cfg.PongTimeout,
		sendChan:     make(chan *Message, cfg.SendQueueSize),
		metrics:      m,
		closeChan:    make(chan struct{}),
		remoteAddr:   ws.RemoteAddr().String(),
		connectedAt:  time.Now(),
	}
	c.logger = log.WithFields("conn_id", c.id)
	ws.SetReadLimit(cfg.MaxMessageSize)
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(c.pongTimeout))
	})
	return c
}

// ID 连接 ID
func (c *Connection) ID() string { return c.id }

// RemoteAddr 对端地址
func (c *Connection) RemoteAddr() string { return c.remoteAddr }

// ConnectedAt 建立时间
func (c *Connection) ConnectedAt() time.Time { return c.connectedAt }

// State 当前状态
func (c *Connection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// IsOpen 是否处于 OPEN
func (c *Connection) IsOpen() bool { return c.State() == StateOpen }

// Done 连接进入 CLOSING 时关闭
func (c *Connection) Done() <-chan struct{} { return c.closeChan }

// Err 关闭原因，正常关闭为 nil
func (c *Connection) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.closeErr
}

// SetMetadata 设置附加数据
func (c *Connection) SetMetadata(key string, value any) { c.metadata.Store(key, value) }

// Metadata 读取附加数据
func (c *Connection) Metadata(key string) (any, bool) { return c.metadata.Load(key) }

// OnStateChange 注册状态迁移回调
// 连接已经离开 OPEN 时注册的回调不会补发
func (c *Connection) OnStateChange(hook StateHook) {
	c.hookMu.Lock()
	c.hooks = append(c.hooks, hook)
	c.hookMu.Unlock()
}

func (c *Connection) transition(from, to ConnectionState) bool {
	if !c.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	c.hookMu.Lock()
	hooks := append([]StateHook(nil), c.hooks...)
	c.hookMu.Unlock()
	for _, h := range hooks {
		h(c, from, to)
	}
	return true
}

// Send 非阻塞入队
// 连接不在 OPEN 返回 ErrConnectionClosed，队列满返回 ErrSendQueueFull
func (c *Connection) Send(msg *Message) error {
	if !c.IsOpen() {
		return ErrConnectionClosed
	}
	select {
	case c.sendChan <- msg:
		return nil
	case <-c.closeChan:
		return ErrConnectionClosed
	default:
		return ErrSendQueueFull
	}
}

// SendContext 阻塞入队，直到成功、ctx 结束或连接关闭
func (c *Connection) SendContext(ctx context.Context, msg *Message) error {
	if !c.IsOpen() {
		return ErrConnectionClosed
	}
	select {
	case c.sendChan <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closeChan:
		return ErrConnectionClosed
	}
}

// ReadLoop 阻塞读取入站帧直到连接断开
func (c *Connection) ReadLoop(h Handler) {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			c.CloseWithError(classifyReadError(err))
			return
		}
		// 任何入站帧都说明对端存活
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
		c.metrics.messageReceived(len(data))

		if h == nil {
			continue
		}
		if err := h.OnMessage(c, &Message{Type: MessageType(mt), Data: data}); err != nil {
			c.logger.Warn("websocket handler error", "error", err)
		}
	}
}

func classifyReadError(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// WriteLoop 串行写出 sendChan 中的帧，写超时或写失败即关闭连接
func (c *Connection) WriteLoop() {
	for {
		select {
		case msg := <-c.sendChan:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(int(msg.Type), msg.Data); err != nil {
				c.logger.Debug("websocket write error", "error", err)
				c.CloseWithError(err)
				return
			}
			c.metrics.messageSent(len(msg.Data))
		case <-c.closeChan:
			return
		}
	}
}

// PingLoop 按 interval 发送 ping，写失败即关闭连接
func (c *Connection) PingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				c.logger.Debug("websocket ping error", "error", err)
				c.CloseWithError(err)
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

// Close 正常关闭
func (c *Connection) Close() error {
	c.CloseWithError(nil)
	return nil
}

// CloseWithError 关闭连接，可重复调用
// OPEN -> CLOSING 时触发回调并发送关闭帧，底层连接关闭后迁移到 CLOSED
func (c *Connection) CloseWithError(cause error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.closeErr = cause
		c.errMu.Unlock()

		close(c.closeChan)
		c.transition(StateOpen, StateClosing)

		code, text := websocket.CloseNormalClosure, ""
		if cause != nil {
			code, text = websocket.CloseInternalServerErr, "connection error"
		}
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
		_ = c.conn.Close()

		c.transition(StateClosing, StateClosed)
		if cause != nil {
			c.logger.Debug("websocket connection closed", "error", cause)
		}
	})
}
