package gateway

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/auth"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/web"
	"github.com/lk2023060901/recordhub/pkg/websocket"
)

// Bridge 把 websocket 握手绑定到 HTTP 会话
type Bridge struct {
	resolver *auth.Resolver
	server   *websocket.Server
	registry *Registry
	relay    *Relay
	cfg      Config
	logger   logger.Logger
}

// NewBridge 创建桥接器
func NewBridge(cfg Config, resolver *auth.Resolver, server *websocket.Server, reg *Registry, relay *Relay, l logger.Logger) *Bridge {
	return &Bridge{
		resolver: resolver,
		server:   server,
		registry: reg,
		relay:    relay,
		cfg:      cfg,
		logger:   l.Named("gateway.bridge"),
	}
}

// Handle /ws 路由，连接关闭后返回
func (b *Bridge) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. 与 HTTP 中间件相同的会话解析，失败时不升级
	s, err := b.resolver.Resolve(c.Request)
	if errors.Is(err, auth.ErrNoSession) {
		web.Fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		b.logger.ErrorContext(ctx, "session lookup failed during upgrade", "error", err)
		web.Fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	// 2. 升级，失败时 Accept 已写出响应
	conn, err := b.server.Accept(c.Writer, c.Request, nil)
	if err != nil {
		b.logger.DebugContext(ctx, "websocket upgrade failed", "session_id", s.ID, "error", err)
		return
	}
	conn.SetMetadata(MetadataSessionID, s.ID)

	// 3. 进入 CLOSING 时注销，钩子先于登记安装
	conn.OnStateChange(func(wc *websocket.Connection, _, to websocket.ConnectionState) {
		if to == websocket.StateClosing && b.registry.UnregisterConn(s.ID, wc) {
			b.logger.Debug("connection unregistered", "session_id", s.ID, "conn_id", wc.ID())
		}
	})

	// 4. 登记，同一会话后来者覆盖
	if prev := b.registry.Register(s.ID, conn); prev != nil {
		b.logger.InfoContext(ctx, "session connection replaced",
			"session_id", s.ID, "old_conn_id", prev.ID(), "conn_id", conn.ID())
		if b.cfg.CloseReplaced {
			go func() { _ = prev.Close() }()
		}
	}
	if !conn.IsOpen() {
		b.registry.UnregisterConn(s.ID, conn)
	}
	b.logger.InfoContext(ctx, "websocket connected", "session_id", s.ID, "conn_id", conn.ID(), "username", s.Username)

	b.server.Serve(conn, b.relay)

	b.registry.UnregisterConn(s.ID, conn)
	b.logger.InfoContext(ctx, "websocket disconnected", "session_id", s.ID, "conn_id", conn.ID())
}
