package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/pkg/logger"
)

// Server 基于 gin 的 HTTP 服务，实现 app.Server
type Server struct {
	cfg    *Config
	engine *gin.Engine
	logger logger.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewServer 创建服务，基础中间件由调用方通过 Use 挂载
func NewServer(cfg *Config, l logger.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if l == nil {
		l = logger.Default()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("web: trusted proxies: %w", err)
	}
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) { Fail(c, http.StatusNotFound, "Not found") })
	engine.NoMethod(func(c *gin.Context) { Fail(c, http.StatusMethodNotAllowed, "Method not allowed") })

	return &Server{cfg: cfg, engine: engine, logger: l.Named("web.server")}, nil
}

// Engine 返回 gin 引擎用于注册路由
func (s *Server) Engine() *gin.Engine { return s.engine }

// Use 挂载全局中间件
func (s *Server) Use(mw ...gin.HandlerFunc) { s.engine.Use(mw...) }

// Handler 返回 http.Handler，测试中配合 httptest 使用
func (s *Server) Handler() http.Handler { return s.engine }

// Addr 实际监听地址，Start 之前为空
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start 绑定端口并在后台处理请求
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return ErrServerAlreadyStarted
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", addr, err)
	}

	s.listener = ln
	s.done = make(chan struct{})
	s.srv = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", "error", err)
		}
	}(s.srv, s.done)

	s.logger.Info("http server listening", "addr", ln.Addr().String())
	return nil
}

// Stop 优雅关闭，最长等待 ShutdownTimeout
func (s *Server) Stop() error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.mu.Unlock()
	if srv == nil {
		return ErrServerNotStarted
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	<-done
	s.logger.Info("http server stopped")
	return nil
}
