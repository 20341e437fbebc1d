package websocket

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

// Server 负责握手升级、连接限额和每个连接的读写 goroutine
type Server struct {
	cfg      *Config
	upgrader websocket.Upgrader
	pool     *Pool
	workers  *ants.Pool
	metrics  *Metrics
	logger   logger.Logger

	wg     sync.WaitGroup
	closed atomic.Bool
}

// ServerOption 服务端选项
type ServerOption func(*Server)

// WithLogger 设置 logger
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithMetrics 设置指标
func WithMetrics(m *Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// NewServer 创建服务端
func NewServer(cfg *Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, pool: NewPool(cfg.Pool), logger: logger.NewNoop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("websocket")

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:    cfg.ReadBufferSize,
		WriteBufferSize:   cfg.WriteBufferSize,
		HandshakeTimeout:  cfg.HandshakeTimeout,
		EnableCompression: cfg.EnableCompression,
		CheckOrigin:       originChecker(cfg.AllowedOrigins),
	}

	// 每个连接占用写循环和心跳循环两个 worker
	workers, err := ants.NewPool(cfg.Pool.MaxConnections*2, ants.WithPreAlloc(false))
	if err != nil {
		return nil, fmt.Errorf("%w: worker pool: %v", ErrInvalidConfig, err)
	}
	s.workers = workers

	return s, nil
}

// originChecker 构造 CheckOrigin
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// Accept 检查限额并升级连接，成功时连接处于 OPEN
// 失败时已向客户端写出 HTTP 错误响应
func (s *Server) Accept(w http.ResponseWriter, r *http.Request, header http.Header) (*Connection, error) {
	if s.closed.Load() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return nil, ErrServerClosed
	}

	ip := clientIP(r.RemoteAddr)
	if err := s.pool.Reserve(ip); err != nil {
		status, reason := http.StatusServiceUnavailable, "pool_full"
		if errors.Is(err, ErrMaxConnectionsPerIP) {
			status, reason = http.StatusTooManyRequests, "ip_limit"
		}
		s.metrics.upgradeRejected(reason)
		http.Error(w, http.StatusText(status), status)
		return nil, err
	}

	ws, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		s.pool.Release(ip)
		s.metrics.upgradeRejected("handshake")
		return nil, fmt.Errorf("websocket upgrade: %w", err)
	}

	c := newConnection(ws, s.cfg, s.logger, s.metrics)
	s.pool.Add(ip, c)
	s.metrics.connectionOpened()
	s.logger.Debug("websocket connection accepted", "conn_id", c.ID(), "remote_addr", c.RemoteAddr())
	return c, nil
}

// Serve 启动写循环和心跳并阻塞读取，连接关闭后返回
func (s *Server) Serve(c *Connection, h Handler) {
	s.wg.Add(1)
	defer s.wg.Done()
	defer s.release(c)

	var loops sync.WaitGroup
	for _, loop := range []func(){c.WriteLoop, func() { c.PingLoop(s.cfg.PingInterval) }} {
		loops.Add(1)
		if err := s.workers.Submit(func() {
			defer loops.Done()
			loop()
		}); err != nil {
			loops.Done()
			s.logger.Error("failed to schedule connection loop", "conn_id", c.ID(), "error", err)
			c.CloseWithError(err)
		}
	}

	c.ReadLoop(h)
	loops.Wait()
}

// Discard 关闭一个已 Accept 但不会进入 Serve 的连接
func (s *Server) Discard(c *Connection) { s.release(c) }

func (s *Server) release(c *Connection) {
	c.Close()
	if s.pool.Remove(c) {
		s.metrics.connectionClosed()
	}
}

// Len 活跃连接数
func (s *Server) Len() int { return s.pool.Len() }

// Close 拒绝新连接，关闭全部活跃连接并等待其 goroutine 退出
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, c := range s.pool.All() {
		c.Close()
	}
	s.wg.Wait()
	s.workers.Release()
	return nil
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
