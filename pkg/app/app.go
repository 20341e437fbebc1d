package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lk2023060901/recordhub/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrAppAlreadyRunning Run 被重复调用
	ErrAppAlreadyRunning = errors.New("app: already running")
	// ErrStopTimeout 服务未在 StopTimeout 内停止
	ErrStopTimeout = errors.New("app: stop timeout")
)

// Server 可启停的服务，Start 不应阻塞
type Server interface {
	Start() error
	Stop() error
}

// Closer 退出时释放的资源 (数据库、Redis、Tracer 等)
type Closer interface {
	Close() error
}

// CloserFunc 函数形式的 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }

// BaseApp 应用生命周期：启动服务、等待信号、并发停止服务、逆序关闭资源
type BaseApp struct {
	opts    Options
	logger  logger.Logger
	mu      sync.Mutex
	servers []Server
	closers []Closer

	started atomic.Bool
	closed  atomic.Bool
}

// NewBaseApp 创建应用
func NewBaseApp(opts ...Option) *BaseApp {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &BaseApp{opts: o, logger: o.Logger.Named(o.Name)}
}

// Logger 应用主 logger
func (a *BaseApp) Logger() logger.Logger { return a.logger }

// AppendServer 注册服务，按注册顺序启动
func (a *BaseApp) AppendServer(srv ...Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, srv...)
}

// AppendCloser 注册资源，退出时按注册逆序关闭
func (a *BaseApp) AppendCloser(c ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, c...)
}

// Run 启动所有服务并阻塞，直到收到 SIGINT/SIGTERM 或 ctx 结束
func (a *BaseApp) Run(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}

	info := GetInfo()
	a.logger.Info("application starting",
		"name", a.opts.Name,
		"id", a.opts.ID,
		"version", info.Version,
		"commit", info.GitCommit,
		"build_date", info.BuildDate,
		"go_version", info.GoVersion,
	)

	a.mu.Lock()
	servers := append([]Server(nil), a.servers...)
	a.mu.Unlock()

	for i, srv := range servers {
		if err := srv.Start(); err != nil {
			a.logger.Error("failed to start server", "index", i, "error", err)
			_ = a.Shutdown()
			return fmt.Errorf("start server %d: %w", i, err)
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	if ctx.Err() != nil {
		a.logger.Info("context cancelled, shutting down")
	} else {
		a.logger.Info("received signal, shutting down")
	}
	return a.Shutdown()
}

// Shutdown 并发停止服务 (受 StopTimeout 约束)，然后逆序关闭资源，可重复调用
func (a *BaseApp) Shutdown() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.mu.Lock()
	servers := append([]Server(nil), a.servers...)
	closers := append([]Closer(nil), a.closers...)
	a.mu.Unlock()

	var g errgroup.Group
	for _, srv := range servers {
		g.Go(func() error {
			if err := srv.Stop(); err != nil {
				a.logger.Error("failed to stop server", "error", err)
				return err
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var stopErr error
	select {
	case stopErr = <-done:
		a.logger.Info("all servers stopped")
	case <-time.After(a.opts.StopTimeout):
		a.logger.Warn("shutdown timeout, continuing with closers", "timeout", a.opts.StopTimeout)
		stopErr = ErrStopTimeout
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			a.logger.Error("failed to close component", "error", err)
			stopErr = errors.Join(stopErr, err)
		}
	}

	a.logger.Info("application exited")
	_ = a.logger.Sync()
	return stopErr
}

// Exit 记录错误并以非零状态退出，供 main 使用
func Exit(l logger.Logger, msg string, err error) {
	l.Error(msg, "error", err)
	_ = l.Sync()
	os.Exit(1)
}
