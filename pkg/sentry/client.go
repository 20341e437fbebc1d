package sentry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
)

// Stats 统计
type Stats struct {
	EventsTotal    uint64
	EventsCaptured uint64
	EventsDropped  uint64
}

// Option 客户端选项
type Option func(*sentry.ClientOptions)

// WithBeforeSend 上报前回调，返回 nil 丢弃事件
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) { o.BeforeSend = fn }
}

// Client Sentry 客户端，持有独立 Hub
type Client struct {
	hub    *sentry.Hub
	cfg    *Config
	closed atomic.Bool

	total    atomic.Uint64
	captured atomic.Uint64
	dropped  atomic.Uint64
}

// New 创建客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	co := cfg.clientOptions()
	for _, opt := range opts {
		opt(&co)
	}
	sc, err := sentry.NewClient(co)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}

	hub := sentry.NewHub(sc, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range cfg.Tags {
			scope.SetTag(k, v)
		}
	})
	return &Client{hub: hub, cfg: cfg}, nil
}

func (c *Client) count(id *sentry.EventID) *sentry.EventID {
	c.total.Add(1)
	if id != nil && *id != "" {
		c.captured.Add(1)
	} else {
		c.dropped.Add(1)
	}
	return id
}

// CaptureException 上报错误
func (c *Client) CaptureException(err error) *sentry.EventID {
	if c.closed.Load() || err == nil {
		return nil
	}
	return c.count(c.hub.CaptureException(err))
}

// CaptureMessage 上报消息
func (c *Client) CaptureMessage(message string) *sentry.EventID {
	if c.closed.Load() {
		return nil
	}
	return c.count(c.hub.CaptureMessage(message))
}

// ReportPanic 上报已恢复的 panic，tags 附加到本次事件
func (c *Client) ReportPanic(ctx context.Context, recovered any, tags map[string]string) *sentry.EventID {
	if c.closed.Load() {
		return nil
	}
	var id *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		scope.SetLevel(sentry.LevelFatal)
		id = c.hub.RecoverWithContext(ctx, recovered)
	})
	return c.count(id)
}

// Go 在 goroutine 中运行 f，panic 时上报后继续抛出
func (c *Client) Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.ReportPanic(context.Background(), r, nil)
				c.hub.Flush(c.cfg.ShutdownTimeout)
				panic(r)
			}
		}()
		f()
	}()
}

// Flush 等待事件发送
func (c *Client) Flush(timeout time.Duration) bool {
	return c.hub.Flush(timeout)
}

// Close 刷新并关闭
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	c.hub.Flush(c.cfg.ShutdownTimeout)
	return nil
}

// Stats 统计信息
func (c *Client) Stats() Stats {
	return Stats{
		EventsTotal:    c.total.Load(),
		EventsCaptured: c.captured.Load(),
		EventsDropped:  c.dropped.Load(),
	}
}
