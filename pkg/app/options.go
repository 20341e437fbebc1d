package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/recordhub/pkg/logger"
)

// Options 应用选项
type Options struct {
	ID          string
	Name        string
	StopTimeout time.Duration
	Logger      logger.Logger
}

// Option 选项函数
type Option func(*Options)

// DefaultOptions 默认选项，ID 为随机 UUID
func DefaultOptions() Options {
	return Options{
		ID:          uuid.NewString(),
		Name:        AppName,
		StopTimeout: 30 * time.Second,
		Logger:      logger.Default(),
	}
}

// WithName 设置应用名
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithID 设置实例 ID
func WithID(id string) Option {
	return func(o *Options) { o.ID = id }
}

// WithLogger 设置 logger
func WithLogger(l logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithStopTimeout 设置服务停止超时
func WithStopTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.StopTimeout = d
		}
	}
}
