package sentry

import "errors"

// 配置与生命周期错误
var (
	ErrNilConfig     = errors.New("sentry: config is required")
	ErrInvalidDSN    = errors.New("sentry: dsn is empty")
	ErrInvalidConfig = errors.New("sentry: sample_rate or max_breadcrumbs out of range")
	ErrClientClosed  = errors.New("sentry: client already closed")
)
