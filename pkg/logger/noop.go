package logger

import "context"

var _ Logger = NoopLogger{}

// NoopLogger 丢弃所有日志，用作组件未注入 logger 时的默认值
type NoopLogger struct{}

// NewNoop 创建空 logger
func NewNoop() Logger { return NoopLogger{} }

func (NoopLogger) Debug(string, ...any) {}
func (NoopLogger) Info(string, ...any) {}
func (NoopLogger) Warn(string, ...any) {}
func (NoopLogger) Error(string, ...any) {}
func (NoopLogger) DebugContext(context.Context, string, ...any) {}
func (NoopLogger) InfoContext(context.Context, string, ...any) {}
func (NoopLogger) WarnContext(context.Context, string, ...any) {}
func (NoopLogger) ErrorContext(context.Context, string, ...any) {}
func (n NoopLogger) Named(string) Logger { return n }
func (n NoopLogger) WithFields(...any) Logger { return n }
func (NoopLogger) Sync() error { return nil }
