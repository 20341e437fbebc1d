package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lk2023060901/recordhub/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 日志接口，键值对形式记录字段
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)

	DebugContext(ctx context.Context, msg string, keysAndValues ...any)
	InfoContext(ctx context.Context, msg string, keysAndValues ...any)
	WarnContext(ctx context.Context, msg string, keysAndValues ...any)
	ErrorContext(ctx context.Context, msg string, keysAndValues ...any)

	Named(name string) Logger
	WithFields(keysAndValues ...any) Logger

	Sync() error
}

// ContextExtractor 从 context 中提取日志字段，如 trace_id
type ContextExtractor func(ctx context.Context) []zap.Field

var _ Logger = (*BaseLogger)(nil)

// BaseLogger zap 实现
type BaseLogger struct {
	zl        *zap.Logger
	level     zap.AtomicLevel
	extractor ContextExtractor
}

// Option 构建选项
type Option func(*options)

type options struct {
	hooks     []Hook
	sinks     []zapcore.WriteSyncer
	extractor ContextExtractor
}

// WithHooks 追加写入钩子
func WithHooks(hooks ...Hook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hooks...) }
}

// WithWriter 追加输出目标，测试中用于捕获输出
func WithWriter(w zapcore.WriteSyncer) Option {
	return func(o *options) { o.sinks = append(o.sinks, w) }
}

// WithContextExtractor 设置 context 字段提取器
func WithContextExtractor(fn ContextExtractor) Option {
	return func(o *options) { o.extractor = fn }
}

// New 根据配置创建 BaseLogger，cfg 中未设置的项取默认值
func New(cfg *Config, opts ...Option) (*BaseLogger, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge logger config: %w", err)
	}

	o := &options{extractor: func(context.Context) []zap.Field { return nil }}
	for _, opt := range opts {
		opt(o)
	}

	// 额外输出目标存在时允许关闭控制台和文件
	if len(o.sinks) == 0 {
		if err := merged.Validate(); err != nil {
			return nil, err
		}
	}

	lvl, ok := parseLevel(merged.Level)
	if !ok {
		return nil, ErrInvalidLevel
	}
	atomic := zap.NewAtomicLevelAt(lvl)

	writers := append([]zapcore.WriteSyncer(nil), o.sinks...)
	if merged.EnableConsole {
		writers = append(writers, zapcore.Lock(os.Stdout))
	}
	if merged.EnableFile {
		w, err := NewRotationWriter(&merged.Rotation, merged.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create rotation writer: %w", err)
		}
		writers = append(writers, zapcore.AddSync(w))
	}

	var core zapcore.Core = zapcore.NewCore(newEncoder(merged), zapcore.NewMultiWriteSyncer(writers...), atomic)

	hooks := o.hooks
	if len(merged.SensitiveKeys) > 0 {
		hooks = append(hooks, SensitiveDataHook(merged.SensitiveKeys))
	}
	if len(hooks) > 0 {
		core = NewHookedCore(core, hooks...)
	}
	if merged.EnableSampling {
		core = zapcore.NewSamplerWithOptions(core, time.Second, merged.SamplingInitial, merged.SamplingThereafter)
	}

	zopts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if st, ok := parseLevel(merged.StacktraceLevel); ok {
		zopts = append(zopts, zap.AddStacktrace(st))
	}
	if merged.Development {
		zopts = append(zopts, zap.Development())
	}

	zl := zap.New(core, zopts...)
	if len(merged.GlobalFields) > 0 {
		fields := make([]zap.Field, 0, len(merged.GlobalFields))
		for k, v := range merged.GlobalFields {
			fields = append(fields, zap.Any(k, v))
		}
		zl = zl.With(fields...)
	}

	return &BaseLogger{zl: zl, level: atomic, extractor: o.extractor}, nil
}

func newEncoder(cfg *Config) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(cfg.TimeFormat),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if cfg.Development && cfg.Format == ConsoleFormat {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if cfg.Format == ConsoleFormat {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func parseLevel(level Level) (zapcore.Level, bool) {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel, true
	case InfoLevel:
		return zapcore.InfoLevel, true
	case WarnLevel:
		return zapcore.WarnLevel, true
	case ErrorLevel:
		return zapcore.ErrorLevel, true
	}
	return zapcore.InfoLevel, false
}

// SetLevel 运行时调整日志等级，所有派生 logger 一同生效
func (l *BaseLogger) SetLevel(level Level) error {
	lvl, ok := parseLevel(level)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	l.level.SetLevel(lvl)
	return nil
}

// Zap 返回底层 zap.Logger
func (l *BaseLogger) Zap() *zap.Logger { return l.zl }

func (l *BaseLogger) Debug(msg string, keysAndValues ...any) {
	l.zl.Debug(msg, toFields(keysAndValues)...)
}

func (l *BaseLogger) Info(msg string, keysAndValues ...any) {
	l.zl.Info(msg, toFields(keysAndValues)...)
}

func (l *BaseLogger) Warn(msg string, keysAndValues ...any) {
	l.zl.Warn(msg, toFields(keysAndValues)...)
}

func (l *BaseLogger) Error(msg string, keysAndValues ...any) {
	l.zl.Error(msg, toFields(keysAndValues)...)
}

func (l *BaseLogger) DebugContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Debug(msg, l.withContext(ctx, keysAndValues)...)
}

func (l *BaseLogger) InfoContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Info(msg, l.withContext(ctx, keysAndValues)...)
}

func (l *BaseLogger) WarnContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Warn(msg, l.withContext(ctx, keysAndValues)...)
}

func (l *BaseLogger) ErrorContext(ctx context.Context, msg string, keysAndValues ...any) {
	l.zl.Error(msg, l.withContext(ctx, keysAndValues)...)
}

func (l *BaseLogger) Named(name string) Logger {
	return &BaseLogger{zl: l.zl.Named(name), level: l.level, extractor: l.extractor}
}

func (l *BaseLogger) WithFields(keysAndValues ...any) Logger {
	fields := toFields(keysAndValues)
	if len(fields) == 0 {
		return l
	}
	return &BaseLogger{zl: l.zl.With(fields...), level: l.level, extractor: l.extractor}
}

func (l *BaseLogger) Sync() error {
	return l.zl.Sync()
}

func (l *BaseLogger) withContext(ctx context.Context, kv []any) []zap.Field {
	if ctx == nil {
		return toFields(kv)
	}
	return append(l.extractor(ctx), toFields(kv)...)
}

// toFields 支持 zap.Field 与 key/value 混用，落单的 key 记为 "!BADKEY"
func toFields(kv []any) []zap.Field {
	if len(kv) == 0 {
		return nil
	}
	fields := make([]zap.Field, 0, len(kv)/2+1)
	for i := 0; i < len(kv); {
		if f, ok := kv[i].(zap.Field); ok {
			fields = append(fields, f)
			i++
			continue
		}
		if i+1 >= len(kv) {
			fields = append(fields, zap.Any("!BADKEY", kv[i]))
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if err, isErr := kv[i+1].(error); isErr && key == "error" {
			fields = append(fields, zap.Error(err))
		} else {
			fields = append(fields, zap.Any(key, kv[i+1]))
		}
		i += 2
	}
	return fields
}
