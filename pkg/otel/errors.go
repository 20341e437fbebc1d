package otel

import "errors"

var (
	// ErrInvalidServiceName 启用追踪时 service_name 不能为空
	ErrInvalidServiceName = errors.New("otel: service_name is required when tracing is enabled")
	// ErrInvalidSamplerRatio ratio 采样需在 [0,1]
	ErrInvalidSamplerRatio = errors.New("otel: sampler.ratio out of [0,1]")
	// ErrUnsupportedExporter 未知 exporter_type
	ErrUnsupportedExporter = errors.New("otel: unknown exporter_type")
	// ErrExporterFailed 创建 exporter 失败
	ErrExporterFailed = errors.New("otel: exporter setup failed")
	// ErrProviderClosed 重复关闭
	ErrProviderClosed = errors.New("otel: tracer provider already shut down")
)
