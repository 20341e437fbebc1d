package otel

import "time"

// ExporterType 导出器类型
type ExporterType string

const (
	ExporterTypeOTLPHTTP ExporterType = "otlp-http"
	ExporterTypeOTLPGRPC ExporterType = "otlp-grpc"
	ExporterTypeStdout   ExporterType = "stdout"
	ExporterTypeNoop     ExporterType = "noop"
)

// SamplerType 采样类型
type SamplerType string

const (
	SamplerTypeAlways SamplerType = "always"
	SamplerTypeNever  SamplerType = "never"
	SamplerTypeRatio  SamplerType = "ratio"
	SamplerTypeParent SamplerType = "parent"
)

// Config TracerProvider 配置
type Config struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	ServiceName string `mapstructure:"service_name" json:"service_name" yaml:"service_name"`

	// OTLP HTTP 默认 localhost:4318，gRPC 默认 localhost:4317
	Endpoint     string       `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	ExporterType ExporterType `mapstructure:"exporter_type" json:"exporter_type" yaml:"exporter_type"`
	Insecure     bool         `mapstructure:"insecure" json:"insecure" yaml:"insecure"`

	Sampler struct {
		Type  SamplerType `mapstructure:"type" json:"type" yaml:"type"`
		Ratio float64     `mapstructure:"ratio" json:"ratio" yaml:"ratio"`
	} `mapstructure:"sampler" json:"sampler" yaml:"sampler"`

	BatchTimeout    time.Duration     `mapstructure:"batch_timeout" json:"batch_timeout" yaml:"batch_timeout"`
	Attributes      map[string]string `mapstructure:"attributes" json:"attributes" yaml:"attributes"`
	ShutdownTimeout time.Duration     `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DefaultConfig 默认配置，默认不启用
func DefaultConfig() *Config {
	cfg := &Config{
		ServiceName:     "recordhub",
		Endpoint:        "localhost:4318",
		ExporterType:    ExporterTypeOTLPHTTP,
		Insecure:        true,
		BatchTimeout:    5 * time.Second,
		Attributes:      map[string]string{},
		ShutdownTimeout: 5 * time.Second,
	}
	cfg.Sampler.Type = SamplerTypeParent
	cfg.Sampler.Ratio = 1.0
	return cfg
}

// Validate 验证配置，未启用时不校验
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return ErrInvalidServiceName
	}
	if c.Sampler.Type == SamplerTypeRatio && (c.Sampler.Ratio < 0 || c.Sampler.Ratio > 1) {
		return ErrInvalidSamplerRatio
	}
	return nil
}
