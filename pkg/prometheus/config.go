package prometheus

// Config Prometheus 配置
type Config struct {
	Enabled                bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Namespace              string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
	Path                   string `mapstructure:"path" json:"path" yaml:"path"`
	EnableGoCollector      bool   `mapstructure:"enable_go_collector" json:"enable_go_collector" yaml:"enable_go_collector"`
	EnableProcessCollector bool   `mapstructure:"enable_process_collector" json:"enable_process_collector" yaml:"enable_process_collector"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Enabled:                true,
		Namespace:              "recordhub",
		Path:                   "/metrics",
		EnableGoCollector:      true,
		EnableProcessCollector: true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return ErrInvalidConfig
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
	return nil
}
