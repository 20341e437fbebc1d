package config

import "github.com/spf13/viper"

// Option 管理器选项
type Option func(*manager)

// WithDefaults 设置默认值，键使用点分路径
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for key, value := range defaults {
			m.v.SetDefault(key, value)
		}
	}
}

// WithConfigType 指定配置格式 (yaml/json/toml)
func WithConfigType(configType string) Option {
	return func(m *manager) {
		m.v.SetConfigType(configType)
	}
}

// WithEnvPrefix 创建时即开启环境变量覆盖
func WithEnvPrefix(prefix string) Option {
	return func(m *manager) {
		m.BindEnv(prefix)
	}
}

// WithViper 使用外部 viper 实例
func WithViper(v *viper.Viper) Option {
	return func(m *manager) {
		m.v = v
	}
}
