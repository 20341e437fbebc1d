package web

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Config HTTP 服务配置
type Config struct {
	Host            string        `mapstructure:"host" json:"host" yaml:"host"`
	Port            int           `mapstructure:"port" json:"port" yaml:"port" validate:"min=0,max=65535"`
	Mode            string        `mapstructure:"mode" json:"mode" yaml:"mode" validate:"omitempty,oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies" json:"trusted_proxies" yaml:"trusted_proxies"`
	// CORS 允许的来源，为空时不挂载 CORS 中间件
	AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins" yaml:"allowed_origins"`
}

// DefaultConfig 默认配置，监听 8000
// WriteTimeout 为 0：/ws 长连接由 websocket 层自行控制写超时
func DefaultConfig() *Config {
	return &Config{
		Port:            8000,
		Mode:            gin.ReleaseMode,
		ReadTimeout:     15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}
