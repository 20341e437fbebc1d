package websocket

import (
	"fmt"
	"time"
)

// Config 服务端配置
type Config struct {
	ReadBufferSize    int           `mapstructure:"read_buffer_size" json:"read_buffer_size" yaml:"read_buffer_size"`
	WriteBufferSize   int           `mapstructure:"write_buffer_size" json:"write_buffer_size" yaml:"write_buffer_size"`
	MaxMessageSize    int64         `mapstructure:"max_message_size" json:"max_message_size" yaml:"max_message_size"`
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout" json:"handshake_timeout" yaml:"handshake_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	PongTimeout       time.Duration `mapstructure:"pong_timeout" json:"pong_timeout" yaml:"pong_timeout"`
	PingInterval      time.Duration `mapstructure:"ping_interval" json:"ping_interval" yaml:"ping_interval"`
	SendQueueSize     int           `mapstructure:"send_queue_size" json:"send_queue_size" yaml:"send_queue_size"`
	EnableCompression bool          `mapstructure:"enable_compression" json:"enable_compression" yaml:"enable_compression"`

	// AllowedOrigins 为空时仅允许同源或无 Origin 的请求，"*" 放行所有来源
	AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins" yaml:"allowed_origins"`

	Pool PoolConfig `mapstructure:"pool" json:"pool" yaml:"pool"`
}

// PoolConfig 连接数限制
type PoolConfig struct {
	MaxConnections      int `mapstructure:"max_connections" json:"max_connections" yaml:"max_connections"`
	MaxConnectionsPerIP int `mapstructure:"max_connections_per_ip" json:"max_connections_per_ip" yaml:"max_connections_per_ip"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		MaxMessageSize:   512 * 1024,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		PongTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		SendQueueSize:    256,
		Pool: PoolConfig{
			MaxConnections:      10000,
			MaxConnectionsPerIP: 100,
		},
	}
}

// Validate 补齐零值并检查取值关系
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = d.PongTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = d.SendQueueSize
	}
	if c.Pool.MaxConnections <= 0 {
		c.Pool.MaxConnections = d.Pool.MaxConnections
	}
	if c.PingInterval >= c.PongTimeout {
		return fmt.Errorf("%w: ping_interval (%s) must be shorter than pong_timeout (%s)",
			ErrInvalidConfig, c.PingInterval, c.PongTimeout)
	}
	return nil
}
