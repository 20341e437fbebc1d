package session

import (
	"time"

	"github.com/lk2023060901/recordhub/pkg/database/redis"
)

// DefaultCookieName 默认 cookie 名
const DefaultCookieName = "recordhub.sid"

// Config 会话配置
type Config struct {
	Store     string        `mapstructure:"store" json:"store" yaml:"store" validate:"oneof=memory redis"`
	TTL       time.Duration `mapstructure:"ttl" json:"ttl" yaml:"ttl"`
	SweepSpec string        `mapstructure:"sweep_spec" json:"sweep_spec" yaml:"sweep_spec"`
	RedisKey  string        `mapstructure:"redis_key_prefix" json:"redis_key_prefix" yaml:"redis_key_prefix"`
	Cookie    CookieConfig  `mapstructure:"cookie" json:"cookie" yaml:"cookie"`
	Redis     redis.Config  `mapstructure:"redis" json:"redis" yaml:"redis"`
}

// DefaultConfig 默认内存存储，有效期 24 小时
func DefaultConfig() Config {
	return Config{
		Store:     "memory",
		TTL:       24 * time.Hour,
		SweepSpec: "@every 1m",
		RedisKey:  "recordhub:sess:",
		Cookie:    CookieConfig{Name: DefaultCookieName, Path: "/", SameSite: "lax"},
	}
}
