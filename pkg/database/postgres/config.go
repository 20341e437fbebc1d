package postgres

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DBConfig 数据库实例
type DBConfig struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host"`
	Port     int    `mapstructure:"port" json:"port" yaml:"port"`
	User     string `mapstructure:"user" json:"user" yaml:"user"`
	Password string `mapstructure:"password" json:"password" yaml:"password"`
	DBName   string `mapstructure:"db_name" json:"db_name" yaml:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode" json:"ssl_mode" yaml:"ssl_mode"` // disable, require, verify-ca, verify-full
}

// PoolConfig 连接池
type PoolConfig struct {
	MaxConns          int32         `mapstructure:"max_conns" json:"max_conns" yaml:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns" json:"min_conns" yaml:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime" json:"max_conn_lifetime" yaml:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time" json:"max_conn_idle_time" yaml:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period" json:"health_check_period" yaml:"health_check_period"`
}

// Config PostgreSQL 配置
type Config struct {
	DBConfig       `mapstructure:",squash" json:",inline" yaml:",inline"`
	Pool           PoolConfig    `mapstructure:"pool" json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" json:"query_timeout" yaml:"query_timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		DBConfig: DBConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "recordhub",
			SSLMode: "disable",
		},
		Pool: PoolConfig{
			MaxConns:          25,
			MinConns:          2,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   30 * time.Minute,
			HealthCheckPeriod: time.Minute,
		},
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   30 * time.Second,
	}
}

// Validate 校验
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: host is empty", ErrInvalidConfig)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
	case c.User == "":
		return fmt.Errorf("%w: user is empty", ErrInvalidConfig)
	case c.DBName == "":
		return fmt.Errorf("%w: db_name is empty", ErrInvalidConfig)
	case c.Pool.MaxConns <= 0:
		return fmt.Errorf("%w: max_conns must be positive", ErrInvalidConfig)
	case c.Pool.MinConns < 0 || c.Pool.MinConns > c.Pool.MaxConns:
		return fmt.Errorf("%w: min_conns must be within [0, max_conns]", ErrInvalidConfig)
	}
	return nil
}

// ConnString 构建 postgres:// 连接串
func (c *Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
