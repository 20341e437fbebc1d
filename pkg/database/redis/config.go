package redis

import (
	"fmt"
	"time"
)

// Config Redis 配置，Standalone 与 Cluster 二选一
type Config struct {
	Standalone *NodeConfig    `mapstructure:"standalone" json:"standalone,omitempty" yaml:"standalone,omitempty"`
	Cluster    *ClusterConfig `mapstructure:"cluster" json:"cluster,omitempty" yaml:"cluster,omitempty"`
	Pool       PoolConfig     `mapstructure:"pool" json:"pool" yaml:"pool"`
}

// NodeConfig 单节点
type NodeConfig struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host"`
	Port     int    `mapstructure:"port" json:"port" yaml:"port"`
	Password string `mapstructure:"password" json:"password" yaml:"password"`
	DB       int    `mapstructure:"db" json:"db" yaml:"db"`
}

// Addr host:port
func (n *NodeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

// ClusterConfig 集群
type ClusterConfig struct {
	Addrs    []string `mapstructure:"addrs" json:"addrs" yaml:"addrs"`
	Password string   `mapstructure:"password" json:"password" yaml:"password"`
}

// PoolConfig 连接池
type PoolConfig struct {
	PoolSize        int           `mapstructure:"pool_size" json:"pool_size" yaml:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns" json:"min_idle_conns" yaml:"min_idle_conns"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout" json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
}

// DefaultPoolConfig 默认连接池参数
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		PoolSize:        20,
		MinIdleConns:    2,
		ConnMaxIdleTime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	}
}

// Validate 校验模式配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if (c.Standalone == nil) == (c.Cluster == nil) {
		return ErrInvalidConfig
	}
	if c.Cluster != nil && len(c.Cluster.Addrs) == 0 {
		return fmt.Errorf("%w: cluster.addrs is empty", ErrInvalidConfig)
	}
	return nil
}
