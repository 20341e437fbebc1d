package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client go-redis 封装，对外不暴露 go-redis 类型
type Client struct {
	rdb redis.UniversalClient
	cfg *Config
}

// NewClient 创建客户端，不做连通性检查
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool := cfg.Pool
	if pool == (PoolConfig{}) {
		pool = DefaultPoolConfig()
	}

	if cfg.Standalone != nil {
		return &Client{cfg: cfg, rdb: redis.NewClient(&redis.Options{
			Addr:            cfg.Standalone.Addr(),
			Password:        cfg.Standalone.Password,
			DB:              cfg.Standalone.DB,
			PoolSize:        pool.PoolSize,
			MinIdleConns:    pool.MinIdleConns,
			ConnMaxIdleTime: pool.ConnMaxIdleTime,
			DialTimeout:     pool.DialTimeout,
			ReadTimeout:     pool.ReadTimeout,
			WriteTimeout:    pool.WriteTimeout,
		})}, nil
	}

	return &Client{cfg: cfg, rdb: redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:           cfg.Cluster.Addrs,
		Password:        cfg.Cluster.Password,
		PoolSize:        pool.PoolSize,
		MinIdleConns:    pool.MinIdleConns,
		ConnMaxIdleTime: pool.ConnMaxIdleTime,
		DialTimeout:     pool.DialTimeout,
		ReadTimeout:     pool.ReadTimeout,
		WriteTimeout:    pool.WriteTimeout,
	})}, nil
}

// Ping 连通性检查
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close 关闭连接池
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Get 读取字符串，不存在返回 ErrNil
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// MGet 批量读取，不存在的键对应位置 ok=false
func (c *Client) MGet(ctx context.Context, keys ...string) ([]string, []bool, error) {
	if len(keys) == 0 {
		return nil, nil, nil
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("redis mget: %w", err)
	}
	out := make([]string, len(vals))
	found := make([]bool, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i], found[i] = s, true
		}
	}
	return out, found, nil
}

// Set 写入，ttl<=0 永不过期
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Del 删除，返回实际删除数量
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return n, nil
}

// Expire 刷新过期时间，键不存在返回 false
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis expire %s: %w", key, err)
	}
	return ok, nil
}

// Scan 遍历匹配 pattern 的全部键
// 集群模式下在每个 master 上并发遍历
func (c *Client) Scan(ctx context.Context, pattern string, batch int64) ([]string, error) {
	if batch <= 0 {
		batch = 100
	}

	var (
		mu   sync.Mutex
		keys []string
	)
	scan := func(ctx context.Context, node redis.Cmdable) error {
		iter := node.Scan(ctx, 0, pattern, batch).Iterator()
		for iter.Next(ctx) {
			mu.Lock()
			keys = append(keys, iter.Val())
			mu.Unlock()
		}
		return iter.Err()
	}

	var err error
	if cc, ok := c.rdb.(*redis.ClusterClient); ok {
		err = cc.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return scan(ctx, node)
		})
	} else {
		err = scan(ctx, c.rdb)
	}
	if err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	return keys, nil
}
