package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/pkg/cache/lru"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"golang.org/x/time/rate"
)

// RateLimitConfig 令牌桶限流配置
type RateLimitConfig struct {
	// RequestsPerSecond 每个 key 的补充速率
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second"`
	// Burst 桶容量
	Burst int `mapstructure:"burst" json:"burst" yaml:"burst"`
	// MaxKeys 同时跟踪的 key 数量上限
	MaxKeys int `mapstructure:"max_keys" json:"max_keys" yaml:"max_keys"`
	// KeyTTL key 闲置多久后丢弃其限流器
	KeyTTL time.Duration `mapstructure:"key_ttl" json:"key_ttl" yaml:"key_ttl"`
}

// DefaultRateLimitConfig 每 IP 每秒 5 次，突发 10 次
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 5, Burst: 10, MaxKeys: 10000, KeyTTL: 10 * time.Minute}
}

// KeyFunc 提取限流 key
type KeyFunc func(c *gin.Context) string

// ByClientIP 按客户端 IP 限流
func ByClientIP(c *gin.Context) string { return c.ClientIP() }

// RateLimiter 按 key 维护令牌桶
type RateLimiter struct {
	cfg      RateLimitConfig
	limiters *lru.LRU[string, *rate.Limiter]
	logger   logger.Logger
	key      KeyFunc
}

// NewRateLimiter 创建限流器，key 为 nil 时按 IP
func NewRateLimiter(cfg RateLimitConfig, key KeyFunc, l logger.Logger) *RateLimiter {
	if key == nil {
		key = ByClientIP
	}
	return &RateLimiter{
		cfg: cfg,
		limiters: lru.New[string, *rate.Limiter](lru.Config{
			MaxSize:         cfg.MaxKeys,
			TTL:             cfg.KeyTTL,
			CleanupInterval: cfg.KeyTTL,
		}),
		logger: l,
		key:    key,
	}
}

// Reserve 尝试取一个令牌，失败时返回需要等待的时间
func (rl *RateLimiter) Reserve(key string) (bool, time.Duration) {
	lim := rl.limiters.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	})
	now := time.Now()
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Close 停止后台清理
func (rl *RateLimiter) Close() error { return rl.limiters.Close() }

// Handler 限流中间件，超限返回 429 并带 Retry-After
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.key(c)
		ok, wait := rl.Reserve(key)
		if ok {
			c.Next()
			return
		}
		rl.logger.Warn("rate limit exceeded", "key", key, "path", c.Request.URL.Path)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
	}
}
