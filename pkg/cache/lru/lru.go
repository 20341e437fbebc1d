package lru

import (
	"container/list"
	"sync"
	"time"
)

// Config LRU 配置
type Config struct {
	// MaxSize 最大条目数，<=0 表示不限
	MaxSize int
	// TTL 条目存活时间，<=0 表示永不过期
	TTL time.Duration
	// CleanupInterval 后台清理过期条目的周期，<=0 表示不启动清理
	CleanupInterval time.Duration
}

// LRU 带过期时间的并发安全 LRU 缓存
type LRU[K comparable, V any] struct {
	cfg     Config
	mu      sync.Mutex
	order   *list.List
	items   map[K]*list.Element
	onEvict func(K, V)
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// Option LRU 选项
type Option[K comparable, V any] func(*LRU[K, V])

// WithOnEvict 条目被淘汰或过期时回调，回调在持锁状态下执行
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

// New 创建缓存
func New[K comparable, V any](cfg Config, opts ...Option[K, V]) *LRU[K, V] {
	c := &LRU[K, V]{
		cfg:   cfg,
		order: list.New(),
		items: make(map[K]*list.Element),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.CleanupInterval > 0 && cfg.TTL > 0 {
		go c.janitor(cfg.CleanupInterval)
	}
	return c
}

// Get 读取并刷新热度，过期条目视为不存在
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok || c.expired(el) {
		if ok {
			c.removeElement(el)
		}
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry[K, V]).value, true
}

// Set 写入或覆盖
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// GetOrCreate 不存在时调用 create 生成并写入，整个过程持锁
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok && !c.expired(el) {
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value
	}
	v := create()
	c.set(key, v)
	return v
}

// Delete 删除条目，不触发 onEvict
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Len 当前条目数 (含尚未清理的过期条目)
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Close 停止后台清理
func (c *LRU[K, V]) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *LRU[K, V]) set(key K, value V) {
	var exp time.Time
	if c.cfg.TTL > 0 {
		exp = c.now().Add(c.cfg.TTL)
	}
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value, e.expiresAt = value, exp
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, expiresAt: exp})
	if c.cfg.MaxSize > 0 && c.order.Len() > c.cfg.MaxSize {
		c.removeElement(c.order.Back())
	}
}

func (c *LRU[K, V]) expired(el *list.Element) bool {
	e := el.Value.(*entry[K, V])
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

func (c *LRU[K, V]) removeElement(el *list.Element) {
	e := el.Value.(*entry[K, V])
	c.order.Remove(el)
	delete(c.items, e.key)
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}

// Purge 清理过期条目，返回清理数量
func (c *LRU[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el) {
			c.removeElement(el)
			n++
		}
		el = prev
	}
	return n
}

func (c *LRU[K, V]) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Purge()
		case <-c.stop:
			return
		}
	}
}
