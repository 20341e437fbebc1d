package lru

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestEvictOldest 测试容量淘汰
func TestEvictOldest(t *testing.T) {
	var evicted []string
	c := New[string, int](Config{MaxSize: 2}, WithOnEvict(func(k string, _ int) { evicted = append(evicted, k) }))
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, 2, c.Len())
}

// TestTTL 测试过期
func TestTTL(t *testing.T) {
	c := New[string, int](Config{TTL: time.Minute})
	defer c.Close()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", 1)
	assert.Equal(t, 1, c.GetOrCreate("k", func() int { return 2 }))

	now = now.Add(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("x", 1)
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 5, c.GetOrCreate("x", func() int { return 5 }))

	c.Delete("x")
	assert.Equal(t, 0, c.Len())
}
