package gateway

import "sync"

// Registry 会话 ID 到推送连接的映射，每个会话最多一个连接
// 每个方法在同一把锁内原子完成
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]Conn
	metrics *Metrics
}

// NewRegistry 创建注册表，m 可为 nil
func NewRegistry(m *Metrics) *Registry {
	return &Registry{conns: make(map[string]Conn), metrics: m}
}

type entry struct {
	sessionID string
	conn      Conn
}

// Register 登记连接，返回被替换的旧连接 (没有时为 nil)
// 旧连接不会被关闭
func (r *Registry) Register(sessionID string, c Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conns[sessionID]
	r.conns[sessionID] = c
	r.metrics.setRegistered(len(r.conns))
	if prev == c {
		return nil
	}
	return prev
}

// Unregister 移除会话的连接，不存在时无操作
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, sessionID)
	r.metrics.setRegistered(len(r.conns))
}

// UnregisterConn 仅当会话当前登记的正是 c 时移除
// 被替换的旧连接关闭时不会误删新连接
func (r *Registry) UnregisterConn(sessionID string, c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.conns[sessionID]; !ok || cur != c {
		return false
	}
	delete(r.conns, sessionID)
	r.metrics.setRegistered(len(r.conns))
	return true
}

// Owns 会话当前登记的是否为 c
func (r *Registry) Owns(sessionID string, c Conn) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cur, ok := r.conns[sessionID]
	return ok && cur == c
}

// IsLive 会话是否持有处于 OPEN 的连接
func (r *Registry) IsLive(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[sessionID]
	return ok && c.IsOpen()
}

// Snapshot 当前所有 OPEN 连接的拷贝
func (r *Registry) Snapshot() []Conn {
	entries := r.entries()
	out := make([]Conn, len(entries))
	for i, e := range entries {
		out[i] = e.conn
	}
	return out
}

func (r *Registry) entries() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entry, 0, len(r.conns))
	for id, c := range r.conns {
		if c.IsOpen() {
			out = append(out, entry{sessionID: id, conn: c})
		}
	}
	return out
}

// Len 登记的会话数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
