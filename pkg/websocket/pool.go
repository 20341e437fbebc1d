package websocket

import (
	"sync"
)

// Pool 按连接 ID 索引的活跃连接集合，附带单 IP 计数
type Pool struct {
	cfg   PoolConfig
	mu    sync.RWMutex
	conns map[string]*Connection
	perIP map[string]int
	ipOf  map[string]string
}

// NewPool 创建连接池
func NewPool(cfg PoolConfig) *Pool {
	return &Pool{
		cfg:   cfg,
		conns: make(map[string]*Connection),
		perIP: make(map[string]int),
		ipOf:  make(map[string]string),
	}
}

// Reserve 检查限额，通过时为 ip 预占一个名额
func (p *Pool) Reserve(ip string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cfg.MaxConnections > 0 && p.reserved() >= p.cfg.MaxConnections {
		return ErrPoolFull
	}
	if p.cfg.MaxConnectionsPerIP > 0 && p.perIP[ip] >= p.cfg.MaxConnectionsPerIP {
		return ErrMaxConnectionsPerIP
	}
	p.perIP[ip]++
	return nil
}

// Release 归还未使用的预占名额
func (p *Pool) Release(ip string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decIP(ip)
}

func (p *Pool) reserved() int {
	n := 0
	for _, c := range p.perIP {
		n += c
	}
	return n
}

func (p *Pool) decIP(ip string) {
	if p.perIP[ip] <= 1 {
		delete(p.perIP, ip)
		return
	}
	p.perIP[ip]--
}

// Add 登记已预占名额的连接
func (p *Pool) Add(ip string, c *Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[c.ID()] = c
	p.ipOf[c.ID()] = ip
}

// Remove 移除连接并归还名额，重复调用无副作用
func (p *Pool) Remove(c *Connection) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.conns[c.ID()]; !ok {
		return false
	}
	delete(p.conns, c.ID())
	p.decIP(p.ipOf[c.ID()])
	delete(p.ipOf, c.ID())
	return true
}

// Len 活跃连接数
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}

// All 活跃连接快照
func (p *Pool) All() []*Connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Connection, 0, len(p.conns))
	for _, c := range p.conns {
		out = append(out, c)
	}
	return out
}
