package gateway

import (
	"sync"

	"github.com/lk2023060901/recordhub/pkg/websocket"
)

// fakeConn 记录收到的帧，failSend 时 Send 返回错误
type fakeConn struct {
	id       string
	failSend bool

	mu     sync.Mutex
	open   bool
	frames []string
	closes int
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id, open: true} }

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(msg *websocket.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return websocket.ErrConnectionClosed
	}
	if f.failSend {
		return websocket.ErrSendQueueFull
	}
	f.frames = append(f.frames, string(msg.Data))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.closes++
	return nil
}

func (f *fakeConn) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeConn) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.frames...)
}

func (f *fakeConn) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}
