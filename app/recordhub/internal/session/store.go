package session

import "context"

// Store 会话存储，由认证模块写入，网关只读
type Store interface {
	// Get 不存在或已过期返回 ErrSessionNotFound
	Get(ctx context.Context, id string) (*Session, error)
	// Save 新建或覆盖
	Save(ctx context.Context, s *Session) error
	// Delete 幂等删除
	Delete(ctx context.Context, id string) error
	// IDs 当前全部会话 ID，调用方需容忍随后 Get 返回 ErrSessionNotFound
	IDs(ctx context.Context) ([]string, error)
}
