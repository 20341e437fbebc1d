package gateway

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/session"
	"github.com/lk2023060901/recordhub/pkg/logger"
)

// UserStatus 用户的会话数与是否有在线推送连接
type UserStatus struct {
	Sessions  int  `json:"sessions"`
	Websocket bool `json:"websocket"`
}

// UserLister 已知用户来源
type UserLister interface {
	List(ctx context.Context) ([]*model.User, error)
}

// StatusAggregator 汇总 用户 × 会话存储 × 连接注册表
type StatusAggregator struct {
	users    UserLister
	store    session.Store
	registry *Registry
	logger   logger.Logger
}

// NewStatusAggregator 创建汇总器
func NewStatusAggregator(users UserLister, store session.Store, reg *Registry, l logger.Logger) *StatusAggregator {
	return &StatusAggregator{users: users, store: store, registry: reg, logger: l.Named("gateway.status")}
}

// Summarize 每个已知用户一项；遍历期间消失的会话不计数，属于未知用户的会话忽略
func (a *StatusAggregator) Summarize(ctx context.Context) (map[string]UserStatus, error) {
	users, err := a.users.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	out := make(map[string]UserStatus, len(users))
	for _, u := range users {
		out[u.Username] = UserStatus{}
	}

	ids, err := a.store.IDs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	for _, id := range ids {
		s, err := a.store.Get(ctx, id)
		if errors.Is(err, session.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "load session")
		}
		if !s.Authenticated() {
			continue
		}
		st, ok := out[s.Username]
		if !ok {
			a.logger.DebugContext(ctx, "session bound to unknown user ignored", "username", s.Username)
			continue
		}
		st.Sessions++
		if a.registry.IsLive(id) {
			st.Websocket = true
		}
		out[s.Username] = st
	}
	return out, nil
}
