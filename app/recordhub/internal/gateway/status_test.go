package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lk2023060901/recordhub/app/recordhub/internal/dao"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/session"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vanishingStore IDs 额外返回一个已经不存在的会话
type vanishingStore struct {
	*session.MemoryStore
}

func (v vanishingStore) IDs(ctx context.Context) ([]string, error) {
	ids, err := v.MemoryStore.IDs(ctx)
	return append(ids, "gone"), err
}

func saveSession(t *testing.T, store session.Store, username string, roles ...model.Role) *session.Session {
	t.Helper()
	s, err := session.New(time.Hour)
	require.NoError(t, err)
	if username != "" {
		s.Bind(&model.User{Username: username, Roles: model.Roles(roles...)})
	}
	require.NoError(t, store.Save(context.Background(), s))
	return s
}

// TestSummarize 测试 admin 一个在线会话、bob 两个离线会话
func TestSummarize(t *testing.T) {
	ctx := context.Background()
	users := dao.NewMemorySet().Users
	require.NoError(t, users.Create(ctx, &model.User{ID: "1", Username: "admin", Roles: model.Roles(model.RoleAdmin)}))
	require.NoError(t, users.Create(ctx, &model.User{ID: "2", Username: "bob", Roles: model.Roles(model.RoleUser)}))

	store := vanishingStore{session.NewMemoryStore()}
	admin := saveSession(t, store, "admin", model.RoleAdmin)
	bob1 := saveSession(t, store, "bob", model.RoleUser)
	saveSession(t, store, "bob", model.RoleUser)
	saveSession(t, store, "")
	saveSession(t, store, "ghost", model.RoleUser)

	reg := NewRegistry(nil)
	reg.Register(admin.ID, newFakeConn("admin-ws"))
	closed := newFakeConn("bob-ws")
	reg.Register(bob1.ID, closed)
	_ = closed.Close()

	agg := NewStatusAggregator(users, store, reg, logger.NewNoop())
	got, err := agg.Summarize(ctx)
	require.NoError(t, err)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"admin":{"sessions":1,"websocket":true},"bob":{"sessions":2,"websocket":false}}`, string(b))
}

// TestSummarizeNoSessions 测试没有会话的用户也出现
func TestSummarizeNoSessions(t *testing.T) {
	ctx := context.Background()
	users := dao.NewMemorySet().Users
	require.NoError(t, users.Create(ctx, &model.User{ID: "1", Username: "carol"}))

	agg := NewStatusAggregator(users, session.NewMemoryStore(), NewRegistry(nil), logger.NewNoop())
	got, err := agg.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]UserStatus{"carol": {}}, got)
}
