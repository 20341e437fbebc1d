package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/recordhub/pkg/database/redis"
)

var _ Store = (*RedisStore)(nil)

// RedisStore 会话以 JSON 存在 <prefix><id>，过期交给 Redis TTL
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "recordhub:sess:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(id string) string { return r.prefix + id }

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(id))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load session")
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, errors.Wrapf(err, "decode session")
	}
	if s.Expired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	ttl := time.Duration(0)
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return r.Delete(ctx, s.ID)
		}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	return errors.Wrap(r.client.Set(ctx, r.key(s.ID), raw, ttl), "save session")
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := r.client.Del(ctx, r.key(id))
	return errors.Wrap(err, "delete session")
}

func (r *RedisStore) IDs(ctx context.Context) ([]string, error) {
	keys, err := r.client.Scan(ctx, r.prefix+"*", 200)
	if err != nil {
		return nil, errors.Wrap(err, "scan sessions")
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, r.prefix))
	}
	return ids, nil
}
