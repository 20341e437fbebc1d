package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/session"
)

// ErrNoSession 请求未携带可解析的会话
var ErrNoSession = errors.New("no session")

// Resolver 从请求 cookie 解析会话，HTTP 中间件与 websocket 握手共用
type Resolver struct {
	store   session.Store
	cookies *session.Cookies
	ttl     time.Duration
}

// NewResolver 创建解析器
func NewResolver(store session.Store, cookies *session.Cookies, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Resolver{store: store, cookies: cookies, ttl: ttl}
}

// Resolve 读取 cookie 并加载会话
// cookie 缺失、签名不符或会话不存在时返回 ErrNoSession
func (r *Resolver) Resolve(req *http.Request) (*session.Session, error) {
	id, ok := r.cookies.Read(req)
	if !ok {
		return nil, ErrNoSession
	}
	s, err := r.store.Get(req.Context(), id)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Ensure 解析会话，没有时创建匿名会话并写出 cookie
func (r *Resolver) Ensure(w http.ResponseWriter, req *http.Request) (*session.Session, error) {
	s, err := r.Resolve(req)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNoSession) {
		return nil, err
	}
	if s, err = session.New(r.ttl); err != nil {
		return nil, err
	}
	if err := r.store.Save(req.Context(), s); err != nil {
		return nil, errors.Wrap(err, "save new session")
	}
	r.cookies.Write(w, s)
	return s, nil
}

// Save 延长有效期后保存并刷新 cookie
func (r *Resolver) Save(ctx context.Context, w http.ResponseWriter, s *session.Session) error {
	s.ExpiresAt = time.Now().Add(r.ttl)
	if err := r.store.Save(ctx, s); err != nil {
		return errors.Wrap(err, "save session")
	}
	r.cookies.Write(w, s)
	return nil
}
