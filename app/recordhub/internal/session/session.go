package session

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// Session HTTP 会话，匿名会话的 Username 为空
type Session struct {
	ID        string        `json:"id"`
	Username  string        `json:"username,omitempty"`
	Roles     model.RoleSet `json:"roles"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// New 创建匿名会话
func New(ttl time.Duration) (*Session, error) {
	id, err := NewID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:        id,
		Roles:     model.RoleSet{},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// NewID 32 字节随机数的 base64url 编码
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate session id")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Authenticated 是否绑定了用户
func (s *Session) Authenticated() bool {
	return s != nil && s.Username != ""
}

// Expired 是否已过期
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Bind 绑定用户身份
func (s *Session) Bind(u *model.User) {
	s.Username = u.Username
	s.Roles = append(model.RoleSet{}, u.Roles...)
}

// Unbind 解除身份，会话本身保留
func (s *Session) Unbind() {
	s.Username = ""
	s.Roles = model.RoleSet{}
}

// Clone 深拷贝
func (s *Session) Clone() *Session {
	c := *s
	c.Roles = append(model.RoleSet{}, s.Roles...)
	return &c
}
