package auth

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/dao"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/pkg/crypto"
	"github.com/lk2023060901/recordhub/pkg/logger"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("Invalid credentials")

// Users 认证所需的用户读写
type Users interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// SeedUser 启动时确保存在的账号
type SeedUser struct {
	Username string        `mapstructure:"username" json:"username" yaml:"username"`
	Password string        `mapstructure:"password" json:"password" yaml:"password"`
	Roles    model.RoleSet `mapstructure:"roles" json:"roles" yaml:"roles"`
}

// DefaultSeedUsers admin/admin 与 user/user
func DefaultSeedUsers() []SeedUser {
	return []SeedUser{
		{Username: "admin", Password: "admin", Roles: model.Roles(model.RoleAdmin)},
		{Username: "user", Password: "user", Roles: model.Roles(model.RoleUser)},
	}
}

// Authenticator 校验用户名密码
type Authenticator struct {
	users  Users
	hasher *crypto.BcryptHasher
	logger logger.Logger
}

// NewAuthenticator 创建认证器
func NewAuthenticator(users Users, hasher *crypto.BcryptHasher, l logger.Logger) *Authenticator {
	return &Authenticator{users: users, hasher: hasher, logger: l.Named("auth")}
}

// Login 用户不存在与密码错误都返回 ErrInvalidCredentials
func (a *Authenticator) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := a.users.FindByUsername(ctx, username)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	if err := a.hasher.Verify(password, u.PasswordHash); err != nil {
		if !errors.Is(err, crypto.ErrPasswordMismatch) {
			a.logger.WarnContext(ctx, "password verification failed", "username", username, "error", err)
		}
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Seed 创建缺失的种子账号，已存在的不做修改
func (a *Authenticator) Seed(ctx context.Context, seeds []SeedUser) error {
	for _, s := range seeds {
		_, err := a.users.FindByUsername(ctx, s.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, dao.ErrNotFound) {
			return errors.Wrapf(err, "lookup seed user %s", s.Username)
		}
		hash, err := a.hasher.Hash(s.Password)
		if err != nil {
			return err
		}
		u := &model.User{ID: uuid.NewString(), Username: s.Username, PasswordHash: hash, Roles: s.Roles}
		if err := a.users.Create(ctx, u); err != nil {
			return errors.Wrapf(err, "create seed user %s", s.Username)
		}
		a.logger.Info("seed user created", "username", s.Username, "roles", s.Roles)
	}
	return nil
}
