package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch 密码不匹配
var ErrPasswordMismatch = errors.New("crypto: password mismatch")

// BcryptHasher bcrypt 密码哈希
type BcryptHasher struct {
	cost int
}

// BcryptOption bcrypt 配置选项
type BcryptOption func(*BcryptHasher)

// WithCost 设置工作因子，超出 [bcrypt.MinCost, bcrypt.MaxCost] 时回退默认值
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewBcryptHasher 创建 bcrypt 哈希器
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash 哈希密码
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify 校验密码，不匹配返回 ErrPasswordMismatch
func (h *BcryptHasher) Verify(password, hashed string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	return nil
}

// IsMatch 密码是否匹配
func (h *BcryptHasher) IsMatch(password, hashed string) bool {
	return h.Verify(password, hashed) == nil
}
