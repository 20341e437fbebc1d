package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestBcryptHashVerify 测试哈希与校验
func TestBcryptHashVerify(t *testing.T) {
	h := NewBcryptHasher(WithCost(bcrypt.MinCost))

	hashed, err := h.Hash("admin")
	require.NoError(t, err)
	assert.NotEqual(t, "admin", hashed)

	assert.NoError(t, h.Verify("admin", hashed))
	assert.ErrorIs(t, h.Verify("wrong", hashed), ErrPasswordMismatch)
	assert.True(t, h.IsMatch("admin", hashed))

	err = h.Verify("admin", "not-a-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

// TestWithCostRange 测试越界工作因子回退默认值
func TestWithCostRange(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(WithCost(1)).cost)
	assert.Equal(t, 12, NewBcryptHasher(WithCost(12)).cost)
}

// TestSigner 测试签名与篡改检测
func TestSigner(t *testing.T) {
	s := NewSigner("secret")
	signed := s.Sign("abc.def")

	v, ok := s.Unsign(signed)
	require.True(t, ok)
	assert.Equal(t, "abc.def", v)

	tests := []string{"", "abc", ".sig", signed + "x", "zzz" + signed[3:]}
	for _, in := range tests {
		_, ok := s.Unsign(in)
		assert.False(t, ok, in)
	}

	_, ok = NewSigner("other").Unsign(signed)
	assert.False(t, ok)
}
