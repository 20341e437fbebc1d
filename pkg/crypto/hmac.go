package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Signer 对字符串做 HMAC-SHA256 签名，格式 value.signature
type Signer struct {
	key []byte
}

// NewSigner 创建签名器
func NewSigner(key string) *Signer {
	return &Signer{key: []byte(key)}
}

func (s *Signer) mac(value string) string {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}

// Sign 签名
func (s *Signer) Sign(value string) string {
	return value + "." + s.mac(value)
}

// Unsign 校验并取回原值
func (s *Signer) Unsign(signed string) (string, bool) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 {
		return "", false
	}
	value, sig := signed[:i], signed[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.mac(value))) {
		return "", false
	}
	return value, true
}
