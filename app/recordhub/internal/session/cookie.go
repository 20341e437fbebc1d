package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/lk2023060901/recordhub/pkg/crypto"
)

// CookieConfig 会话 cookie
type CookieConfig struct {
	Name     string `mapstructure:"name" json:"name" yaml:"name"`
	Secret   string `mapstructure:"secret" json:"secret" yaml:"secret"`
	Path     string `mapstructure:"path" json:"path" yaml:"path"`
	Secure   bool   `mapstructure:"secure" json:"secure" yaml:"secure"`
	SameSite string `mapstructure:"same_site" json:"same_site" yaml:"same_site"` // lax, strict, none
}

// Cookies 读写会话 cookie，配置 Secret 时值带 HMAC 签名
type Cookies struct {
	cfg    CookieConfig
	signer *crypto.Signer
}

// NewCookies 创建 cookie 编解码器
func NewCookies(cfg CookieConfig) *Cookies {
	if cfg.Name == "" {
		cfg.Name = DefaultCookieName
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	c := &Cookies{cfg: cfg}
	if cfg.Secret != "" {
		c.signer = crypto.NewSigner(cfg.Secret)
	}
	return c
}

// Name cookie 名
func (c *Cookies) Name() string { return c.cfg.Name }

// Read 读取会话 ID，缺失或签名不符时 ok=false
func (c *Cookies) Read(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.cfg.Name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	if c.signer == nil {
		return ck.Value, true
	}
	return c.signer.Unsign(ck.Value)
}

// Write 写出会话 cookie
func (c *Cookies) Write(w http.ResponseWriter, s *Session) {
	value := s.ID
	if c.signer != nil {
		value = c.signer.Sign(value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.cfg.Name,
		Value:    value,
		Path:     c.cfg.Path,
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: sameSite(c.cfg.SameSite),
	})
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
