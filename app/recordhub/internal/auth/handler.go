package auth

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/session"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/web"
)

// Whoami 会话信息，未登录时只有 sessionid
type Whoami struct {
	SessionID string        `json:"sessionid"`
	Username  string        `json:"username,omitempty"`
	Roles     model.RoleSet `json:"roles,omitempty"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Handler /api/auth
type Handler struct {
	resolver *Resolver
	auth     *Authenticator
	logger   logger.Logger
}

// NewHandler 创建处理器
func NewHandler(r *Resolver, a *Authenticator, l logger.Logger) *Handler {
	return &Handler{resolver: r, auth: a, logger: l.Named("auth.handler")}
}

// Register 注册路由，loginGuard 挂在登录接口前 (如限流)
func (h *Handler) Register(r gin.IRouter, loginGuard ...gin.HandlerFunc) {
	r.GET("/api/auth", h.Whoami)
	r.POST("/api/auth", append(loginGuard, h.Login)...)
	r.DELETE("/api/auth", h.Logout)
}

// Whoami 返回当前会话，没有会话时创建匿名会话
func (h *Handler) Whoami(c *gin.Context) {
	s, err := h.resolver.Ensure(c.Writer, c.Request)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s)
}

// Login 校验凭据并把身份绑定到当前会话
func (h *Handler) Login(c *gin.Context) {
	var cred credentials
	if err := c.ShouldBindJSON(&cred); err != nil {
		cred = credentials{}
	}

	u, err := h.auth.Login(c.Request.Context(), cred.Username, cred.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		h.logger.InfoContext(c.Request.Context(), "login rejected", "username", cred.Username)
		web.Fail(c, http.StatusUnauthorized, "Error ["+err.Error()+"]")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	s, err := h.resolver.Ensure(c.Writer, c.Request)
	if err != nil {
		h.fail(c, err)
		return
	}
	s.Bind(u)
	h.logger.InfoContext(c.Request.Context(), "user logged in", "username", u.Username)
	h.respond(c, s)
}

// Logout 解除身份，会话保留
func (h *Handler) Logout(c *gin.Context) {
	s, err := h.resolver.Ensure(c.Writer, c.Request)
	if err != nil {
		h.fail(c, err)
		return
	}
	if s.Authenticated() {
		h.logger.InfoContext(c.Request.Context(), "user logged out", "username", s.Username)
	}
	s.Unbind()
	h.respond(c, s)
}

func (h *Handler) respond(c *gin.Context, s *session.Session) {
	if err := h.resolver.Save(c.Request.Context(), c.Writer, s); err != nil {
		h.fail(c, err)
		return
	}
	out := Whoami{SessionID: s.ID}
	if s.Authenticated() {
		out.Username = s.Username
		out.Roles = s.Roles
	}
	web.OK(c, out)
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.logger.ErrorContext(c.Request.Context(), "session handling failed", "error", err)
	abortInternal(c)
}
