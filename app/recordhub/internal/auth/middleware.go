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

const sessionKey = "recordhub.session"

// LoadSession 解析会话放入 gin.Context，解析不到时不中断请求
func LoadSession(r *Resolver, l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := r.Resolve(c.Request)
		switch {
		case err == nil:
			c.Set(sessionKey, s)
		case !errors.Is(err, ErrNoSession):
			l.WarnContext(c.Request.Context(), "session lookup failed", "error", err)
		}
		c.Next()
	}
}

// FromContext 取出 LoadSession 放入的会话，可能为 nil
func FromContext(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// RequireRoles 要求会话角色与 roles 有交集
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	required := model.Roles(roles...)
	return func(c *gin.Context) {
		if d := Authorize(FromContext(c), required); d != DecisionAllow {
			status, msg := d.Status()
			web.Abort(c, status, msg)
			return
		}
		c.Next()
	}
}

func abortInternal(c *gin.Context) {
	web.Abort(c, http.StatusInternalServerError, "Internal server error")
}
