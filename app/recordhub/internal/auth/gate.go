package auth

import (
	"net/http"

	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/session"
)

// Decision 鉴权结果
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionUnauthenticated
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Status HTTP 状态码与错误信息
func (d Decision) Status() (int, string) {
	switch d {
	case DecisionUnauthenticated:
		return http.StatusUnauthorized, "Unauthorized"
	case DecisionForbidden:
		return http.StatusForbidden, "Permission denied"
	default:
		return http.StatusOK, ""
	}
}

// Authorize 无会话或未绑定身份为 Unauthenticated，角色无交集为 Forbidden
func Authorize(sess *session.Session, required model.RoleSet) Decision {
	if !sess.Authenticated() {
		return DecisionUnauthenticated
	}
	if !sess.Roles.Intersects(required) {
		return DecisionForbidden
	}
	return DecisionAllow
}
