package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/pkg/logger"
)

// PanicReporter 上报 panic 的回调，如 sentry
type PanicReporter func(ctx context.Context, recovered any)

// Recovery 捕获 handler panic，返回 500 {"error":"Internal server error"}
// 客户端断开导致的 broken pipe 只记日志不写响应
func Recovery(l logger.Logger, report PanicReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			dump, _ := httputil.DumpRequest(c.Request, false)
			if isBrokenPipe(rec) {
				l.Warn("http broken pipe", "error", rec, "request", string(dump))
				if err, ok := rec.(error); ok {
					_ = c.Error(err)
				}
				c.Abort()
				return
			}

			l.Error("http recovery from panic", "panic", rec, "request", string(dump))
			if report != nil {
				report(c.Request.Context(), rec)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}()
		c.Next()
	}
}

func isBrokenPipe(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var ne *net.OpError
	if !errors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
