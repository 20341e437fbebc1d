package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Error string `json:"error"`
}

// OK 200 JSON 响应
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Fail 错误响应 {"error": msg}
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorBody{Error: msg})
}

// Abort 中断后续处理并返回错误
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg})
}
