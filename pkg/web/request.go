package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	webvalidator "github.com/lk2023060901/recordhub/pkg/web/validator"
)

// BindJSON 解析并校验请求体，失败时写出 400 并返回 false
// 空请求体使用 emptyMsg 作为错误信息
func BindJSON(c *gin.Context, obj any, emptyMsg string) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, io.EOF):
		Fail(c, http.StatusBadRequest, emptyMsg)
	case errors.As(err, &verrs):
		Fail(c, http.StatusBadRequest, webvalidator.Message(verrs))
	default:
		Fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	return false
}

// QueryInt 读取非负整数查询参数，缺失或非法时返回 def
func QueryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
