package handler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/service"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/web"
)

// listQuery 读取 search/sort/order/skip/limit
func listQuery(c *gin.Context) model.ListQuery {
	return model.ListQuery{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Desc:   c.Query("order") == "desc",
		Skip:   web.QueryInt(c, "skip", 0),
		Limit:  web.QueryInt(c, "limit", 0),
	}
}

// respondError 校验错误 400，不存在 404，其余 500 并记录日志
func respondError(c *gin.Context, l logger.Logger, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		web.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		web.Fail(c, http.StatusNotFound, notFoundMsg)
	default:
		l.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		web.Fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
