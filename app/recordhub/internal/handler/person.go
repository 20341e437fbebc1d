package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/service"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/web"
)

// PersonHandler /api/person
type PersonHandler struct {
	svc    *service.PersonService
	logger logger.Logger
}

// NewPersonHandler 创建人员处理器
func NewPersonHandler(svc *service.PersonService, l logger.Logger) *PersonHandler {
	return &PersonHandler{svc: svc, logger: l.Named("handler.person")}
}

type personUpdate struct {
	ID string `json:"_id"`
	model.PersonPatch
}

// List GET /api/person
func (h *PersonHandler) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), listQuery(c))
	if err != nil {
		respondError(c, h.logger, err, "Not found")
		return
	}
	web.OK(c, page)
}

// Create POST /api/person
func (h *PersonHandler) Create(c *gin.Context) {
	var p model.Person
	if !web.BindJSON(c, &p, "Missing data") {
		return
	}
	created, err := h.svc.Create(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err, "Not found")
		return
	}
	web.OK(c, created)
}

// Update PUT /api/person，请求体 {_id, ...修改字段}
func (h *PersonHandler) Update(c *gin.Context) {
	var req personUpdate
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		web.Fail(c, http.StatusBadRequest, "Missing update data")
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), req.ID, req.PersonPatch)
	if err != nil {
		respondError(c, h.logger, err, "Not found")
		return
	}
	web.OK(c, updated)
}

// Delete DELETE /api/person?_id=
func (h *PersonHandler) Delete(c *gin.Context) {
	id := c.Query("_id")
	if id == "" {
		web.Fail(c, http.StatusBadRequest, "Missing deletion data")
		return
	}
	deleted, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Not found")
		return
	}
	web.OK(c, deleted)
}
