package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/service"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/web"
)

const projectNotFound = "Project not found"

// ProjectHandler /api/project 与 /api/analysis
type ProjectHandler struct {
	svc    *service.ProjectService
	logger logger.Logger
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *service.ProjectService, l logger.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, logger: l.Named("handler.project")}
}

type projectUpdate struct {
	ID string `json:"_id"`
	model.ProjectPatch
}

type tasksUpdate struct {
	ID    string        `json:"_id"`
	Tasks *[]model.Task `json:"tasks"`
}

// List GET /api/project
func (h *ProjectHandler) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), listQuery(c))
	if err != nil {
		respondError(c, h.logger, err, "Not found")
		return
	}
	web.OK(c, page)
}

// Create POST /api/project
func (h *ProjectHandler) Create(c *gin.Context) {
	var p model.Project
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

// Update PUT /api/project
func (h *ProjectHandler) Update(c *gin.Context) {
	var req projectUpdate
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		web.Fail(c, http.StatusBadRequest, "Missing update data")
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), req.ID, req.ProjectPatch)
	if err != nil {
		respondError(c, h.logger, err, "Not found")
		return
	}
	web.OK(c, updated)
}

// Delete DELETE /api/project?_id=
func (h *ProjectHandler) Delete(c *gin.Context) {
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

// SetTasks PUT /api/project/tasks，请求体 {_id, tasks}
func (h *ProjectHandler) SetTasks(c *gin.Context) {
	var req tasksUpdate
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" || req.Tasks == nil {
		web.Fail(c, http.StatusBadRequest, "Missing task data")
		return
	}
	p, err := h.svc.SetTasks(c.Request.Context(), req.ID, *req.Tasks)
	if err != nil {
		respondError(c, h.logger, err, projectNotFound)
		return
	}
	web.OK(c, p)
}

// Tasks GET /api/project/:projectId/tasks
func (h *ProjectHandler) Tasks(c *gin.Context) {
	tasks, err := h.svc.Tasks(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondError(c, h.logger, err, projectNotFound)
		return
	}
	web.OK(c, tasks)
}

// Analysis GET /api/analysis/projects
func (h *ProjectHandler) Analysis(c *gin.Context) {
	out, err := h.svc.Analysis(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, projectNotFound)
		return
	}
	web.OK(c, out)
}

// TaskAnalysis GET /api/analysis/projects/:projectId/tasks
func (h *ProjectHandler) TaskAnalysis(c *gin.Context) {
	out, err := h.svc.TaskAnalysis(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondError(c, h.logger, err, projectNotFound)
		return
	}
	web.OK(c, out)
}
