package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/gateway"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/metrics/system"
	"github.com/lk2023060901/recordhub/pkg/web"
)

// ControlHandler /api/control
type ControlHandler struct {
	status   *gateway.StatusAggregator
	registry *gateway.Registry
	system   *system.Collector
	logger   logger.Logger
}

// NewControlHandler 创建控制台处理器，sys 可为 nil
func NewControlHandler(status *gateway.StatusAggregator, reg *gateway.Registry, sys *system.Collector, l logger.Logger) *ControlHandler {
	return &ControlHandler{status: status, registry: reg, system: sys, logger: l.Named("handler.control")}
}

// Who GET /api/control/who
func (h *ControlHandler) Who(c *gin.Context) {
	out, err := h.status.Summarize(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Not found")
		return
	}
	web.OK(c, out)
}

// SystemStatus /api/control/system 的响应
type SystemStatus struct {
	Connections int           `json:"connections"`
	Process     *system.Stats `json:"process,omitempty"`
}

// System GET /api/control/system
func (h *ControlHandler) System(c *gin.Context) {
	out := SystemStatus{Connections: h.registry.Len()}
	if h.system != nil {
		st := h.system.Stats()
		out.Process = &st
	}
	web.OK(c, out)
}

// Health GET /health
func Health(c *gin.Context) {
	web.OK(c, gin.H{"status": "ok"})
}
