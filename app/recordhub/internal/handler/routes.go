package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/auth"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/gateway"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
)

// Routes 汇总全部路由处理器
type Routes struct {
	Auth    *auth.Handler
	Persons *PersonHandler
	Project *ProjectHandler
	Control *ControlHandler
	Bridge  *gateway.Bridge

	// LoginGuard 作用于 POST /api/auth，通常是限流中间件
	LoginGuard []gin.HandlerFunc
}

// Register 注册路由，调用方需已挂载 auth.LoadSession
func (rt *Routes) Register(r *gin.Engine) {
	admin := auth.RequireRoles(model.RoleAdmin)
	anyone := auth.RequireRoles(model.RoleAdmin, model.RoleUser)

	r.GET("/health", Health)
	r.GET("/ws", rt.Bridge.Handle)

	rt.Auth.Register(r, rt.LoginGuard...)

	api := r.Group("/api")

	control := api.Group("/control")
	control.GET("/who", anyone, rt.Control.Who)
	control.GET("/system", admin, rt.Control.System)

	person := api.Group("/person")
	person.GET("", anyone, rt.Persons.List)
	person.POST("", admin, rt.Persons.Create)
	person.PUT("", admin, rt.Persons.Update)
	person.DELETE("", admin, rt.Persons.Delete)

	project := api.Group("/project")
	project.GET("", anyone, rt.Project.List)
	project.POST("", admin, rt.Project.Create)
	project.PUT("", admin, rt.Project.Update)
	project.DELETE("", admin, rt.Project.Delete)
	project.PUT("/tasks", admin, rt.Project.SetTasks)
	project.GET("/:projectId/tasks", anyone, rt.Project.Tasks)

	analysis := api.Group("/analysis")
	analysis.GET("/projects", admin, rt.Project.Analysis)
	analysis.GET("/projects/:projectId/tasks", admin, rt.Project.TaskAnalysis)
}
