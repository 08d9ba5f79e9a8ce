package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/digital-diary-api/internal/middleware"
	"github.com/noah-isme/digital-diary-api/internal/models"
	"github.com/noah-isme/digital-diary-api/pkg/config"
	"github.com/noah-isme/digital-diary-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/digital-diary-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/digital-diary-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, h appHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(h.metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(h.authSvc))
	secured.GET("/auth/me", h.auth.Me)

	journal := secured.Group("/journal")
	journal.Use(middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin))
	journal.GET("", h.journal.Subjects)
	journal.GET("/:subject", h.journal.Classes)

	grades := journal.Group("/:subject/:className/grades")
	grades.GET("", h.grades.Grid)
	grades.GET("/export", h.grades.Export)
	grades.PUT("/edit/:id", h.grades.Edit)
	grades.POST("/create/:studentId/:date", h.grades.Create)
	grades.POST("/add-date", h.grades.AddDate)

	attendance := journal.Group("/:subject/:className/attendance")
	attendance.GET("", h.attendance.Grid)
	attendance.GET("/export", h.attendance.Export)
	attendance.POST("/edit/:id", h.attendance.Toggle)
	attendance.POST("/create/:studentId/:date", h.attendance.Create)
	attendance.POST("/add-date", h.attendance.AddDate)

	students := secured.Group("/students")
	students.Use(middleware.RequireRoles(models.RoleAdmin))
	students.GET("", h.students.List)
	students.POST("", h.students.Create)
	students.DELETE("/:id", h.students.Delete)

	return r
}
