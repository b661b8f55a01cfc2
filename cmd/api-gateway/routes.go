package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

type routeDeps struct {
	auth           middleware.TokenValidator
	metrics        *service.MetricsService
	authHandler    *handler.AuthHandler
	metricsHandler *handler.MetricsHandler
	timetable      *handler.TimetableHandler
	substitutions  *handler.SubstitutionHandler
	schoolData     *handler.SchoolDataHandler
	exports        *handler.ExportHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, deps routeDeps) {
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.metricsHandler.Health)
	r.GET("/metrics", deps.metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/token", deps.authHandler.Token)
	// Signed links carry their own authorisation.
	api.GET("/exports/:token", deps.exports.Download)

	ws := api.Group("")
	ws.Use(middleware.Identity(deps.auth, cfg.JWT.Required), middleware.CacheMeta())

	read := middleware.RequireRoles(middleware.Readers...)
	schedule := middleware.RequireRoles(middleware.Schedulers...)
	write := middleware.RequireRoles(middleware.Writers...)

	ws.GET("/metrics/summary", read, deps.metricsHandler.Snapshot)

	ws.GET("/workspace", read, deps.schoolData.Workspace)
	ws.GET("/school", read, deps.schoolData.GetSchool)
	ws.PUT("/school", write, deps.schoolData.UpdateSchool)
	ws.GET("/timeslots", read, deps.schoolData.GetTimeSlots)
	ws.PUT("/timeslots", write, deps.schoolData.UpdateTimeSlots)
	ws.GET("/teachers", read, deps.schoolData.ListTeachers)
	ws.PUT("/teachers", write, deps.schoolData.ReplaceTeachers)
	ws.PATCH("/teachers/:id/absence", schedule, deps.schoolData.SetAbsence)
	ws.GET("/teachers/:id/workload", read, deps.timetable.TeacherWorkload)
	ws.GET("/classes", read, deps.schoolData.ListClasses)
	ws.PUT("/classes", write, deps.schoolData.ReplaceClasses)
	ws.GET("/subjects", read, deps.schoolData.ListSubjects)
	ws.PUT("/subjects", write, deps.schoolData.ReplaceSubjects)
	ws.POST("/import/legacy", write, deps.schoolData.ImportLegacy)

	timetable := ws.Group("/timetable")
	timetable.GET("", read, deps.timetable.Get)
	timetable.GET("/classes/:classId", read, deps.timetable.ClassTimetable)
	timetable.POST("/validate", read, deps.timetable.Validate)
	timetable.POST("/generate", schedule, deps.timetable.Generate)
	timetable.POST("/approve", write, deps.timetable.Approve)
	timetable.POST("/lock", write, deps.timetable.Lock)
	timetable.POST("/unlock", write, deps.timetable.Unlock)

	subs := ws.Group("/substitutions")
	subs.GET("/suggestions", read, deps.substitutions.Suggestions)
	subs.POST("", schedule, deps.substitutions.Apply)
	subs.POST("/plan", schedule, deps.substitutions.Plan)

	ws.POST("/exports", schedule, deps.exports.Export)
}
