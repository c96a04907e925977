package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-adp-api/internal/middleware"
	"github.com/noah-isme/exam-adp-api/internal/models"
	"github.com/noah-isme/exam-adp-api/internal/service"
)

// Handlers bundles the HTTP handlers mounted by Register.
type Handlers struct {
	Auth        *AuthHandler
	Students    *StudentHandler
	Exams       *ExamHandler
	ExtraFields *ExtraFieldHandler
	Settings    *SettingsHandler
	Summaries   *SummaryHandler
	Metrics     *MetricsHandler
}

// Register mounts all API routes under the given prefix.
func Register(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService, metrics *service.MetricsService) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.Metrics(metrics))

	api.POST("/auth/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	protected.GET("/auth/me", h.Auth.Me)
	protected.GET("/status", h.Metrics.Status)

	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
	admin := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	students := protected.Group("/students")
	students.GET("", staff, h.Students.List)
	students.GET("/:id", staff, h.Students.Get)
	students.GET("/:id/extra-scores", staff, h.Students.GetExtraScores)
	students.PUT("/:id/extra-scores", staff, h.Students.PutExtraScores)

	exams := protected.Group("/exams")
	exams.GET("", staff, h.Exams.List)
	exams.GET("/:id", staff, h.Exams.Get)
	exams.PUT("/:id/attempts", staff, h.Exams.RecordAttempt)
	exams.PUT("/:id/attempts/bulk", staff, h.Exams.RecordAttempts)

	extraFields := protected.Group("/extra-fields")
	extraFields.GET("", staff, h.ExtraFields.List)
	extraFields.GET("/:id", staff, h.ExtraFields.Get)
	extraFields.POST("", admin, h.ExtraFields.Create)
	extraFields.PUT("/:id", admin, h.ExtraFields.Update)
	extraFields.DELETE("/:id", admin, h.ExtraFields.Delete)

	settings := protected.Group("/settings")
	settings.GET("/calculation", staff, h.Settings.Get)
	settings.PUT("/calculation", admin, h.Settings.Update)

	summaries := protected.Group("/summaries")
	summaries.GET("/students/:id", staff, h.Summaries.Get)
	summaries.POST("/students/:id/calculate", staff, h.Summaries.Calculate)
	summaries.POST("/recalculate", admin, h.Summaries.RecalculateAll)
	summaries.GET("/class", staff, h.Summaries.Class)
	summaries.GET("/class/export", staff, h.Summaries.Export)
}
