package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harpaljob/harpaljob-api/internal/auth"
	"github.com/harpaljob/harpaljob-api/internal/models"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Tokens        *auth.Manager
	Auth          *AuthHandler
	Jobs          *JobHandler
	Categories    *CategoryHandler
	Companies     *CompanyHandler
	Applications  *ApplicationHandler
	Notifications *NotificationHandler
}

// Register wires all routes under /api/v1.
func Register(r *gin.Engine, d Deps) {
	api := r.Group("/api/v1")

	api.GET("/health", HealthCheck)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", d.Auth.Login)
		authGroup.GET("/me", d.Tokens.RequireAuth(), d.Auth.Me)
		authGroup.PUT("/fcm-token", d.Tokens.RequireAuth(), d.Auth.SetFCMToken)
	}

	jobs := api.Group("/jobs")
	{
		jobs.GET("", d.Jobs.List)
		jobs.GET("/:slug", d.Jobs.Get)
		jobs.POST("", d.Tokens.RequireAuth(), auth.RequireRole(models.RoleEmployer), d.Jobs.Create)
	}

	// Mutations addressed by numeric id live on a separate prefix so the
	// :slug wildcard above stays unambiguous.
	jobsByID := api.Group("/jobs/id/:id", d.Tokens.RequireAuth())
	{
		jobsByID.PUT("", auth.RequireRole(models.RoleEmployer), d.Jobs.Update)
		jobsByID.DELETE("", auth.RequireRole(models.RoleEmployer), d.Jobs.Delete)
		jobsByID.POST("/apply", auth.RequireRole(models.RoleJobseeker), d.Applications.Apply)
		jobsByID.GET("/applications", auth.RequireRole(models.RoleEmployer), d.Applications.ListForJob)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", d.Categories.List)
		categories.GET("/:slug", d.Categories.Get)

		admin := categories.Group("", d.Tokens.RequireAuth(), auth.RequireRole(models.RoleAdmin))
		admin.POST("", d.Categories.Create)
		admin.PUT("/id/:id", d.Categories.Update)
		admin.DELETE("/id/:id", d.Categories.Delete)
	}

	companies := api.Group("/companies")
	{
		companies.GET("", d.Companies.List)
		companies.GET("/:slug", d.Companies.Get)
		companies.POST("", d.Tokens.RequireAuth(), auth.RequireRole(models.RoleEmployer), d.Companies.Create)
		companies.PUT("/id/:id", d.Tokens.RequireAuth(), auth.RequireRole(models.RoleEmployer), d.Companies.Update)
	}

	applications := api.Group("/applications", d.Tokens.RequireAuth())
	{
		applications.GET("/mine", d.Applications.Mine)
		applications.PUT("/:id/status", auth.RequireRole(models.RoleEmployer), d.Applications.UpdateStatus)
	}

	adminNotifications := api.Group("/admin/notifications",
		d.Tokens.RequireAuth(), auth.RequireRole(models.RoleAdmin))
	{
		adminNotifications.POST("/daily-jobs", d.Notifications.TriggerDailyJobs)
		adminNotifications.POST("/token-cleanup", d.Notifications.TriggerTokenCleanup)
		adminNotifications.POST("/test", d.Notifications.SendTest)
		adminNotifications.GET("/status", d.Notifications.Status)
		adminNotifications.POST("/scheduler/restart", d.Notifications.Restart)
	}
}
