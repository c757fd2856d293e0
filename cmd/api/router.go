package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/internal/shared/middleware"
	"newsroom-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.RequestID(),
		middleware.ClientIPMiddleware(),
		middleware.Logger(),
		middleware.Recovery(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupNewsRoutes(v1, c)
		setupArticleRoutes(v1, c)
		setupUserAdminRoutes(v1, c)
	}

	return router
}

func authenticated(c *container.Container) gin.HandlerFunc {
	return middleware.AuthMiddleware(c.JWTManager, c.UserService)
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.UserHandler.Login)
		auth.GET("/me", authenticated(c), c.UserHandler.Me)
	}
}

// ========================================
// PUBLIC NEWS ROUTES (reader, published only)
// ========================================
func setupNewsRoutes(v1 *gin.RouterGroup, c *container.Container) {
	news := v1.Group("/news")
	{
		news.GET("", c.ArticleHandler.ListPublished)
		news.GET("/categories", c.ArticleHandler.Categories)
		news.GET("/:id", c.ArticleHandler.GetPublished)
		news.POST("/:id/view", c.ArticleHandler.RecordView)
	}
}

// ========================================
// EDITORIAL WORKFLOW ROUTES
// ========================================
// Quyền theo từng action do service kiểm tra; route chỉ chặn guest
func setupArticleRoutes(v1 *gin.RouterGroup, c *container.Container) {
	articles := v1.Group("/admin/articles")
	articles.Use(
		authenticated(c),
		middleware.RequireRole(workflow.RoleWartawan, workflow.RoleEditor, workflow.RoleRedaktur),
	)
	{
		articles.POST("", c.ArticleHandler.Create)
		articles.GET("", c.ArticleHandler.List)
		articles.GET("/mine", c.ArticleHandler.Mine)
		articles.GET("/review", c.ArticleHandler.ReviewQueue)
		articles.GET("/stats", c.ArticleHandler.Stats)

		articles.GET("/:id", c.ArticleHandler.Get)
		articles.PUT("/:id", c.ArticleHandler.Update)
		articles.DELETE("/:id", c.ArticleHandler.Delete)
		articles.GET("/:id/notes", c.ArticleHandler.Notes)

		articles.POST("/:id/submit", c.ArticleHandler.Submit)
		articles.POST("/:id/approve", c.ArticleHandler.Approve)
		articles.POST("/:id/reject", c.ArticleHandler.Reject)
		articles.POST("/:id/publish", c.ArticleHandler.Publish)
	}
}

// ========================================
// USER ADMIN ROUTES (redaktur)
// ========================================
func setupUserAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/admin/users")
	users.Use(authenticated(c), middleware.RequireRole(workflow.RoleRedaktur))
	{
		users.GET("", c.UserHandler.ListUsers)
		users.POST("", c.UserHandler.CreateUser)
		users.PATCH("/:id/role", c.UserHandler.SetRole)
	}
}

// ========================================
// HEALTH
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		services := appCtx.Ping(ctx)
		status := "ok"
		for name, s := range services {
			if name != "storage" && s != "ok" {
				status = "degraded"
			}
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  services,
		})
	}
}
