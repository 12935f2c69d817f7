package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"library-backend/internal/shared/access"
	"library-backend/internal/shared/middleware"
	"library-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(c.Metrics),
		middleware.CORS(),
	)

	router.GET("/metrics", gin.WrapH(c.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupAdminRoutes(v1, c)
		setupBookRoutes(v1, c)
		setupClientRoutes(v1, c)
		setupBorrowingRoutes(v1, c)
	}

	return router
}

func authenticated(c *container.Container) gin.HandlerFunc {
	return middleware.AuthMiddleware(c.JWTManager)
}

// anyRole admits every signed-in account.
func anyRole() gin.HandlerFunc {
	return middleware.RequireRoles(access.RoleAdmin, access.RoleUser)
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(authenticated(c), anyRole())
	{
		users.GET("/me", c.UserHandler.GetProfile)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(authenticated(c), middleware.AdminMiddleware())
	{
		admin.PUT("/users/:id/role", c.UserHandler.UpdateRole)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	{
		// public catalog
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBook)
	}

	signedIn := books.Group("")
	signedIn.Use(authenticated(c), anyRole())
	{
		signedIn.GET("/select-options", c.BookHandler.SelectOptions)
		signedIn.GET("/:id/borrowings", c.BorrowingHandler.ListForBook)
	}

	admin := books.Group("")
	admin.Use(authenticated(c), middleware.AdminMiddleware())
	{
		admin.POST("", c.BookHandler.CreateBook)
		admin.PUT("/:id", c.BookHandler.UpdateBook)
		admin.DELETE("/:id", c.BookHandler.DeleteBook)

		admin.GET("/:id/stock-movements", c.InventoryHandler.ListMovements)
		admin.POST("/:id/stock-adjustments", c.InventoryHandler.AdjustStock)
	}
}

// ========================================
// CLIENT ROUTES
// ========================================
func setupClientRoutes(v1 *gin.RouterGroup, c *container.Container) {
	clients := v1.Group("/clients")
	clients.Use(authenticated(c), anyRole())
	{
		clients.GET("", c.ClientHandler.ListClients)
		clients.GET("/select-options", c.ClientHandler.SelectOptions)
		clients.GET("/:id", c.ClientHandler.GetClient)
		clients.GET("/:id/borrowings", c.BorrowingHandler.ListForClient)
		clients.POST("", c.ClientHandler.CreateClient)
		clients.PUT("/:id", c.ClientHandler.UpdateClient)
		clients.DELETE("/:id", c.ClientHandler.DeleteClient)
	}
}

// ========================================
// BORROWING ROUTES
// ========================================
func setupBorrowingRoutes(v1 *gin.RouterGroup, c *container.Container) {
	borrowings := v1.Group("/borrowings")
	borrowings.Use(authenticated(c), anyRole())
	{
		borrowings.POST("", c.BorrowingHandler.Create)
		borrowings.GET("", c.BorrowingHandler.List)
		borrowings.GET("/export", c.BorrowingHandler.Export)
		borrowings.GET("/:id", c.BorrowingHandler.Get)
		borrowings.GET("/:id/details", c.BorrowingHandler.Details)
		borrowings.PUT("/:id", c.BorrowingHandler.Update)
		borrowings.DELETE("/:id", c.BorrowingHandler.Delete)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// redis only backs the cache and the queue, so it never fails the check
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
