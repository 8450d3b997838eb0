package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mcm-alerts/mcm-alerts/internal/handlers"
	"github.com/mcm-alerts/mcm-alerts/internal/middleware"
	"github.com/mcm-alerts/mcm-alerts/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession)
			sessions.DELETE("", handlers.DestroySession)
		}

		api.GET("/users/me", middleware.AuthMiddleware(), handlers.Me)

		subscriptions := api.Group("/subscriptions", middleware.AuthMiddleware())
		{
			subscriptions.GET("/:type", handlers.GetSubscription)
			subscriptions.POST("", handlers.UpsertSubscription)
			subscriptions.POST("/token", handlers.UpdateSubscriptionToken)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.GET("/count/today", handlers.TodayNotificationCount)
			notifications.PATCH("/:id/read", handlers.MarkNotificationRead)
		}

		// Invoked by external monitoring probes; intentionally unauthenticated.
		api.POST("/trigger", handlers.Trigger)
	}

	return r
}
