package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/configuration"
	"github.com/Rojan-K/ChatAPP/internal/handler"
)

func NotificationRouters(router *gin.Engine, container *configuration.Container) {
	notificationRoute := router.Group("/api/notifications", handler.RequireAuth(container.TokenManager))
	{
		notificationRoute.GET("", container.NotificationHandler.List)
		notificationRoute.GET("/unread-count", container.NotificationHandler.UnreadCount)
		notificationRoute.POST("/:notificationId/read", container.NotificationHandler.MarkRead)
		notificationRoute.POST("/read-all", container.NotificationHandler.MarkAllRead)
	}
}
