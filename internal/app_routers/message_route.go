package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/configuration"
	"github.com/Rojan-K/ChatAPP/internal/handler"
)

func MessageRouters(router *gin.Engine, container *configuration.Container) {
	messageRoute := router.Group("/api/messages", handler.RequireAuth(container.TokenManager))
	{
		messageRoute.POST("", container.MessageHandler.SaveMessage)
		messageRoute.GET("/conversations", container.MessageHandler.GetConversations)
		messageRoute.GET("/conversations/:conversationId", container.MessageHandler.GetConversationMessages)
		messageRoute.POST("/conversations/:conversationId/read", container.MessageHandler.MarkConversationRead)
	}
}
