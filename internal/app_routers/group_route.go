package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/configuration"
	"github.com/Rojan-K/ChatAPP/internal/handler"
)

func GroupRouters(router *gin.Engine, container *configuration.Container) {
	groupRoute := router.Group("/api/groups", handler.RequireAuth(container.TokenManager))
	{
		groupRoute.POST("", container.GroupHandler.CreateGroup)
		groupRoute.GET("", container.GroupHandler.GetGroups)
		groupRoute.POST("/:groupId/participants", container.GroupHandler.AddParticipant)
		groupRoute.POST("/:groupId/leave", container.GroupHandler.LeaveGroup)
		groupRoute.GET("/:groupId/messages", container.GroupHandler.GetMessages)
		groupRoute.POST("/:groupId/messages", container.GroupHandler.SendMessage)
	}
}
