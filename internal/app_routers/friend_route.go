package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/configuration"
	"github.com/Rojan-K/ChatAPP/internal/handler"
)

func FriendRouters(router *gin.Engine, container *configuration.Container) {
	friendRoute := router.Group("/api/friend-requests", handler.RequireAuth(container.TokenManager))
	{
		friendRoute.POST("", container.FriendHandler.SendRequest)
		friendRoute.GET("/pending", container.FriendHandler.ListPending)
		friendRoute.POST("/:requestId/accept", container.FriendHandler.AcceptRequest)
		friendRoute.POST("/:requestId/reject", container.FriendHandler.RejectRequest)
	}
}
