package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/configuration"
	"github.com/Rojan-K/ChatAPP/internal/handler"
)

func UserRouters(router *gin.Engine, container *configuration.Container) {
	userRoute := router.Group("/api/users", handler.RequireAuth(container.TokenManager))
	{
		userRoute.GET("/me", container.UserHandler.GetProfile)
		userRoute.PATCH("/me", container.UserHandler.UpdateProfile)
		userRoute.GET("/search", container.UserHandler.SearchUsers)
		userRoute.GET("/friends", container.UserHandler.GetFriends)
	}
}
