package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/configuration"
	"github.com/Rojan-K/ChatAPP/internal/handler"
)

func AuthRouters(router *gin.Engine, container *configuration.Container) {
	authRoute := router.Group("/api/auth")
	{
		authRoute.POST("/register", container.AuthHandler.Register)
		authRoute.POST("/login", container.AuthHandler.Login)
		authRoute.POST("/logout",
			handler.RequireAuth(container.TokenManager),
			container.AuthHandler.Logout)
	}
}
