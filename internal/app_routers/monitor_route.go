package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/configuration"
)

func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorRoute := router.Group("/api/monitor")
	{
		monitorRoute.GET("/stats", container.MonitorHandler.GetHubStats)
	}
}
