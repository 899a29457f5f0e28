package approuters

import (
	"github.com/OmerBirol/lenslight-tr/internal/configuration"
	"github.com/OmerBirol/lenslight-tr/internal/handler"
	"github.com/OmerBirol/lenslight-tr/internal/hub"

	"github.com/gin-gonic/gin"
)

// MonitorRouters sets up monitoring API routes
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	// Create monitor service with hub reference
	monitorService := hub.NewMonitorService(container.Hub)

	// Create monitor handler
	monitorHandler := handler.NewMonitorHandler(monitorService)

	// Monitor API group
	monitorGroup := router.Group("/ll/api/monitor")
	{
		// GET /ll/api/monitor/stats - Get hub statistics
		monitorGroup.GET("/stats", monitorHandler.GetHubStats)
	}
}
