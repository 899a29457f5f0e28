package approuters

import (
	"github.com/OmerBirol/lenslight-tr/internal/configuration"

	"github.com/gin-gonic/gin"
)

func GroupRouters(router *gin.Engine, container *configuration.Container) {
	groupRoute := router.Group("/ll/api/groups")
	{
		groupRoute.POST("", container.GroupHandler.CreateGroup)
		groupRoute.GET("", container.GroupHandler.ListGroups)
		groupRoute.GET("/:id", container.GroupHandler.GetGroupChat)
		groupRoute.POST("/:id/messages", container.GroupHandler.SendGroupMessage)
		groupRoute.POST("/:id/invite", container.GroupHandler.SendInvite)
	}
}
