package approuters

import (
	"github.com/OmerBirol/lenslight-tr/internal/configuration"

	"github.com/gin-gonic/gin"
)

func InviteRouters(router *gin.Engine, container *configuration.Container) {
	inviteRoute := router.Group("/ll/api/invites")
	{
		inviteRoute.GET("", container.InviteHandler.ListInvites)
		inviteRoute.POST("/:inviteId/accept", container.InviteHandler.AcceptInvite)
		inviteRoute.POST("/:inviteId/decline", container.InviteHandler.DeclineInvite)
	}
}
