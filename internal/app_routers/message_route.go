package approuters

import (
	"github.com/OmerBirol/lenslight-tr/internal/configuration"

	"github.com/gin-gonic/gin"
)

func MessageRouters(router *gin.Engine, container *configuration.Container) {
	messageRoute := router.Group("/ll/api/messages")
	{
		messageRoute.GET("", container.MessageHandler.GetInbox)
		messageRoute.GET("/:userId", container.MessageHandler.GetChat)
		messageRoute.POST("/:userId", container.MessageHandler.SendMessage)
	}
}
