package handler

import (
	"net/http"

	"github.com/OmerBirol/lenslight-tr/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler interface {
	GetInbox(c *gin.Context)
	GetChat(c *gin.Context)
	SendMessage(c *gin.Context)
}

type messageHandler struct {
	messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) MessageHandler {
	return &messageHandler{
		messages: messages,
	}
}

func (h *messageHandler) GetInbox(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	entries, err := h.messages.GetInbox(c.Request.Context(), me)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chats": entries,
	})
}

func (h *messageHandler) GetChat(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.messages.GetChat(c.Request.Context(), me, c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *messageHandler) SendMessage(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_payload", "message": "malformed request body"},
		})
		return
	}

	msg, err := h.messages.SendDirectMessage(c.Request.Context(), me, c.Param("userId"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": msg,
	})
}
