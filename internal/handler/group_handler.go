package handler

import (
	"net/http"

	"github.com/OmerBirol/lenslight-tr/internal/service"

	"github.com/gin-gonic/gin"
)

type GroupHandler interface {
	CreateGroup(c *gin.Context)
	ListGroups(c *gin.Context)
	GetGroupChat(c *gin.Context)
	SendGroupMessage(c *gin.Context)
	SendInvite(c *gin.Context)
}

type groupHandler struct {
	groups   *service.GroupService
	messages *service.MessageService
}

func NewGroupHandler(groups *service.GroupService, messages *service.MessageService) GroupHandler {
	return &groupHandler{
		groups:   groups,
		messages: messages,
	}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

func (h *groupHandler) CreateGroup(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_payload", "message": "malformed request body"},
		})
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), me, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"group": group,
	})
}

func (h *groupHandler) ListGroups(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	groups, err := h.groups.ListGroups(c.Request.Context(), me)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
	})
}

func (h *groupHandler) GetGroupChat(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.groups.GetGroupChat(c.Request.Context(), me, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

type sendGroupMessageRequest struct {
	Text string `json:"text"`
}

func (h *groupHandler) SendGroupMessage(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	var req sendGroupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_payload", "message": "malformed request body"},
		})
		return
	}

	msg, err := h.messages.SendGroupMessage(c.Request.Context(), me, c.Param("id"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": msg,
	})
}

type sendInviteRequest struct {
	UserID string `json:"userId"`
}

func (h *groupHandler) SendInvite(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	var req sendInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_payload", "message": "malformed request body"},
		})
		return
	}

	invite, err := h.groups.SendInvite(c.Request.Context(), me, c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"invite": invite,
	})
}
