package handler

import (
	"net/http"

	"github.com/OmerBirol/lenslight-tr/internal/service"

	"github.com/gin-gonic/gin"
)

type InviteHandler interface {
	ListInvites(c *gin.Context)
	AcceptInvite(c *gin.Context)
	DeclineInvite(c *gin.Context)
}

type inviteHandler struct {
	groups *service.GroupService
}

func NewInviteHandler(groups *service.GroupService) InviteHandler {
	return &inviteHandler{
		groups: groups,
	}
}

func (h *inviteHandler) ListInvites(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	invites, err := h.groups.ListInvites(c.Request.Context(), me)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invites": invites,
	})
}

func (h *inviteHandler) AcceptInvite(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	invite, err := h.groups.AcceptInvite(c.Request.Context(), me, c.Param("inviteId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invite": invite,
	})
}

func (h *inviteHandler) DeclineInvite(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	invite, err := h.groups.DeclineInvite(c.Request.Context(), me, c.Param("inviteId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invite": invite,
	})
}
