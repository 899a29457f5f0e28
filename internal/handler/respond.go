package handler

import (
	"errors"
	"net/http"

	"github.com/OmerBirol/lenslight-tr/internal/apperr"

	"github.com/gin-gonic/gin"
)

// userHeader carries the authenticated user id, injected by the excluded
// auth layer fronting this API.
const userHeader = "X-User-ID"

func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader(userHeader)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": "unauthenticated", "message": "missing user identity"},
		})
		return "", false
	}
	return userID, true
}

// respondError maps the error taxonomy onto HTTP statuses. Store failures
// surface as a generic 500; the operation did not happen.
func respondError(c *gin.Context, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": ve.Code, "message": ve.Message},
		})
		return
	}

	if ae, ok := apperr.AsAuthorization(err); ok {
		c.JSON(http.StatusForbidden, gin.H{
			"error": gin.H{"code": string(ae.Reason), "message": ae.Message},
		})
		return
	}

	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{"code": "not_found", "message": "resource not found"},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": "internal", "message": "something went wrong"},
	})
}
