package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// ownerFromContext returns the workspace owner of the request, falling back
// to the anonymous workspace.
func ownerFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil && claims.OwnerID != "" {
		return claims.OwnerID
	}
	return models.AnonymousOwner
}
