package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUserID returns the caller id or an unauthorized error.
func currentUserID(c *gin.Context) (int64, error) {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID <= 0 {
		return 0, appErrors.ErrUnauthorized
	}
	return claims.UserID, nil
}
