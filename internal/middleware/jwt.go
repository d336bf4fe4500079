package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/logger"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

// ContextClaimsKey is the gin context key storing JWT claims.
const ContextClaimsKey = "currentUser"

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid bearer access token.
func JWT(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Set(logger.ContextUserKey, claims.UserID)
		c.Next()
	}
}
