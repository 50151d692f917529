package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"admissions_backend/internal/auth"
	"admissions_backend/internal/logger"
	"admissions_backend/pkg/apperrors"
	"admissions_backend/pkg/contextkeys"
)

// AuthMiddleware validates the bearer token and stores the principal in the context.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				apperrors.HandleError(c, apperrors.ErrTokenExpired)
				return
			}
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(string(contextkeys.UserIDKey), claims.UserID)
		c.Set(string(contextkeys.RoleKey), claims.Role)
		ctx := logger.WithUserID(c.Request.Context(), strconv.FormatUint(uint64(claims.UserID), 10))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRoles rejects principals whose role is not listed. Must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role := c.GetString(string(contextkeys.RoleKey))
		if role == "" {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}
		if !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrAdminOnly)
			return
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return RequireRoles(auth.RoleAdmin)
}

// GetUserID returns the authenticated user id, or 0 when absent.
func GetUserID(c *gin.Context) uint {
	v, exists := c.Get(string(contextkeys.UserIDKey))
	if !exists {
		return 0
	}
	id, _ := v.(uint)
	return id
}
