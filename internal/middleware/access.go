package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authz-service/internal/authz"
	"authz-service/internal/services"
)

// RequirePermission gates an endpoint on a module-level permission for the
// acting role. Denials are 403; a missing actor is 401.
func RequirePermission(access *services.AccessService, module authz.Module, action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := ActorRole(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		if !access.CanPerform(role, module, action) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole gates an endpoint on the acting role being one of the listed
// roles exactly.
func RequireRole(roles ...authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := ActorRole(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		c.Abort()
	}
}
