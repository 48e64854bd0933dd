package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"authz-service/internal/authz"
)

const (
	ctxActorID   = "actor_id"
	ctxActorRole = "actor_role"
)

// ActorClaims are the token claims the service trusts for identity. The
// role claim is advisory for routing; workflow decisions re-verify it
// against the directory.
type ActorClaims struct {
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and stores the acting employee on the
// context. Every downstream check receives the actor explicitly; nothing
// reads ambient session state.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &ActorClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		actorID, err := uuid.Parse(claims.EmployeeID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid employee_id claim"})
			c.Abort()
			return
		}

		// Unknown role strings fail closed to the least privileged role.
		role, _ := authz.NormalizeRole(claims.Role)

		c.Set(ctxActorID, actorID)
		c.Set(ctxActorRole, role)
		c.Next()
	}
}

// ActorID returns the authenticated employee id from the context.
func ActorID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxActorID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// ActorRole returns the authenticated role from the context.
func ActorRole(c *gin.Context) (authz.Role, bool) {
	v, ok := c.Get(ctxActorRole)
	if !ok {
		return "", false
	}
	role, ok := v.(authz.Role)
	return role, ok
}
