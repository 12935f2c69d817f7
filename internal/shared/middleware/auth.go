package middleware

import (
	"strings"

	"library-backend/internal/shared/access"
	"library-backend/internal/shared/response"
	"library-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
	ctxRole     = "role"
)

// TokenValidator is satisfied by *jwt.Manager.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware verifies the bearer token and stores the caller's identity
// in the gin context.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid user ID in token")
			c.Abort()
			return
		}

		role, err := access.ParseRole(claims.Role)
		if err != nil {
			response.Unauthorized(c, "invalid role in token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxRole, role)

		c.Next()
	}
}

// ActorFromContext returns the actor stored by AuthMiddleware.
func ActorFromContext(c *gin.Context) (access.Actor, bool) {
	rawID, ok := c.Get(ctxUserID)
	if !ok {
		return access.Actor{}, false
	}
	id, ok := rawID.(uuid.UUID)
	if !ok {
		return access.Actor{}, false
	}

	rawRole, ok := c.Get(ctxRole)
	if !ok {
		return access.Actor{}, false
	}
	role, ok := rawRole.(access.Role)
	if !ok {
		return access.Actor{}, false
	}

	return access.Actor{ID: id, Role: role}, true
}

// SetActor is used by tests and internal callers that bypass token parsing.
func SetActor(c *gin.Context, actor access.Actor) {
	c.Set(ctxUserID, actor.ID)
	c.Set(ctxRole, actor.Role)
}
