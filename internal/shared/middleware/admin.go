package middleware

import (
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "access denied: insufficient role")
		c.Abort()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return RequireRoles(access.RoleAdmin)
}
