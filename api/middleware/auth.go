package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"newsdesk/auth"
	"newsdesk/logger"
)

// RequireRole validates the request's JWT and checks that its role claim
// matches want, storing the caller identity on the context for handlers.
func RequireRole(jwtm *auth.JWTManager, want string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c)
		if err != nil {
			auth.Unauthorized(c, err)
			return
		}

		subject, role, err := jwtm.Parse(token)
		if err != nil {
			logger.Log.Warnf("token parse error: %v", err)
			auth.Unauthorized(c, err)
			return
		}

		if role != want {
			logger.Log.Warnf("access denied: subject %s has role %s, want %s", subject, role, want)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden_insufficient_permissions"})
			return
		}

		c.Set("subject", subject)
		c.Set("role", role)

		c.Next()
	}
}
