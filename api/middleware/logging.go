package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"newsdesk/logger"
)

// RequestLogging logs method, path, status and elapsed time per request.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.InfoWithFields("request completed", logger.Fields{
			"method":      method,
			"path":        path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
