// Package middleware contains Gin middleware functions.
// Middleware in Gin is a handler that runs before (or after) your route
// handler. It calls c.Next() to proceed or c.Abort() to stop the chain.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS returns middleware that sets Cross-Origin Resource Sharing headers.
// The gallery frontend runs on a different origin than this API, so the
// browser requires these headers before it will let the page call us.
// For preflight OPTIONS requests we return 204 immediately (no content).
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if _, ok := originSet[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "X-API-Key, Content-Type")
			c.Header("Access-Control-Max-Age", "86400")
		}

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
