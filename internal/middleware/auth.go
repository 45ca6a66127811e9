package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKeyAuth returns middleware that validates admin API keys for the
// destructive admin routes. The public analyze/browse surface is open; only
// record deletion sits behind a key.
//
// The key can be provided via X-API-Key header or api_key query param.
//
// Go closures: this function returns a function. The outer function captures
// `adminKeys` in its closure — the returned handler has access to it.
func AdminKeyAuth(adminKeys []string) gin.HandlerFunc {
	// Build a set for O(1) lookups. Go doesn't have a built-in Set type,
	// so we use map[string]struct{} — struct{} takes zero bytes of memory.
	keySet := make(map[string]struct{}, len(adminKeys))
	for _, k := range adminKeys {
		keySet[k] = struct{}{}
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}

		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing admin API key",
			})
			return
		}

		if _, ok := keySet[key]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "invalid admin API key",
			})
			return
		}

		// Store the key in the context for downstream handlers (e.g., rate limiting).
		c.Set("api_key", key)
		c.Next()
	}
}
