package middleares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"paygate/internal/errors"
)

// BearerAuth checks the Authorization header against a single configured
// API key shared by the whole deployment (§1 Non-goals: no multi-tenant
// isolation beyond a single shared API key). skipPaths lists request paths
// exempt from the check, for locally exposed read-only endpoints.
func BearerAuth(apiKey string, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) || header[len(prefix):] != apiKey || apiKey == "" {
			c.Error(errors.NewUnauthorizedError())
			c.Abort()
			return
		}
		c.Next()
	}
}
