package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RequireUserTypes(allowed ...string) gin.HandlerFunc {
	allowedSet := map[string]struct{}{}
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}
	return func(c *gin.Context) {
		v, exists := c.Get("user_type")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no user type in context"})
			return
		}
		userType, _ := v.(string)
		if _, ok := allowedSet[userType]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
