package middleware

import (
	"net/http"
	"strings"

	"visionvend/utils"

	"github.com/gin-gonic/gin"
)

// KioskAuthMiddleware validates a customer bearer token and stores its subject as
// "customerID". With optional set, requests without an Authorization header pass through;
// a header that is present must still be valid.
func KioskAuthMiddleware(optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && optional {
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		customerID, err := utils.ExtractIDFromToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set("customerID", customerID)
		c.Next()
	}
}
