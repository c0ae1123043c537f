package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forum-realtime/internal/auth"
)

// AuthMiddleware validates the Authorization header and stores the resolved
// user id in the request context. Unlike the websocket handshake, HTTP
// endpoints behind this middleware reject outright.
func AuthMiddleware(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		userID, err := authenticator.Identify(header)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
