package middlewares

import (
	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware authenticates the ?token= query parameter, since
// browsers cannot set headers on a WebSocket handshake.
func WebSocketAuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c.GetHeader("Authorization"))
		}
		if token == "" {
			c.AbortWithStatus(401)
			return
		}
		authenticate(c, auth, token)
	}
}
