package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/smartserve/kds"
	"github.com/yeremiapane/smartserve/middlewares"
)

// NewKDSHandler upgrades an authenticated request to the kitchen display
// WebSocket. Only origins in allowedOrigins may connect; "*" allows all and
// an empty list allows same-origin requests only.
func NewKDSHandler(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin] || origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}

	return func(c *gin.Context) {
		user, ok := middlewares.CurrentUser(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		kds.RegisterClient(ws, user.EmployeeID)

		// Clients only listen; reading detects the disconnect.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
		kds.UnregisterClient(ws)
	}
}
