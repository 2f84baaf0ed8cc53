package http

import (
	"net/http"

	"github.com/dkeye/Convo/internal/app"
	"github.com/gin-gonic/gin"
)

func home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Convo signaling relay",
		"version": "1.0",
		"status":  "operational",
		"endpoints": gin.H{
			"health":      "/api/health",
			"rooms":       "/api/rooms",
			"ice_servers": "/api/ice-servers",
			"signaling":   "/ws",
		},
	})
}

func health(reg *app.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		conns, rooms := reg.Counts()
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"connections":  conns,
			"active_rooms": rooms,
		})
	}
}
