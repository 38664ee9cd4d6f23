package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS covers every verb the API mounts, PATCH included (usuarios reactivar).
// Origin stays open: the panel is served from changing LAN addresses and the
// API is never exposed beyond the VPN.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
