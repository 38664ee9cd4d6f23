package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key (and log field name) for the request id.
const RequestIDKey = "request_id"

// RequestID assigns each request a UUID, honoring an incoming X-Request-ID
// header so ids propagate across services. The id is echoed back in the
// response and attached to every log line for the request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
