package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ticketdesk/internal/models"
)

// Recovery turns a panic into a 500 carrying the request id.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			requestID := RequestIDFrom(c)
			event := log.Error().
				Interface("panic", r).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Str("request_id", requestID)
			if session, ok := c.Get(SessionKey); ok {
				if s, ok := session.(models.Session); ok {
					event = event.Str("email", s.Email)
				}
			}
			event.Bytes("stack", debug.Stack()).Msg("panic recovered")

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "internal_server_error",
				"request_id": requestID,
			})
		}()
		c.Next()
	}
}
