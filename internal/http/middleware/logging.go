// README: Request logging middleware.
package middleware

import (
	"log/slog"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gin-gonic/gin"
)

// Logging writes one line per request and echoes the request id set by chi's RequestID.
func Logging(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := chimw.GetReqID(c.Request.Context())
		if reqID != "" {
			c.Header("X-Request-Id", reqID)
		}
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		log.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", reqID),
		)
	}
}
