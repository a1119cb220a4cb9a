package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"padhaihub-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	CheckIDKey     = "checkId"
	CheckStatusKey = "checkStatus"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		isGuest, _ := c.Get(isGuestKey)
		checkID, _ := c.Get(CheckIDKey)
		checkStatus, _ := c.Get(CheckStatusKey)

		fields := map[string]any{
			"request_id":   RequestIDFromContext(c),
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"route":        c.FullPath(),
			"status":       c.Writer.Status(),
			"bytes":        c.Writer.Size(),
			"duration_ms":  float64(latency.Microseconds()) / 1000.0,
			"user_id":      UserIDFromContext(c),
			"is_guest":     isGuest,
			"check_id":     checkID,
			"check_status": checkStatus,
			"client_ip":    c.ClientIP(),
			"user_agent":   c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		telemetry.Info("request.complete", fields)
	}
}
