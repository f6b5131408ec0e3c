package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tutor-server/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "static"
		}

		metrics.RecordRequest(method, endpoint, status, duration)
	}
}
