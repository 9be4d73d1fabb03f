package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"flowtrack/internal/metrics"
)

// Metrics records request latency per matched route. Unmatched paths are
// grouped under a single label.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
