package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/lms-api/internal/service"
)

// Metrics observes duration and count for every handled request. Unmatched
// paths collapse into a single label so probes and scans cannot inflate
// series cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
