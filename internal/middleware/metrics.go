package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/pkg/metrics"
)

// Metrics records request counts and latency per route. The route
// template keeps label cardinality bounded; raw paths would mint one
// series per entity ID.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequests.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPLatency.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
