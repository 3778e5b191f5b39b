package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/equivalence-api/internal/service"
)

// Metrics records latency and status per route template, so every
// /api/reports/:id request shares one series. Requests that match no route
// are labelled "unmatched".
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
