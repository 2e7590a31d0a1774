package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yungbote/placeshare-backend/internal/observability"
)

// routeUnmatched labels requests that hit no route so scanner traffic cannot
// grow the route label set.
const routeUnmatched = "unmatched"

// Metrics records request count, latency and in-flight gauge per route
// template. Requests to the skipped paths (scrape and health endpoints) are
// not observed.
func Metrics(m *observability.Metrics, skip ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	return func(c *gin.Context) {
		if skipped[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = routeUnmatched
		}
		m.ObserveAPI(strings.ToUpper(c.Request.Method), route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
