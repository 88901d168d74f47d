package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ideomatch/backend/internal/metrics"
)

// RequestLogger logs every request and records it in the API metrics.
// The route template is logged instead of the raw path so that stream
// tokens never reach the logs.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		timer := metrics.NewTimer()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method + " " + route
		status := c.Writer.Status()

		metrics.APIRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
		timer.ObserveDurationVec(metrics.APIRequestDuration, method)

		event := log.Info()
		if status >= 500 {
			event = log.Error()
		}
		event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("route", route).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
