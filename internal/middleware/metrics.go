package middleware

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

type MetricsMiddleware struct {
	requestCounter   *metrics.Counter
	responseTimeHist *metrics.Histogram
	responseSizeHist *metrics.Histogram
}

func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{
		requestCounter:   metrics.GetOrCreateCounter("http_requests_total"),
		responseTimeHist: metrics.GetOrCreateHistogram("http_response_time_seconds"),
		responseSizeHist: metrics.GetOrCreateHistogram("http_response_size_bytes"),
	}
}

func (m *MetricsMiddleware) WithMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestCounter.Inc()

		c.Next()

		m.responseTimeHist.UpdateDuration(start)
		if size := c.Writer.Size(); size > 0 {
			m.responseSizeHist.Update(float64(size))
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.GetOrCreateCounter(fmt.Sprintf(
			`http_response_status_total{code="%d",route=%q}`, c.Writer.Status(), route,
		)).Inc()
	}
}

// Handler exposes every registered metric in Prometheus text format.
func (m *MetricsMiddleware) Handler(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	metrics.WritePrometheus(c.Writer, true)
}
