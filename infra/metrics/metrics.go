package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess   = "success"
	OutcomeCardError = "card_error"
	OutcomeError     = "error"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	ChargeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "charges_total",
			Help: "Charge attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// NormalizePath maps a matched gin route to a bounded label value.
// Requests served by the catch-all handler have no route and share one label.
func NormalizePath(route string) string {
	if route == "" {
		return "unmatched"
	}
	route = strings.TrimPrefix(route, "/")
	if idx := strings.Index(route, "/"); idx >= 0 {
		route = route[:idx]
	}
	if route == "" {
		return "root"
	}
	return route
}

// NormalizeMethod keeps the method label bounded; the dispatcher accepts
// arbitrary methods.
func NormalizeMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodOptions, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodHead:
		return method
	}
	return "other"
}

func ObserveCharge(outcome string) {
	ChargeTotal.WithLabelValues(outcome).Inc()
}

func Middleware(c *gin.Context) {
	if c.Request.URL.Path == "/metrics" {
		c.Next()
		return
	}
	start := time.Now()
	c.Next()
	duration := time.Since(start).Seconds()
	method := NormalizeMethod(c.Request.Method)
	path := NormalizePath(c.FullPath())
	status := strconv.Itoa(c.Writer.Status())
	RequestTotal.WithLabelValues(method, path, status).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration)
}
