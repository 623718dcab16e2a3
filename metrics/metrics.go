// Package metrics exposes Prometheus collectors for HTTP traffic and
// post/comment interactions.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playerback_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "playerback_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	interactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playerback_interactions_total",
		Help: "Applied like, unlike and view operations.",
	}, []string{"entity", "action"})
)

// Entities and actions for RecordInteraction
const (
	EntityPost    = "post"
	EntityComment = "comment"

	ActionLike   = "like"
	ActionUnlike = "unlike"
	ActionView   = "view"
)

// RecordInteraction counts one applied interaction
func RecordInteraction(entity, action string) {
	interactions.WithLabelValues(entity, action).Inc()
}

// Middleware records request counts and latency per matched route
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the Prometheus scrape endpoint
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
