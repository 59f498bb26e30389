package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photos_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photos_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// UploadsTotal is labelled by outcome: stored, duplicate, rejected,
	// quota_exceeded, rolled_back, failed.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photos_uploads_total",
			Help: "Photo uploads by outcome.",
		},
		[]string{"result"},
	)

	UploadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photos_uploaded_bytes_total",
		Help: "Bytes committed to account quotas.",
	})

	DeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photos_deleted_total",
		Help: "Photos deleted individually or by account reset.",
	})

	SharesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photos_share_grants_total",
			Help: "Share grant attempts by outcome.",
		},
		[]string{"result"},
	)

	TokenCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photos_token_cache_lookups_total",
			Help: "Bearer token cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Middleware records request counts and latency. Routes are labelled with the
// registered path, not the raw URL, to bound cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" || route == "/" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
