// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by method, route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookexchange_http_requests_total",
		Help: "Total number of HTTP requests handled",
	}, []string{"method", "route", "status"})

	// HTTPLatency records request latency by method and route template.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookexchange_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// DomainErrors counts client-facing errors by kind.
	DomainErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookexchange_domain_errors_total",
		Help: "Total number of errors returned to clients by kind",
	}, []string{"kind"})

	// CascadeDeletes counts dependent rows removed by cascading deletes.
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookexchange_cascade_deleted_rows_total",
		Help: "Dependent rows removed while deleting users, books and addresses",
	}, []string{"table"})

	// CacheLookups counts book cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookexchange_cache_lookups_total",
		Help: "Book cache lookups by result",
	}, []string{"result"})
)

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
