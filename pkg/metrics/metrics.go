package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP request metrics, recorded by apiutil.MetricsMiddleware
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todolist_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todolist_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// StoreOperations counts store calls by backend, operation and result (ok/error)
var StoreOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "todolist_store_operations_total",
		Help: "Total number of store operations",
	},
	[]string{"backend", "operation", "result"},
)

// ItemsAdded counts added items by list kind (today/custom)
var ItemsAdded = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "todolist_items_added_total",
		Help: "Total number of items added",
	},
	[]string{"list_kind"},
)

// ListsCreated counts custom lists created on first visit
var ListsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "todolist_lists_created_total",
		Help: "Total number of custom lists created",
	},
)

// SQL connection pool gauges, sampled periodically for sql backends
var (
	DBOpenConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "todolist_db_open_connections",
			Help: "Number of open database connections",
		},
		[]string{"backend"},
	)
	DBIdleConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "todolist_db_idle_connections",
			Help: "Number of idle database connections",
		},
		[]string{"backend"},
	)
	DBInUseConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "todolist_db_in_use_connections",
			Help: "Number of database connections in use",
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration)
	prometheus.MustRegister(StoreOperations, ItemsAdded, ListsCreated)
	prometheus.MustRegister(DBOpenConns, DBIdleConns, DBInUseConns)
}

// ObserveDBStats copies connection pool stats into the pool gauges
func ObserveDBStats(backend string, stats sql.DBStats) {
	DBOpenConns.WithLabelValues(backend).Set(float64(stats.OpenConnections))
	DBIdleConns.WithLabelValues(backend).Set(float64(stats.Idle))
	DBInUseConns.WithLabelValues(backend).Set(float64(stats.InUse))
}

// ObserveStore records the outcome of a store operation
func ObserveStore(backend, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(backend, operation, result).Inc()
}
