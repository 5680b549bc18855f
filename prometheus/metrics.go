package prometheus

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "buildcrm_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "buildcrm_register_total",
			Help: "Total number of user registrations",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildcrm_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildcrm_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "missing_token", "invalid_token", "super_admin_denied" etc.
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildcrm_tenant_operations_total",
			Help: "Total number of tenant administration operations",
		},
		[]string{"operation"}, // "create", "update", "pause", "grant_module", etc.
	)

	// Reservation operation counter
	ReservationOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildcrm_reservation_operations_total",
			Help: "Total number of inventory reservation operations",
		},
		[]string{"operation"}, // "create", "release", "extend", "commit", "sweep", "list"
	)

	// Reservation error counter
	ReservationErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildcrm_reservation_errors_total",
			Help: "Total number of reservation failures",
		},
		[]string{"type"}, // "insufficient_stock", "already_terminal", "not_found"
	)

	// Document counter (invoices, quotations)
	DocumentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildcrm_documents_total",
			Help: "Total number of business documents created",
		},
		[]string{"doc_type"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buildcrm_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buildcrm_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	ActiveReservationsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "buildcrm_active_reservations",
			Help: "Number of reservations currently holding stock",
		},
	)
)

// InitMetrics registers all metrics with the default registry
func InitMetrics() {
	prometheus.MustRegister(
		LoginCounter,
		RegisterCounter,
		HTTPRequestCounter,
		AuthErrorCounter,
		TenantOperationCounter,
		ReservationOperationCounter,
		ReservationErrorCounter,
		DocumentCounter,
		RequestDuration,
		DBOperationDuration,
		ActiveReservationsGauge,
	)
}

// TrackDBOperation returns a deferred-friendly function that records
// the duration of a database operation
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware returns an Echo middleware that records request
// counts and durations
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTenantOperation increments the tenant operation counter
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordReservationOperation increments the reservation operation counter
func RecordReservationOperation(operation string) {
	ReservationOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordReservationError increments the reservation error counter
func RecordReservationError(errorType string) {
	ReservationErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// Handler returns the Prometheus metrics endpoint handler
func Handler() echo.HandlerFunc {
	h := promhttp.Handler()
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}
