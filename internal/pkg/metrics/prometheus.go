package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradepulse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tradepulse",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Stats cache metrics
	statsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "stats_cache",
			Name:      "lookups_total",
			Help:      "Stats cache lookups by result",
		},
		[]string{"view", "result"},
	)

	statsComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradepulse",
			Subsystem: "stats",
			Name:      "compute_duration_seconds",
			Help:      "Duration of statistics aggregation in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"view"},
	)

	// Subscription metrics
	subscriptionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "subscription",
			Name:      "transitions_total",
			Help:      "Subscription state transitions",
		},
		[]string{"transition", "tier"},
	)

	activeSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tradepulse",
			Subsystem: "subscription",
			Name:      "active_count",
			Help:      "Number of active subscriptions",
		},
		[]string{"tier"},
	)

	// Payment metrics
	paymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "payment",
			Name:      "total",
			Help:      "Payments by provider and final status",
		},
		[]string{"provider", "status"},
	)

	// Short link metrics
	shortLinkRedirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "shortlink",
			Name:      "redirects_total",
			Help:      "Short link redirects by slug",
		},
		[]string{"slug"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradepulse",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStatsCacheLookup records a stats cache hit or miss
func RecordStatsCacheLookup(view, result string) {
	statsCacheLookups.WithLabelValues(view, result).Inc()
}

// RecordStatsCompute records the duration of a statistics aggregation
func RecordStatsCompute(view string, duration time.Duration) {
	statsComputeDuration.WithLabelValues(view).Observe(duration.Seconds())
}

// RecordSubscriptionTransition records a subscription state transition
func RecordSubscriptionTransition(transition, tier string) {
	subscriptionTransitions.WithLabelValues(transition, tier).Inc()
}

// SetActiveSubscriptions sets the gauge for active subscriptions by tier
func SetActiveSubscriptions(tier string, count float64) {
	activeSubscriptions.WithLabelValues(tier).Set(count)
}

// RecordPayment records a payment reaching a final status
func RecordPayment(provider, status string) {
	paymentsTotal.WithLabelValues(provider, status).Inc()
}

// RecordShortLinkRedirect records a short link redirect
func RecordShortLinkRedirect(slug string) {
	shortLinkRedirects.WithLabelValues(slug).Inc()
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
