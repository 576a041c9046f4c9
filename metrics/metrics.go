package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TrackingMetrics holds the Prometheus metrics for the event pipeline.
type TrackingMetrics struct {
	EventsTotal  *prometheus.CounterVec
	ReportsTotal *prometheus.CounterVec
	StoreSize    prometheus.Gauge
	RateLimited  prometheus.Counter
}

// NewTrackingMetrics initializes and registers the pipeline metrics against
// reg. Pass prometheus.DefaultRegisterer in main; tests use a fresh
// registry so repeated construction doesn't collide.
func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	factory := promauto.With(reg)
	return &TrackingMetrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tharo",
			Subsystem: "track",
			Name:      "events_total",
			Help:      "Total number of tracking requests by outcome.",
		}, []string{"status"}), // status: accepted, filtered, invalid, error
		ReportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tharo",
			Subsystem: "analytics",
			Name:      "reports_total",
			Help:      "Total number of report computations by report name.",
		}, []string{"report"}), // report: realtime, top_products
		StoreSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tharo",
			Subsystem: "track",
			Name:      "store_events",
			Help:      "Number of events seen in the store on the last full read.",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tharo",
			Subsystem: "track",
			Name:      "rate_limited_total",
			Help:      "Total number of tracking requests rejected by the rate limiter.",
		}),
	}
}
