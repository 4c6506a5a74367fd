package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served on /metrics.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, route and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Offers counts offer outcomes: offered, accepted, rejected, timed_out.
	Offers = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_offers_total", Help: "Courier offers by outcome."},
		[]string{"outcome"},
	)
	// Escalations counts orders sent to the manual queue by reason.
	Escalations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_escalations_total", Help: "Orders escalated to manual dispatch."},
		[]string{"reason"},
	)
	// ActiveFlows is the number of orders currently being assigned.
	ActiveFlows = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "dispatch_active_flows", Help: "Orders with an assignment flow in progress."},
	)
	// TimeToAccept tracks seconds from first offer to acceptance.
	TimeToAccept = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "dispatch_time_to_accept_seconds", Help: "Seconds from dispatch start to courier acceptance.", Buckets: []float64{5, 15, 30, 60, 120, 180, 300}},
	)
	// GeoQueryDuration records nearest-courier lookup latency in seconds.
	GeoQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "dispatch_geo_query_duration_seconds", Help: "Nearest courier query latency.", Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25}},
	)
	// ScheduledJobs counts dispatch jobs by how they were started.
	ScheduledJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_jobs_total", Help: "Dispatch jobs by trigger."},
		[]string{"trigger"},
	)

	// PromotionEvaluations counts engine runs by result.
	PromotionEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "promotion_evaluations_total", Help: "Promotion evaluations by result."},
		[]string{"result"},
	)
	// PromotionSavings sums the discount granted, in minor units, by kind.
	PromotionSavings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "promotion_savings_minor_total", Help: "Discount granted in minor units."},
		[]string{"kind"},
	)

	// UpstreamRequests counts outbound HTTP calls by upstream and status code.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "upstream_requests_total", Help: "Outbound HTTP calls by upstream and status."},
		[]string{"upstream", "status"},
	)
	// UpstreamDuration records outbound call latency in seconds.
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "upstream_request_duration_seconds", Help: "Outbound HTTP call latency.", Buckets: prometheus.DefBuckets},
		[]string{"upstream"},
	)

	// NotificationDeliveries counts outbound notification outcomes.
	NotificationDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notification_deliveries_total", Help: "Notification deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
)

var regOnce sync.Once

// Register adds every collector to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			Offers,
			Escalations,
			ActiveFlows,
			TimeToAccept,
			GeoQueryDuration,
			ScheduledJobs,
			PromotionEvaluations,
			PromotionSavings,
			NotificationDeliveries,
			UpstreamRequests,
			UpstreamDuration,
		)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
