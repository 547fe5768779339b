package simplemedia

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the publishing pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Uploads              *prometheus.CounterVec
	Publishes            *prometheus.CounterVec
	CleanupFailures      prometheus.Counter
	NotificationsCreated prometheus.Counter
	DashboardDuration    prometheus.Histogram
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "simplemedia",
				Name:      "uploads_total",
				Help:      "Media uploads to the storage gateway",
			},
			[]string{"kind", "result"},
		),
		Publishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "simplemedia",
				Name:      "video_writes_total",
				Help:      "Committed video writes",
			},
			[]string{"op"},
		),
		CleanupFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "simplemedia",
				Name:      "remote_cleanup_failures_total",
				Help:      "Remote media deletions that failed and were skipped",
			},
		),
		NotificationsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "simplemedia",
				Name:      "notifications_created_total",
				Help:      "Notification rows written by fan-out",
			},
		),
		DashboardDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "simplemedia",
				Name:      "dashboard_duration_seconds",
				Help:      "Time spent computing the dashboard summary",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) upload(kind AssetKind, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Uploads.WithLabelValues(string(kind), result).Inc()
}

func (m *Metrics) publish(op string) {
	if m == nil {
		return
	}
	m.Publishes.WithLabelValues(op).Inc()
}

func (m *Metrics) cleanupFailed() {
	if m == nil {
		return
	}
	m.CleanupFailures.Inc()
}

func (m *Metrics) notifications(n int) {
	if m == nil {
		return
	}
	m.NotificationsCreated.Add(float64(n))
}

func (m *Metrics) observeDashboard(start time.Time) {
	if m == nil {
		return
	}
	m.DashboardDuration.Observe(time.Since(start).Seconds())
}
