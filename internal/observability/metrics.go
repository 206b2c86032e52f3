package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the availability monitor.
type Metrics struct {
	PollsTotal     prometheus.Counter
	PollDuration   prometheus.Histogram
	MonitorRunning prometheus.Gauge

	// Availability results from the latest poll.
	Availabilities prometheus.Gauge
	SnapshotsSaved prometheus.Counter
	Alerts         *prometheus.CounterVec // labels: kind={found,changed}

	// Status feed metrics.
	FetchRequests *prometheus.CounterVec   // labels: region, outcome={success,error,empty}
	FetchDuration *prometheus.HistogramVec // labels: region
}

// NewMetrics creates and registers all monitor metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.PollsTotal,
		m.PollDuration,
		m.MonitorRunning,
		m.Availabilities,
		m.SnapshotsSaved,
		m.Alerts,
		m.FetchRequests,
		m.FetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "appointment_watch",
			Name:      "polls_total",
			Help:      "Total completed poll iterations.",
		}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "appointment_watch",
			Name:      "poll_duration_seconds",
			Help:      "Duration of one fetch-match-record cycle across all regions.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "appointment_watch",
			Name:      "monitor_running",
			Help:      "1 when the monitor loop is active, 0 when shut down.",
		}),
		Availabilities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "appointment_watch",
			Name:      "availabilities",
			Help:      "In-radius cities reporting availability at the latest poll.",
		}),
		SnapshotsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "appointment_watch",
			Name:      "snapshots_saved_total",
			Help:      "Total snapshot files written.",
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_watch",
			Name:      "alerts_total",
			Help:      "Audible alerts sounded by kind.",
		}, []string{"kind"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_watch",
			Name:      "fetch_requests_total",
			Help:      "Status feed requests by region and outcome.",
		}, []string{"region", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "appointment_watch",
			Name:      "fetch_duration_seconds",
			Help:      "Status feed request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"region"}),
	}
}
