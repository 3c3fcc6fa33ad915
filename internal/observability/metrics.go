package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	MeetingsStartedTotal *prometheus.CounterVec
	LiveMeetings         prometheus.Gauge
	LiveOpsTotal         *prometheus.CounterVec
	AIRequestsTotal      *prometheus.CounterVec
	UploadsTotal         *prometheus.CounterVec
}

// DefaultMetrics creates metrics on the default registerer
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// NewMetrics creates a new set of API metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MeetingsStartedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copilot_meetings_started_total",
				Help: "Meetings started, by capture type",
			},
			[]string{"type"},
		),
		LiveMeetings: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "copilot_live_meetings",
				Help: "Live meeting entries currently held in memory",
			},
		),
		LiveOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copilot_live_ops_total",
				Help: "Live store operations, by op and found/missing outcome",
			},
			[]string{"op", "outcome"},
		),
		AIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copilot_ai_requests_total",
				Help: "AI engine calls, by operation and status",
			},
			[]string{"op", "status"},
		),
		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "copilot_uploads_total",
				Help: "Audio uploads, by partial/final kind",
			},
			[]string{"kind"},
		),
	}
}

// ObserveLiveOp records one live store operation outcome
func (m *Metrics) ObserveLiveOp(op string, found bool) {
	outcome := "found"
	if !found {
		outcome = "missing"
	}
	m.LiveOpsTotal.WithLabelValues(op, outcome).Inc()
}
