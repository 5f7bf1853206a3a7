package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a session reports to.
//
// Collected:
//   - appdom_session_commands_total: commands by name and status
//   - appdom_session_command_duration_seconds: time to apply a command
//   - appdom_session_patch_entries: set and unset entries per change
//   - appdom_session_history_depth: undo entries held
type Metrics struct {
	commands     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	patchEntries prometheus.Histogram
	historyDepth prometheus.Gauge
}

// NewMetrics registers session collectors with reg. Pass
// prometheus.NewRegistry() in tests to avoid the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appdom",
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "Total number of editing commands by outcome",
		}, []string{"command", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "appdom",
			Subsystem: "session",
			Name:      "command_duration_seconds",
			Help:      "Time to apply an editing command in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"command"}),

		patchEntries: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "appdom",
			Subsystem: "session",
			Name:      "patch_entries",
			Help:      "Number of set and unset entries per published change",
			Buckets:   []float64{1, 2, 5, 10, 50, 100, 500},
		}),

		historyDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "appdom",
			Subsystem: "session",
			Name:      "history_depth",
			Help:      "Number of undo entries held by the session",
		}),
	}
}

// Command outcome labels.
const (
	statusApplied = "applied"
	statusNoop    = "noop"
	statusError   = "error"
)

func (m *Metrics) observe(command, status string, seconds float64) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, status).Inc()
	m.duration.WithLabelValues(command).Observe(seconds)
}

func (m *Metrics) published(entries, depth int) {
	if m == nil {
		return
	}
	m.patchEntries.Observe(float64(entries))
	m.historyDepth.Set(float64(depth))
}
