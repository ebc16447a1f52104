package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the runtime's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	eventsDispatched prometheus.Counter
	viewModelErrors  *prometheus.CounterVec
	snapshots        prometheus.Counter
	tasksSpawned     prometheus.Counter
	dispatchDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tuneplayer",
			Subsystem: "app",
			Name:      "events_dispatched_total",
			Help:      "Total number of events fanned out to view-models.",
		}),
		viewModelErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tuneplayer",
			Subsystem: "app",
			Name:      "view_model_errors_total",
			Help:      "Total number of errors returned by view-model handlers.",
		}, []string{"view_model"}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tuneplayer",
			Subsystem: "app",
			Name:      "snapshots_total",
			Help:      "Total number of view-state snapshots projected.",
		}),
		tasksSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tuneplayer",
			Subsystem: "app",
			Name:      "tasks_spawned_total",
			Help:      "Total number of async tasks spawned through the app.",
		}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tuneplayer",
			Subsystem: "app",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching and projecting one event.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		}),
	}
	if reg != nil {
		reg.MustRegister(m.eventsDispatched, m.viewModelErrors, m.snapshots, m.tasksSpawned, m.dispatchDuration)
	}
	return m
}

func (m *Metrics) observeDispatch(start time.Time, projected bool) {
	if m == nil {
		return
	}
	m.eventsDispatched.Inc()
	if projected {
		m.snapshots.Inc()
	}
	m.dispatchDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) viewModelError(name string) {
	if m == nil {
		return
	}
	m.viewModelErrors.WithLabelValues(name).Inc()
}

func (m *Metrics) taskSpawned() {
	if m == nil {
		return
	}
	m.tasksSpawned.Inc()
}
