package channel

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the channel's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tuneplayer",
			Subsystem: "channel",
			Name:      "requests_total",
			Help:      "Total number of channel requests by code and outcome.",
		}, []string{"code", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tuneplayer",
			Subsystem: "channel",
			Name:      "request_duration_seconds",
			Help:      "Channel request latency including codec work.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(code uint32, start time.Time, err error) {
	if m == nil {
		return
	}
	label := strconv.FormatUint(uint64(code), 10)
	m.requests.WithLabelValues(label, outcome(err)).Inc()
	m.duration.WithLabelValues(label).Observe(time.Since(start).Seconds())
}
