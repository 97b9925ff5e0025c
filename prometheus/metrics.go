// Package prometheus exports widget counters as Prometheus metrics.
package prometheus

import (
	"github.com/fwojciec/kai"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "kai"

// Interface compliance check.
var _ kai.Metrics = (*Metrics)(nil)

// Metrics implements kai.Metrics with Prometheus counters.
type Metrics struct {
	published *prometheus.CounterVec
	coalesced *prometheus.CounterVec
	requested *prometheus.CounterVec
	ignored   *prometheus.CounterVec
	timedOut  *prometheus.CounterVec
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "bus",
			Name:      "published_total",
			Help:      "Values published on a channel.",
		}, []string{"channel"}),
		coalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "bus",
			Name:      "coalesced_total",
			Help:      "Published values replaced before subscribers observed them.",
		}, []string{"channel"}),
		requested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "pagination",
			Name:      "requested_total",
			Help:      "Load-more requests emitted.",
		}, []string{"target", "direction"}),
		ignored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "pagination",
			Name:      "ignored_total",
			Help:      "Load-more triggers dropped while a request was in flight.",
		}, []string{"target", "direction"}),
		timedOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "pagination",
			Name:      "timed_out_total",
			Help:      "Load-more requests that were never answered.",
		}, []string{"target", "direction"}),
	}
	for _, c := range []prometheus.Collector{m.published, m.coalesced, m.requested, m.ignored, m.timedOut} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ChannelPublished(channel string) {
	m.published.WithLabelValues(channel).Inc()
}

func (m *Metrics) ChannelCoalesced(channel string) {
	m.coalesced.WithLabelValues(channel).Inc()
}

func (m *Metrics) PaginationRequested(target kai.Target, dir kai.Direction) {
	m.requested.WithLabelValues(string(target), dir.String()).Inc()
}

func (m *Metrics) PaginationIgnored(target kai.Target, dir kai.Direction) {
	m.ignored.WithLabelValues(string(target), dir.String()).Inc()
}

func (m *Metrics) PaginationTimedOut(target kai.Target, dir kai.Direction) {
	m.timedOut.WithLabelValues(string(target), dir.String()).Inc()
}
