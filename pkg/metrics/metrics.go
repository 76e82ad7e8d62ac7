// Package metrics exposes client counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ggd"

// Label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	TargetCore  = "core"
	TargetCloud = "cloud"

	DirectionIn  = "in"
	DirectionOut = "out"
)

// Collector records discovery, connect and message counters on a private
// registry. A nil *Collector discards everything.
type Collector struct {
	registry *prometheus.Registry

	discoveries       *prometheus.CounterVec
	discoveryDuration prometheus.Histogram
	connects          *prometheus.CounterVec
	messages          *prometheus.CounterVec
}

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		discoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_total",
			Help:      "Discovery attempts (fetch and parse) by result.",
		}, []string{"result"}),
		discoveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discovery_duration_seconds",
			Help:      "Time to fetch and parse a discovery document.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_total",
			Help:      "Broker connect attempts by target and result.",
		}, []string{"target", "result"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "MQTT messages by direction.",
		}, []string{"direction"}),
	}
	c.registry.MustRegister(c.discoveries, c.discoveryDuration, c.connects, c.messages)
	return c
}

// ObserveDiscovery records one discovery attempt.
func (c *Collector) ObserveDiscovery(err error, d time.Duration) {
	if c == nil {
		return
	}
	c.discoveries.WithLabelValues(result(err)).Inc()
	c.discoveryDuration.Observe(d.Seconds())
}

// ObserveConnect records one broker connect attempt against target.
func (c *Collector) ObserveConnect(target string, err error) {
	if c == nil {
		return
	}
	c.connects.WithLabelValues(target, result(err)).Inc()
}

// ObserveMessage counts one message in direction.
func (c *Collector) ObserveMessage(direction string) {
	if c == nil {
		return
	}
	c.messages.WithLabelValues(direction).Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry on /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
