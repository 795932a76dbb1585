// Package metrics exposes the overlay's internal counters to Prometheus.
// Nothing here is required for the overlay to work; with METRICS_PORT=0 the
// collector still counts but nothing is served.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "matchlens"

// Collector implements poller.Observer and records hotkey and panel events.
type Collector struct {
	registry *prometheus.Registry

	polls      *prometheus.CounterVec
	reconnects *prometheus.CounterVec
	health     prometheus.Gauge
	captures   *prometheus.CounterVec
	toggles    prometheus.Counter
	resizes    *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them, together with the Go
// runtime and process collectors, on a private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Reconnection attempts by result.",
		}, []string{"result"}),
		health: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consecutive_poll_failures",
			Help:      "Current consecutive poll failure count.",
		}),
		captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hotkey_captures_total",
			Help:      "Finished hotkey captures by result.",
		}, []string{"result"}),
		toggles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_toggles_total",
			Help:      "Window visibility flips accepted by the debounce guard.",
		}),
		resizes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_resizes_total",
			Help:      "Panel-driven window resizes by result.",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.polls, c.reconnects, c.health, c.captures, c.toggles, c.resizes,
	)
	return c
}

// Registry returns the registry the metrics live on.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) ObservePoll(outcome string) {
	c.polls.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveReconnect(ok bool) {
	c.reconnects.WithLabelValues(result(ok)).Inc()
}

func (c *Collector) SetHealthCounter(n int) {
	c.health.Set(float64(n))
}

// ObserveCapture records how a hotkey capture ended: "committed",
// "cancelled" or "conflict".
func (c *Collector) ObserveCapture(outcome string) {
	c.captures.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveToggle() {
	c.toggles.Inc()
}

func (c *Collector) ObserveResize(ok bool) {
	c.resizes.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
