// Package metrics exposes Prometheus counters for the command layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// A Collector counts command layer activity. A nil *Collector is valid and
// records nothing.
type Collector struct {
	commandsStarted   *prometheus.CounterVec
	commandsCompleted *prometheus.CounterVec
	commandLatency    *prometheus.HistogramVec
	fisSent           *prometheus.CounterVec
	fisReceived       *prometheus.CounterVec
	fisDropped        *prometheus.CounterVec
	parkedCycles      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with the registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		commandsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satacmd",
			Name:      "commands_started_total",
			Help:      "Commands that left the idle state, by operation.",
		}, []string{"layer", "operation"}),
		commandsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satacmd",
			Name:      "commands_completed_total",
			Help:      "Commands that returned to the idle state, by operation.",
		}, []string{"layer", "operation"}),
		commandLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "satacmd",
			Name:      "command_latency_cycles",
			Help:      "Cycles from leaving idle to returning to idle.",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 16),
		}, []string{"layer", "operation"}),
		fisSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satacmd",
			Name:      "fis_sent_total",
			Help:      "Outbound FIS units taken by the transport, by type.",
		}, []string{"layer", "type"}),
		fisReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satacmd",
			Name:      "fis_received_total",
			Help:      "Inbound FIS units accepted from the transport, by type.",
		}, []string{"layer", "type"}),
		fisDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satacmd",
			Name:      "fis_dropped_total",
			Help:      "Inbound FIS units of types the layer does not handle.",
		}, []string{"layer", "type"}),
		parkedCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satacmd",
			Name:      "parked_cycles_total",
			Help:      "Cycles spent waiting for an event, by state.",
		}, []string{"layer", "state"}),
	}

	reg.MustRegister(
		c.commandsStarted,
		c.commandsCompleted,
		c.commandLatency,
		c.fisSent,
		c.fisReceived,
		c.fisDropped,
		c.parkedCycles,
	)

	return c
}

// CommandStarted counts a command leaving idle.
func (c *Collector) CommandStarted(layer, op string) {
	if c == nil {
		return
	}

	c.commandsStarted.WithLabelValues(layer, op).Inc()
}

// CommandCompleted counts a command returning to idle after the given number
// of cycles.
func (c *Collector) CommandCompleted(layer, op string, cycles uint64) {
	if c == nil {
		return
	}

	c.commandsCompleted.WithLabelValues(layer, op).Inc()
	c.commandLatency.WithLabelValues(layer, op).Observe(float64(cycles))
}

// FISSent counts an outbound unit.
func (c *Collector) FISSent(layer, fisType string) {
	if c == nil {
		return
	}

	c.fisSent.WithLabelValues(layer, fisType).Inc()
}

// FISReceived counts an inbound unit.
func (c *Collector) FISReceived(layer, fisType string) {
	if c == nil {
		return
	}

	c.fisReceived.WithLabelValues(layer, fisType).Inc()
}

// FISDropped counts an inbound unit that was discarded.
func (c *Collector) FISDropped(layer, fisType string) {
	if c == nil {
		return
	}

	c.fisDropped.WithLabelValues(layer, fisType).Inc()
}

// Parked counts one cycle spent waiting in a state.
func (c *Collector) Parked(layer, state string) {
	if c == nil {
		return
	}

	c.parkedCycles.WithLabelValues(layer, state).Inc()
}
