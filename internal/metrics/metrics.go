// Package metrics exposes prometheus collectors for the engine. The
// collectors are optional: a nil *Metrics is safe to call throughout the
// engine, so embedding hosts that do not scrape pay nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	Ticks         prometheus.Counter
	PointPasses   *prometheus.CounterVec
	Commands      *prometheus.CounterVec
	NavFailures   prometheus.Counter
	RouteCost     prometheus.Histogram
	LayoutNodes   prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rover_engine_ticks_total",
			Help: "Engine ticks executed.",
		}),
		PointPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rover_point_passes_total",
			Help: "Passes through routine points, by outcome.",
		}, []string{"outcome"}), // executed | skipped
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rover_commands_total",
			Help: "Command invocations, by command name and status.",
		}, []string{"command", "status"}), // ok | error
		NavFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rover_navigation_failures_total",
			Help: "Movement passes that exhausted their attempt bound.",
		}),
		RouteCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rover_route_cost",
			Help:    "Cost of routes returned by the pathfinder.",
			Buckets: prometheus.LinearBuckets(0.1, 0.2, 10),
		}),
		LayoutNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rover_layout_nodes",
			Help: "Nodes currently in the layout graph.",
		}),
	}
	reg.MustRegister(m.Ticks, m.PointPasses, m.Commands, m.NavFailures, m.RouteCost, m.LayoutNodes)
	return m
}

// Convenience recorders, all nil-safe.

func (m *Metrics) Tick() {
	if m != nil {
		m.Ticks.Inc()
	}
}

func (m *Metrics) PointPass(executed bool) {
	if m == nil {
		return
	}
	if executed {
		m.PointPasses.WithLabelValues("executed").Inc()
	} else {
		m.PointPasses.WithLabelValues("skipped").Inc()
	}
}

func (m *Metrics) Command(name string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Commands.WithLabelValues(name, status).Inc()
}

func (m *Metrics) NavFailure() {
	if m != nil {
		m.NavFailures.Inc()
	}
}

func (m *Metrics) Route(cost float64) {
	if m != nil {
		m.RouteCost.Observe(cost)
	}
}

func (m *Metrics) Nodes(n int) {
	if m != nil {
		m.LayoutNodes.Set(float64(n))
	}
}
