// Package metrics exposes controller activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/ir-relay/internal/control"
)

const namespace = "ir_relay"

// Collector turns controller events into metrics. It implements
// control.Reporter.
type Collector struct {
	registry *prometheus.Registry

	relayOn        *prometheus.GaugeVec
	toggles        *prometheus.CounterVec
	received       prometheus.Counter
	learned        prometheus.Counter
	duplicates     prometheus.Counter
	ignored        prometheus.Counter
	configSessions prometheus.Counter
	configuring    prometheus.Gauge
}

// New creates a Collector registered on its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		relayOn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_on",
			Help:      "Relay state by channel, 1 = energized.",
		}, []string{"channel"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toggles_total",
			Help:      "Relay toggles by channel.",
		}, []string{"channel"}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codes_received_total",
			Help:      "IR codes received in normal mode.",
		}),
		learned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codes_learned_total",
			Help:      "IR codes accepted in config mode.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_codes_total",
			Help:      "Duplicate codes rejected in config mode.",
		}),
		ignored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_codes_total",
			Help:      "Zero or trigger codes ignored in config mode.",
		}),
		configSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_sessions_total",
			Help:      "Times config mode was entered.",
		}),
		configuring: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "configuring",
			Help:      "1 while config mode is active.",
		}),
	}

	c.registry.MustRegister(
		c.relayOn,
		c.toggles,
		c.received,
		c.learned,
		c.duplicates,
		c.ignored,
		c.configSessions,
		c.configuring,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Report updates metrics for a controller event.
func (c *Collector) Report(e control.Event) {
	switch e.Type {
	case control.EventStartup:
		for i, on := range e.States {
			c.relayOn.WithLabelValues(strconv.Itoa(i)).Set(boolGauge(on))
		}
	case control.EventReceived:
		c.received.Inc()
	case control.EventRelay:
		ch := strconv.Itoa(e.Channel)
		c.relayOn.WithLabelValues(ch).Set(boolGauge(e.On))
		c.toggles.WithLabelValues(ch).Inc()
	case control.EventConfigStart:
		c.configSessions.Inc()
		c.configuring.Set(1)
	case control.EventLearned:
		c.learned.Inc()
	case control.EventDuplicate:
		c.duplicates.Inc()
	case control.EventIgnored:
		c.ignored.Inc()
	case control.EventConfigDone:
		c.configuring.Set(0)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
