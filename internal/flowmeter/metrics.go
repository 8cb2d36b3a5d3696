package flowmeter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments exposed by the engine, wired the
// same way telemetry/flow-enricher/internal/flow-enricher/metrics.go wires
// its own EnricherMetrics: one promauto factory, one struct of instruments
// constructed up front.
type Metrics struct {
	PacketsRoutedTotal  prometheus.Counter
	PacketsDroppedTotal prometheus.Counter
	FlowsFinishedTotal  prometheus.Counter
	FlowsFlushedTotal   prometheus.Counter
	OpenFlows           prometheus.Gauge
	ProcessingDuration  prometheus.Histogram
}

// NewMetrics registers and returns a new Metrics instance against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PacketsRoutedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "packets_routed_total",
			Help: "Total number of packets routed into the flow table.",
		}),
		PacketsDroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "packets_dropped_total",
			Help: "Total number of packets dropped as malformed or unsupported.",
		}),
		FlowsFinishedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "flows_finished_total",
			Help: "Total number of flows finished via timeout, RST, or FIN handshake.",
		}),
		FlowsFlushedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "flows_flushed_total",
			Help: "Total number of flows emitted by the end-of-input flush.",
		}),
		OpenFlows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "open_flows",
			Help: "Current number of open flows in the flow table.",
		}),
		ProcessingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "processing_duration_seconds",
			Help: "Duration of processing an entire capture file, end to end.",
		}),
	}
}
