package flowmeter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineOption configures an Engine at construction time, mirroring the
// functional-options pattern telemetry/flow-enricher/internal/flow-enricher/enricher.go
// uses for its own Enricher.
type EngineOption func(*Engine)

// WithLogger injects a logger, replacing the default stderr text handler.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics injects a Metrics instance, replacing the default no-op
// registry. Pass NewMetrics(reg) to expose instruments on reg.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithLabels attaches a label set used to classify finished flows. Without
// one, flows are left at UnknownLabel.
func WithLabels(labels LabelSet) EngineOption {
	return func(e *Engine) { e.labels = labels }
}

// WithEngineFlowTimeout overrides the flow table's total-flow timeout for
// both TCP and UDP flows uniformly.
func WithEngineFlowTimeout(us int64) EngineOption {
	return func(e *Engine) {
		e.tcpFlowTimeoutUS = us
		e.udpFlowTimeoutUS = us
	}
}

// WithEngineProtocolTimeouts overrides the flow timeout separately per
// protocol, per spec.md §6.1's "tcp -t <seconds>" / "udp -t <seconds>"
// timeout-chain segments: TCP and UDP flows are tracked in separate flow
// tables so each can carry its own timeout.
func WithEngineProtocolTimeouts(tcpUS, udpUS int64) EngineOption {
	return func(e *Engine) {
		e.tcpFlowTimeoutUS = tcpUS
		e.udpFlowTimeoutUS = udpUS
	}
}

// WithEngineActivityTimeout overrides the flow table's activity/idle
// threshold.
func WithEngineActivityTimeout(us int64) EngineOption {
	return func(e *Engine) { e.activityTimeoutUS = us }
}

// WithBatchSize sets how many finished flows accumulate before the engine
// flushes them to the sink as one WriteRecords call. Default 256.
func WithBatchSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// Engine wires a CaptureReader, a FlowTable, and a Sink together into one
// run of the offline conversion: read a capture file end to end, reassemble
// flows, and emit a feature row for every flow the table finishes or
// flushes. It plays the same top-level role
// telemetry/flow-enricher/internal/flow-enricher/enricher.go's Enricher
// plays for its own consume-enrich-insert loop.
type Engine struct {
	logger  *slog.Logger
	metrics *Metrics
	labels  LabelSet

	tcpFlowTimeoutUS  int64
	udpFlowTimeoutUS  int64
	activityTimeoutUS int64
	batchSize         int
}

// NewEngine constructs an Engine with the spec's default timeouts, a no-op
// metrics registry, and a stderr text logger, all overridable via options.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		tcpFlowTimeoutUS:  defaultFlowTimeoutUS,
		udpFlowTimeoutUS:  defaultFlowTimeoutUS,
		activityTimeoutUS: defaultActivityTimeoutUS,
		batchSize:         256,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(prometheus.NewRegistry())
	}
	return e
}

// Run reads capture through reader, reassembles flows, classifies them
// against any configured label set, and writes feature rows to sink until
// the capture is exhausted. The end-of-input flush is unconditional: every
// flow still open when reader.Each returns is emitted, per spec.md §4.4.
func (e *Engine) Run(ctx context.Context, reader CaptureReader, sink Sink) error {
	started := time.Now()
	defer func() {
		e.metrics.ProcessingDuration.Observe(time.Since(started).Seconds())
	}()

	var batch []FeatureRecord
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.WriteRecords(batch); err != nil {
			return fmt.Errorf("failed to write feature records: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	emit := func(f *FlowState) {
		if e.labels != nil {
			f.Label = e.labels.Label(f.ID)
		}
		batch = append(batch, NewFeatureRecord(f))
		if len(batch) >= e.batchSize {
			if err := flush(); err != nil {
				e.logger.Error("failed to flush feature records", "error", err)
			}
		}
	}

	onFinished := func(f *FlowState) {
		e.metrics.FlowsFinishedTotal.Inc()
		emit(f)
	}
	onFlushed := func(f *FlowState) {
		e.metrics.FlowsFlushedTotal.Inc()
		emit(f)
	}

	// TCP and UDP flows are tracked in separate tables so each protocol
	// can carry its own flow timeout, per spec.md §6.1.
	tcpTable := NewFlowTable(
		WithFlowTimeout(e.tcpFlowTimeoutUS),
		WithActivityTimeout(e.activityTimeoutUS),
		WithFinishedFlowHandler(onFinished),
		WithFlushedFlowHandler(onFlushed),
	)
	udpTable := NewFlowTable(
		WithFlowTimeout(e.udpFlowTimeoutUS),
		WithActivityTimeout(e.activityTimeoutUS),
		WithFinishedFlowHandler(onFinished),
		WithFlushedFlowHandler(onFlushed),
	)

	e.logger.Info("starting capture processing")

	err := reader.Each(ctx, func(p Packet) {
		e.metrics.PacketsRoutedTotal.Inc()
		e.metrics.OpenFlows.Set(float64(tcpTable.OpenCount() + udpTable.OpenCount()))
		if p.IsUDP() {
			udpTable.Route(p)
			return
		}
		tcpTable.Route(p)
	})
	if err != nil {
		return fmt.Errorf("failed to process capture: %w", err)
	}

	flushed := tcpTable.OpenCount() + udpTable.OpenCount()
	tcpTable.Flush()
	udpTable.Flush()
	e.logger.Info("finished capture processing",
		"flows_finished", tcpTable.FinishedCount()+udpTable.FinishedCount(),
		"flows_flushed", flushed)
	e.metrics.OpenFlows.Set(0)

	return flush()
}
