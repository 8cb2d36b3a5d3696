package flowmeter

// TableOption configures a FlowTable at construction time.
type TableOption func(*FlowTable)

// WithFlowTimeout sets the timeout, in microseconds of packet-timestamp
// space, after which an open flow is finished and a new one started for
// the same 5-tuple. Default 60s per spec.md §4.4.
func WithFlowTimeout(us int64) TableOption {
	return func(t *FlowTable) { t.flowTimeoutUS = us }
}

// WithActivityTimeout sets the activity/idle threshold applied to ordinary
// packets and FIN handling. Default 10s per spec.md §4.4.
func WithActivityTimeout(us int64) TableOption {
	return func(t *FlowTable) { t.activityTimeoutUS = us }
}

// WithFinishedFlowHandler registers the callback invoked for every flow the
// table finishes via timeout, RST, or FIN handshake, mirroring the sink
// hand-off described in spec.md §2.
func WithFinishedFlowHandler(fn func(*FlowState)) TableOption {
	return func(t *FlowTable) { t.onFinished = fn }
}

// WithFlushedFlowHandler registers the callback invoked for every flow
// emitted by the end-of-input flush, separately from ordinary finishes.
func WithFlushedFlowHandler(fn func(*FlowState)) TableOption {
	return func(t *FlowTable) { t.onFlushed = fn }
}

const (
	defaultFlowTimeoutUS     = 60_000_000
	defaultActivityTimeoutUS = 10_000_000
)

// FlowTable maps 5-tuples to open flow states, routes incoming packets, and
// decides when a flow is finished. It is the only component in the core
// with mutable shared state across packets (spec.md §2, §4.4).
type FlowTable struct {
	flowTimeoutUS     int64
	activityTimeoutUS int64
	onFinished        func(*FlowState)
	onFlushed         func(*FlowState)

	open          map[FlowKey]*FlowState
	finishedCount int64
}

// NewFlowTable creates an empty flow table with the given options applied
// over the spec's defaults.
func NewFlowTable(opts ...TableOption) *FlowTable {
	t := &FlowTable{
		flowTimeoutUS:     defaultFlowTimeoutUS,
		activityTimeoutUS: defaultActivityTimeoutUS,
		open:              make(map[FlowKey]*FlowState),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OpenCount returns the number of currently open flows.
func (t *FlowTable) OpenCount() int { return len(t.open) }

// FinishedCount returns the number of flows handed to the sink so far.
func (t *FlowTable) FinishedCount() int64 { return t.finishedCount }

// Route processes one packet in arrival order, per the routing rules in
// spec.md §4.4.
func (t *FlowTable) Route(p Packet) {
	fwdKey, bwdKey := keyOf(p)

	f, ok := t.open[fwdKey]
	if !ok {
		f, ok = t.open[bwdKey]
	}
	if !ok {
		nf := NewFlowState(fwdKey, p)
		t.open[fwdKey] = nf
		return
	}

	// Total timeout.
	if p.TimestampUS-f.StartTS > t.flowTimeoutUS {
		t.finish(f, false)
		nf := NewFlowState(fwdKey, p)
		t.open[fwdKey] = nf
		return
	}

	// RST.
	if p.RST {
		f.Ingest(p)
		t.finish(f, false)
		return
	}

	// FIN. Each side contributes at most one to the closure total; a
	// repeat FIN on a side that already sent one does not re-advance
	// closure (spec.md §4.4 step 5).
	if p.FIN {
		if f.isForward(p) {
			f.finSentFwd = true
		} else {
			f.finSentBwd = true
		}
		if f.finSentFwd && f.finSentBwd {
			f.Ingest(p)
			t.finish(f, true)
			return
		}
		f.actIdle.update(p.TimestampUS, t.activityTimeoutUS)
		f.Ingest(p)
		return
	}

	// Ordinary.
	f.actIdle.update(p.TimestampUS, t.activityTimeoutUS)
	f.Ingest(p)
}

// finish closes f out: active/idle accounting is flushed, the flow is
// removed from the open table, and — unless suppressed — handed to the
// sink callback. byFIN suppresses the residual-idle span on close.
func (t *FlowTable) finish(f *FlowState, byFIN bool) {
	f.actIdle.finish(byFIN, t.flowTimeoutUS, f.StartTS)
	delete(t.open, f.Key)

	if f.PktCount <= 1 {
		return
	}

	t.finishedCount++
	if t.onFinished != nil {
		t.onFinished(f)
	}
}

// Flush serializes all remaining open flows unconditionally, regardless of
// packet count, per spec.md §4.4's end-of-input flush. Flows are handed to
// the sink in no particular order.
func (t *FlowTable) Flush() {
	for key, f := range t.open {
		f.actIdle.finish(false, t.flowTimeoutUS, f.StartTS)
		delete(t.open, key)
		t.finishedCount++
		if t.onFlushed != nil {
			t.onFlushed(f)
		}
	}
}
