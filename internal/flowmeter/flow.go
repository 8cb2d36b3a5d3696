package flowmeter

// UnknownLabel is the default label assigned to a flow that was not matched
// against a label file.
const UnknownLabel = "UNKNOWN"

// directionStats accumulates the per-direction counters and timing
// statistics described in spec.md §3 "Direction accumulators".
type directionStats struct {
	payloadLen Stats
	iat        Stats

	totalBytes       int64
	totalHeaderBytes int64
	pktCount         int64
	lastSeen         int64
	lastSeenSet      bool

	pshCount int64
	urgCount int64
	finCount int64
}

// FlowState is the mutable per-flow aggregate owned exclusively by the flow
// table. It is created on the first packet of a new 5-tuple and mutated
// only via Ingest until the table finishes it.
type FlowState struct {
	Key       FlowKey
	ID        string
	StartTS   int64
	LastSeen  int64
	PktCount  int64 // total packets across both directions
	FwdSrcIP  string
	Label     string

	fwd directionStats
	bwd directionStats

	wholeLen Stats
	wholeIAT Stats

	finFlags, synFlags, rstFlags, pshFlags int64
	ackFlags, urgFlags, eceFlags, cwrFlags int64

	fwdBulk bulkState
	bwdBulk bulkState

	subflow subflowState
	actIdle activeIdleState

	initWinFwd, initWinBwd       uint16
	initWinFwdSet, initWinBwdSet bool
	actDataPktCountFwd           int64
	minSegSizeFwd                int64
	minSegSizeFwdSet             bool

	// FIN-direction closure tracking: booleans upgraded from "this side
	// has sent a FIN"; a stray second FIN on the same side does not
	// re-advance closure (spec.md §4.4 step 5).
	finSentFwd, finSentBwd bool
}

// NewFlowState creates a new open flow from its first packet. first must be
// the forward-oriented packet (i.e. key is the forward key computed from
// it).
func NewFlowState(key FlowKey, first Packet) *FlowState {
	f := &FlowState{
		Key:      key,
		ID:       key.ID(),
		StartTS:  first.TimestampUS,
		FwdSrcIP: first.SrcIP,
		Label:    UnknownLabel,
	}
	f.Ingest(first)
	return f
}

// isForward reports whether p travels in the flow's forward direction.
func (f *FlowState) isForward(p Packet) bool {
	return p.SrcIP == f.FwdSrcIP
}

// Ingest folds one packet into the flow's accumulators, per the ordered
// contract in spec.md §4.3. Re-ingesting the same packet twice is not
// supported.
func (f *FlowState) Ingest(p Packet) {
	forward := f.isForward(p)
	dir, other := &f.fwd, &f.bwd
	otherLastCommit := f.bwdBulk.lastCommitTS
	bulk := &f.fwdBulk
	if !forward {
		dir, other = &f.bwd, &f.fwd
		otherLastCommit = f.fwdBulk.lastCommitTS
		bulk = &f.bwdBulk
	}
	_ = other

	// 2. Bulk update.
	bulk.update(p.TimestampUS, p.PayloadLen, otherLastCommit)

	// 3. Sub-flow update.
	if f.subflow.update(p.TimestampUS) {
		f.actIdle.update(p.TimestampUS, activityThresholdUS)
	}

	// 4. Flag tally.
	if p.FIN {
		f.finFlags++
		dir.finCount++
	}
	if p.SYN {
		f.synFlags++
	}
	if p.RST {
		f.rstFlags++
	}
	if p.PSH {
		f.pshFlags++
		dir.pshCount++
	}
	if p.ACK {
		f.ackFlags++
	}
	if p.URG {
		f.urgFlags++
		dir.urgCount++
	}
	if p.ECE {
		f.eceFlags++
	}
	if p.CWR {
		f.cwrFlags++
	}

	// 5. Size stats.
	f.wholeLen.Append(float64(p.PayloadLen))
	dir.payloadLen.Append(float64(p.PayloadLen))
	dir.totalBytes += int64(p.PayloadLen)
	dir.totalHeaderBytes += int64(p.HeaderLen)
	dir.pktCount++

	// 6. Inter-arrival.
	if dir.lastSeenSet {
		dir.iat.Append(float64(p.TimestampUS - dir.lastSeen))
	}
	dir.lastSeen = p.TimestampUS
	dir.lastSeenSet = true

	if f.PktCount > 0 {
		f.wholeIAT.Append(float64(p.TimestampUS - f.LastSeen))
	}
	f.LastSeen = p.TimestampUS

	// 7. TCP extras.
	if forward {
		if p.PayloadLen > 0 {
			f.actDataPktCountFwd++
		}
		if !f.minSegSizeFwdSet || int64(p.HeaderLen) < f.minSegSizeFwd {
			f.minSegSizeFwd = int64(p.HeaderLen)
			f.minSegSizeFwdSet = true
		}
		if !f.initWinFwdSet {
			f.initWinFwd = p.Window
			f.initWinFwdSet = true
		}
	} else {
		if !f.initWinBwdSet {
			f.initWinBwd = p.Window
			f.initWinBwdSet = true
		}
	}

	f.PktCount++
}
