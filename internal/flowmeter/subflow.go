package flowmeter

// subflowGapUS is the idle gap, in microseconds, that starts a new sub-flow.
const subflowGapUS = 1_000_000

// activityThresholdUS is the active/idle boundary applied when a packet
// starts a new sub-flow (FlowState.Ingest). Ordinary packets and FIN
// handling in the flow table use the table's own activity timeout instead.
const activityThresholdUS = 5_000_000

// subflowState tracks sub-flow segmentation: a new sub-flow begins whenever
// the gap since the previous packet (either direction) exceeds
// subflowGapUS.
type subflowState struct {
	lastTS  int64
	count   int64
	acStart int64 // subflow_ac_helper
	started bool
}

// update advances sub-flow segmentation for a packet at time ts, and
// returns true if this packet started a new sub-flow (the caller then
// invokes active/idle accounting with activityThresholdUS).
func (s *subflowState) update(ts int64) bool {
	newSubflow := false
	if s.started && ts-s.lastTS > subflowGapUS {
		s.count++
		s.acStart = ts
		newSubflow = true
	}
	s.lastTS = ts
	s.started = true
	return newSubflow
}

// perSubflow divides total by the sub-flow count, returning 0 when no
// sub-flow has been started.
func perSubflow(total int64, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}
