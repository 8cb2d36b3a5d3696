package flowmeter

// bulkGapUS is the maximum gap, in microseconds, between consecutive
// same-direction payload packets within one bulk episode.
const bulkGapUS = 1_000_000

// bulkState tracks one direction's bulk-detection helper variables plus the
// committed totals for that direction's bulk episodes. A bulk is a run of
// four or more consecutive same-direction payload-bearing packets with no
// gap exceeding bulkGapUS between successive packets.
type bulkState struct {
	startHelper int64
	lastTS      int64
	pktHelper   int64
	sizeHelper  int64

	episodes     int64
	packetCount  int64
	sizeTotal    int64
	durationUS   int64
	lastCommitTS int64 // timestamp of the most recently committed episode's packets
}

// update advances this direction's bulk helper state for a packet with the
// given payload size and timestamp. otherLastCommitTS is the opposite
// direction's lastCommitTS, used to detect that the other side has taken
// over since this direction's tentative bulk began.
func (b *bulkState) update(ts int64, payloadLen int, otherLastCommitTS int64) {
	if otherLastCommitTS > b.startHelper {
		b.startHelper = 0
		b.pktHelper = 0
	}

	if payloadLen == 0 {
		return
	}

	// pktHelper == 0 marks "no tentative run", so a run may begin at ts=0.
	switch {
	case b.pktHelper == 0:
		b.startHelper = ts
		b.pktHelper = 1
		b.sizeHelper = int64(payloadLen)
		b.lastTS = ts
		return
	case ts-b.lastTS > bulkGapUS:
		b.startHelper = ts
		b.pktHelper = 1
		b.sizeHelper = int64(payloadLen)
		b.lastTS = ts
		return
	default:
		b.pktHelper++
		b.sizeHelper += int64(payloadLen)
	}

	switch {
	case b.pktHelper == 4:
		b.episodes++
		b.packetCount += 4
		b.sizeTotal += b.sizeHelper
		b.durationUS += ts - b.startHelper
		b.lastCommitTS = ts
	case b.pktHelper > 4:
		b.packetCount++
		b.sizeTotal += int64(payloadLen)
		b.durationUS += ts - b.lastTS
		b.lastCommitTS = ts
	}

	b.lastTS = ts
}

// avgBytesPerBulk returns bulk_size_total / bulk_state_count, 0 if no
// episode has been committed.
func (b *bulkState) avgBytesPerBulk() float64 {
	if b.episodes == 0 {
		return 0
	}
	return float64(b.sizeTotal) / float64(b.episodes)
}

// avgPacketsPerBulk returns bulk_packet_count / bulk_state_count.
func (b *bulkState) avgPacketsPerBulk() float64 {
	if b.episodes == 0 {
		return 0
	}
	return float64(b.packetCount) / float64(b.episodes)
}

// avgBulkRate returns bulk_size_total / (bulk_duration in seconds).
func (b *bulkState) avgBulkRate() float64 {
	if b.durationUS == 0 {
		return 0
	}
	return float64(b.sizeTotal) / (float64(b.durationUS) / 1e6)
}
