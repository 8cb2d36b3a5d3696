package flowmeter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fwdPayload(ts int64, n int) Packet {
	return Packet{SrcIP: "A", DstIP: "B", SrcPort: 1, DstPort: 2, Protocol: ProtoTCP, TimestampUS: ts, PayloadLen: n, ACK: true}
}

// S4 Bulk boundary.
func TestScenarioS4BulkBoundary(t *testing.T) {
	key, _ := keyOf(fwdPayload(0, 1000))
	f := NewFlowState(key, fwdPayload(0, 1000))
	f.Ingest(fwdPayload(100_000, 1000))
	f.Ingest(fwdPayload(200_000, 1000))
	f.Ingest(fwdPayload(300_000, 1000))

	r := NewFeatureRecord(f)
	require.InDelta(t, 4000.0, r.FwdBytsPerBAvg, 1e-9)
	require.InDelta(t, 4.0, r.FwdPktsPerBAvg, 1e-9)
	require.EqualValues(t, 1, f.fwdBulk.episodes)

	f.Ingest(fwdPayload(400_000, 1000))
	r = NewFeatureRecord(f)
	require.InDelta(t, 5000.0, r.FwdBytsPerBAvg, 1e-9)
	require.InDelta(t, 5.0, r.FwdPktsPerBAvg, 1e-9)
}

func TestScenarioS4BulkBoundaryGapPreventsCommit(t *testing.T) {
	key, _ := keyOf(fwdPayload(0, 1000))
	f := NewFlowState(key, fwdPayload(0, 1000))
	f.Ingest(fwdPayload(100_000, 1000))
	f.Ingest(fwdPayload(200_000, 1000))
	// 1.5s gap before what would be the 4th packet.
	f.Ingest(fwdPayload(1_700_000, 1000))

	require.EqualValues(t, 0, f.fwdBulk.episodes)
}

func TestFlowStateDirectionAndFlagTallies(t *testing.T) {
	first := fwdPayload(0, 0)
	first.PSH = true
	key, _ := keyOf(first)
	f := NewFlowState(key, first)

	bwd := Packet{SrcIP: "B", DstIP: "A", SrcPort: 2, DstPort: 1, Protocol: ProtoTCP, TimestampUS: 1000, URG: true}
	f.Ingest(bwd)

	require.Equal(t, int64(1), f.fwd.pktCount)
	require.Equal(t, int64(1), f.bwd.pktCount)
	require.Equal(t, int64(1), f.fwd.pshCount)
	require.Equal(t, int64(1), f.bwd.urgCount)

	// Invariant 4: per-direction PSH/URG sums never exceed whole-flow tally.
	require.LessOrEqual(t, f.fwd.pshCount+f.bwd.pshCount, f.pshFlags)
	require.LessOrEqual(t, f.fwd.urgCount+f.bwd.urgCount, f.urgFlags)
	require.LessOrEqual(t, f.fwd.finCount+f.bwd.finCount, f.finFlags)
}

func TestFlowStateTCPExtras(t *testing.T) {
	first := fwdPayload(0, 100)
	first.Window = 65535
	first.HeaderLen = 40
	key, _ := keyOf(first)
	f := NewFlowState(key, first)

	second := fwdPayload(1000, 0)
	second.HeaderLen = 20
	f.Ingest(second)

	require.Equal(t, uint16(65535), f.initWinFwd)
	require.Equal(t, int64(1), f.actDataPktCountFwd, "only the payload-bearing packet counts")
	require.Equal(t, int64(20), f.minSegSizeFwd, "min header length across forward packets")
}

func TestFlowStateIsForward(t *testing.T) {
	first := fwdPayload(0, 0)
	key, _ := keyOf(first)
	f := NewFlowState(key, first)

	require.True(t, f.isForward(first))
	bwd := Packet{SrcIP: "B", DstIP: "A"}
	require.False(t, f.isForward(bwd))
}
