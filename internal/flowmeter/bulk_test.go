package flowmeter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBulkStateCommitsAtFourPackets(t *testing.T) {
	var b bulkState
	ts := []int64{0, 100_000, 200_000, 300_000}
	for _, t := range ts {
		b.update(t, 100, 0)
	}

	require.Equal(t, int64(1), b.episodes)
	require.Equal(t, int64(4), b.packetCount)
	require.Equal(t, int64(400), b.sizeTotal)
	require.Equal(t, ts[3]-ts[0], b.durationUS)
	require.Equal(t, ts[3], b.lastCommitTS)
}

func TestBulkStateExtendsPastFourPackets(t *testing.T) {
	var b bulkState
	for _, ts := range []int64{0, 100_000, 200_000, 300_000, 400_000} {
		b.update(ts, 100, 0)
	}

	require.Equal(t, int64(1), b.episodes)
	require.Equal(t, int64(5), b.packetCount)
	require.Equal(t, int64(500), b.sizeTotal)
	require.Equal(t, int64(400_000), b.durationUS)
}

func TestBulkStateGapRestartsEpisode(t *testing.T) {
	var b bulkState
	for _, ts := range []int64{0, 100_000, 200_000} {
		b.update(ts, 100, 0)
	}
	// Gap exceeding bulkGapUS resets the tentative run before it reaches 4.
	b.update(2_000_000, 100, 0)
	b.update(2_100_000, 100, 0)
	b.update(2_200_000, 100, 0)
	b.update(2_300_000, 100, 0)

	require.Equal(t, int64(1), b.episodes, "only the second run should have committed")
	require.Equal(t, int64(4), b.packetCount)
}

func TestBulkStateIgnoresZeroPayload(t *testing.T) {
	var b bulkState
	b.update(0, 0, 0)
	require.Equal(t, int64(0), b.startHelper)
	require.Equal(t, int64(0), b.pktHelper)
}

func TestBulkStateTakeoverResetsOnOtherDirectionCommit(t *testing.T) {
	var b bulkState
	b.update(0, 100, 0)
	b.update(100_000, 100, 0)

	// The other direction committed an episode after this one's tentative
	// run began; the next packet here must restart from scratch rather
	// than extend the stale run.
	b.update(200_000, 100, 150_000)

	require.Equal(t, int64(1), b.pktHelper)
	require.Equal(t, int64(200_000), b.startHelper)
}

func TestBulkStateAverages(t *testing.T) {
	var b bulkState
	require.Equal(t, 0.0, b.avgBytesPerBulk())
	require.Equal(t, 0.0, b.avgPacketsPerBulk())
	require.Equal(t, 0.0, b.avgBulkRate())

	for _, ts := range []int64{0, 100_000, 200_000, 1_200_000} {
		b.update(ts, 100, 0)
	}

	require.InDelta(t, 400.0, b.avgBytesPerBulk(), 1e-9)
	require.InDelta(t, 4.0, b.avgPacketsPerBulk(), 1e-9)
	require.InDelta(t, 400.0/(1.2), b.avgBulkRate(), 1e-6)
}
