package flowmeter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFeatureRecordZeroDurationRatesAreZero(t *testing.T) {
	first := fwdPayload(0, 0)
	key, _ := keyOf(first)
	f := NewFlowState(key, first)
	// Only one packet: LastSeen == StartTS, so duration is 0.

	r := NewFeatureRecord(f)
	require.EqualValues(t, 0, r.FlowDuration)
	require.Equal(t, 0.0, r.FlowBytsPerSec)
	require.Equal(t, 0.0, r.FlowPktsPerSec)
	require.Equal(t, 0.0, r.FwdPktsPerSec)
	require.Equal(t, 0.0, r.BwdPktsPerSec)
}

func TestNewFeatureRecordDownUpRatioWithNoBackwardPackets(t *testing.T) {
	first := fwdPayload(0, 0)
	key, _ := keyOf(first)
	f := NewFlowState(key, first)
	r := NewFeatureRecord(f)
	require.EqualValues(t, 0, r.DownUpRatio)
}

func TestNewFeatureRecordFieldsProjectFromKeyAndLabel(t *testing.T) {
	first := fwdPayload(5, 0)
	key, _ := keyOf(first)
	f := NewFlowState(key, first)
	f.Label = LabelBenign

	r := NewFeatureRecord(f)
	require.Equal(t, f.ID, r.FlowID)
	require.Equal(t, "A", r.SrcIP)
	require.Equal(t, "B", r.DstIP)
	require.EqualValues(t, 5, r.Timestamp)
	require.Equal(t, LabelBenign, r.Label)
}

func TestNewFeatureRecordRatesUseDuration(t *testing.T) {
	first := fwdPayload(0, 100)
	key, _ := keyOf(first)
	f := NewFlowState(key, first)
	f.Ingest(fwdPayload(1_000_000, 100))

	r := NewFeatureRecord(f)
	require.InDelta(t, 200.0, r.FlowBytsPerSec, 1e-9)
	require.InDelta(t, 2.0, r.FlowPktsPerSec, 1e-9)
}
