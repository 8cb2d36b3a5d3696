package flowmeter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActiveIdleStateWithinThresholdExtends(t *testing.T) {
	var a activeIdleState
	a.update(0, 5_000_000)
	a.update(1_000_000, 5_000_000)
	a.update(2_000_000, 5_000_000)

	require.Equal(t, int64(0), a.startActive)
	require.Equal(t, int64(2_000_000), a.endActive)
	require.Equal(t, int64(0), a.active.N())
}

func TestActiveIdleStateGapCommitsActiveAndIdle(t *testing.T) {
	var a activeIdleState
	a.update(0, 5_000_000)
	a.update(1_000_000, 5_000_000)
	// Gap of 6s exceeds the 5s threshold: commits the [0, 1s] active span
	// and a 6s idle span, then starts a new active span at t=7s.
	a.update(7_000_000, 5_000_000)

	require.Equal(t, int64(1), a.active.N())
	require.InDelta(t, 1_000_000, a.active.Mean(), 1e-9)
	require.Equal(t, int64(1), a.idle.N())
	require.InDelta(t, 6_000_000, a.idle.Mean(), 1e-9)
	require.Equal(t, int64(7_000_000), a.startActive)
}

func TestActiveIdleStateFinishAppendsResidual(t *testing.T) {
	var a activeIdleState
	a.update(0, 5_000_000)
	a.update(1_000_000, 5_000_000)

	a.finish(false, 60_000_000, 0)

	require.Equal(t, int64(1), a.active.N())
	require.InDelta(t, 1_000_000, a.active.Mean(), 1e-9)
	// Residual idle span: flow_timeout (60s) minus elapsed-since-start (1s).
	require.Equal(t, int64(1), a.idle.N())
	require.InDelta(t, 59_000_000, a.idle.Mean(), 1e-9)
}

func TestActiveIdleStateFinishByFINSkipsResidualIdle(t *testing.T) {
	var a activeIdleState
	a.update(0, 5_000_000)
	a.update(1_000_000, 5_000_000)

	a.finish(true, 60_000_000, 0)

	require.Equal(t, int64(1), a.active.N())
	require.Equal(t, int64(0), a.idle.N())
}

func TestActiveIdleStateFinishOnUnstartedIsNoop(t *testing.T) {
	var a activeIdleState
	a.finish(false, 60_000_000, 0)
	require.Equal(t, int64(0), a.active.N())
	require.Equal(t, int64(0), a.idle.N())
}
