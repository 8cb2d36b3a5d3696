package flowmeter

// activeIdleState tracks contiguous active periods (inter-packet gaps at or
// below the activity threshold) separated by idle periods (gaps above it).
type activeIdleState struct {
	startActive int64
	endActive   int64
	started     bool

	active Stats
	idle   Stats
}

// update folds packet time t into the active/idle accounting using the
// given threshold. Called on ordinary packets (threshold = activity
// timeout) and on sub-flow transitions (threshold = 5s), per spec.md
// §4.3.3.
func (a *activeIdleState) update(t int64, threshold int64) {
	if !a.started {
		a.startActive = t
		a.endActive = t
		a.started = true
		return
	}

	if t-a.endActive > threshold {
		if a.endActive > a.startActive {
			a.active.Append(float64(a.endActive - a.startActive))
		}
		a.idle.Append(float64(t - a.endActive))
		a.startActive = t
		a.endActive = t
		return
	}

	a.endActive = t
}

// finish closes out any open active period at flow end, per spec.md
// §4.3.3's flow-finish clause. closedByFIN indicates the flow ended via a
// full FIN handshake (in which case no residual idle span is appended);
// flowTimeoutUS and flowStartUS are needed to compute the residual idle
// span when the flow was not closed by FIN.
func (a *activeIdleState) finish(closedByFIN bool, flowTimeoutUS, flowStartUS int64) {
	if !a.started {
		return
	}
	if a.endActive > a.startActive {
		a.active.Append(float64(a.endActive - a.startActive))
	}
	if !closedByFIN && flowTimeoutUS > a.endActive-flowStartUS {
		a.idle.Append(float64(flowTimeoutUS - (a.endActive - flowStartUS)))
	}
}
