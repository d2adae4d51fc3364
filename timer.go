package lumen

// CancellationToken invalidates a scheduled callback.
type CancellationToken interface {
	// Cancel prevents the callback from running. It reports whether the
	// callback was still pending.
	Cancel() bool
}

// TimerService runs fire-once deferred callbacks. The host provides one, or
// the Engine uses its built-in ManualTimer advanced from Tick.
type TimerService interface {
	ScheduleAfter(seconds float64, fn func()) CancellationToken
}

type timerState uint8

const (
	timerPending timerState = iota
	timerCancelled
	timerFired
)

type timerEntry struct {
	timer *ManualTimer
	due   float64
	seq   uint64
	fn    func()
	state timerState
}

// Cancel implements CancellationToken.
func (e *timerEntry) Cancel() bool {
	if e.state != timerPending {
		return false
	}
	e.state = timerCancelled
	e.timer.unlink(e)
	return true
}

// ManualTimer is a TimerService driven by explicit Advance calls. Callbacks
// run inside Advance in deadline order (ties in scheduling order). While a
// callback runs, Now reports that callback's deadline, so callbacks that
// schedule follow-ups chain without drift.
type ManualTimer struct {
	now     float64
	seq     uint64
	pending []*timerEntry
}

// NewManualTimer creates a timer at time zero.
func NewManualTimer() *ManualTimer {
	return &ManualTimer{}
}

// Now returns the timer's current time in seconds.
func (t *ManualTimer) Now() float64 {
	return t.now
}

// Pending returns the number of callbacks waiting to fire.
func (t *ManualTimer) Pending() int {
	return len(t.pending)
}

// ScheduleAfter arms fn to run once the timer reaches Now()+seconds. Negative
// delays are treated as zero.
func (t *ManualTimer) ScheduleAfter(seconds float64, fn func()) CancellationToken {
	if seconds < 0 {
		seconds = 0
	}
	t.seq++
	e := &timerEntry{timer: t, due: t.now + seconds, seq: t.seq, fn: fn}
	t.pending = append(t.pending, e)
	return e
}

// Advance moves the timer to now, firing every callback whose deadline has
// been reached, including ones scheduled by callbacks during this call.
// Time never moves backwards; an earlier now is ignored. Returns the number
// of callbacks fired.
func (t *ManualTimer) Advance(now float64) int {
	if now < t.now {
		return 0
	}
	fired := 0
	for {
		e := t.nextDue(now)
		if e == nil {
			break
		}
		t.unlink(e)
		e.state = timerFired
		t.now = e.due
		fired++
		if e.fn != nil {
			e.fn()
		}
	}
	t.now = now
	return fired
}

// Rebase moves the timer to now without firing anything. Pending deadlines
// shift by the same amount, keeping their remaining delay.
func (t *ManualTimer) Rebase(now float64) {
	shift := now - t.now
	for _, e := range t.pending {
		e.due += shift
	}
	t.now = now
}

// nextDue returns the earliest pending entry due at or before now.
func (t *ManualTimer) nextDue(now float64) *timerEntry {
	var best *timerEntry
	for _, e := range t.pending {
		if e.due > now {
			continue
		}
		if best == nil || e.due < best.due || (e.due == best.due && e.seq < best.seq) {
			best = e
		}
	}
	return best
}

func (t *ManualTimer) unlink(e *timerEntry) {
	for i, p := range t.pending {
		if p == e {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}
