package lumen

import "testing"

func TestManualTimerFiresInOrder(t *testing.T) {
	tm := NewManualTimer()
	var got []string
	tm.ScheduleAfter(2, func() { got = append(got, "b") })
	tm.ScheduleAfter(1, func() { got = append(got, "a") })
	tm.ScheduleAfter(2, func() { got = append(got, "c") })

	if n := tm.Advance(0.5); n != 0 {
		t.Errorf("Advance(0.5) fired %d, want 0", n)
	}
	if n := tm.Advance(2); n != 3 {
		t.Errorf("Advance(2) fired %d, want 3", n)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("order = %v, want [a b c]", got)
	}
	if tm.Now() != 2 {
		t.Errorf("Now = %v, want 2", tm.Now())
	}
}

func TestManualTimerCancel(t *testing.T) {
	tm := NewManualTimer()
	fired := false
	tok := tm.ScheduleAfter(1, func() { fired = true })
	if !tok.Cancel() {
		t.Error("Cancel of pending callback should report true")
	}
	if tok.Cancel() {
		t.Error("second Cancel should report false")
	}
	tm.Advance(5)
	if fired {
		t.Error("cancelled callback fired")
	}
	if tm.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", tm.Pending())
	}
}

func TestManualTimerCancelAfterFire(t *testing.T) {
	tm := NewManualTimer()
	tok := tm.ScheduleAfter(0, func() {})
	tm.Advance(0)
	if tok.Cancel() {
		t.Error("Cancel after firing should report false")
	}
}

func TestManualTimerChainsWithoutDrift(t *testing.T) {
	tm := NewManualTimer()
	var at []float64
	var step func()
	step = func() {
		at = append(at, tm.Now())
		if len(at) < 3 {
			tm.ScheduleAfter(1, step)
		}
	}
	tm.ScheduleAfter(1, step)

	// One coarse advance covers the whole chain.
	tm.Advance(3.5)
	if len(at) != 3 || at[0] != 1 || at[1] != 2 || at[2] != 3 {
		t.Errorf("fire times = %v, want [1 2 3]", at)
	}
}

func TestManualTimerIgnoresBackwards(t *testing.T) {
	tm := NewManualTimer()
	tm.Advance(5)
	fired := false
	tm.ScheduleAfter(1, func() { fired = true })
	tm.Advance(3)
	if tm.Now() != 5 {
		t.Errorf("Now = %v, want 5", tm.Now())
	}
	tm.Advance(6)
	if !fired {
		t.Error("callback due at 6 did not fire")
	}
}

func TestManualTimerRebase(t *testing.T) {
	tm := NewManualTimer()
	fired := false
	tm.ScheduleAfter(1, func() { fired = true })
	tm.Rebase(100)
	tm.Advance(100.5)
	if fired {
		t.Error("fired before its shifted deadline")
	}
	tm.Advance(101)
	if !fired {
		t.Error("did not fire at shifted deadline")
	}
}

func TestManualTimerNegativeDelay(t *testing.T) {
	tm := NewManualTimer()
	fired := false
	tm.ScheduleAfter(-3, func() { fired = true })
	tm.Advance(0)
	if !fired {
		t.Error("negative delay should fire on the next advance")
	}
}
