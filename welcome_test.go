package lumen

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestSlotOffset(t *testing.T) {
	if v := SlotOffset(0, 1, 5); v.Len() != 0 {
		t.Errorf("single slot = %v, want origin", v)
	}
	top := SlotOffset(0, 4, 2)
	if math.Abs(top[0]) > 1e-12 || math.Abs(top[1]-2) > 1e-12 {
		t.Errorf("slot 0 = %v, want (0, 2, 0)", top)
	}
	right := SlotOffset(1, 4, 2)
	if math.Abs(right[0]-2) > 1e-12 || math.Abs(right[1]) > 1e-12 {
		t.Errorf("slot 1 = %v, want (2, 0, 0)", right)
	}
	for i := 0; i < 5; i++ {
		if r := SlotOffset(i, 5, 3).Len(); math.Abs(r-3) > 1e-12 {
			t.Errorf("slot %d radius = %v, want 3", i, r)
		}
	}
}

func TestWelcomeSequenceShape(t *testing.T) {
	seq := WelcomeSequence(3, rand.New(rand.NewPCG(1, 2)))
	if err := seq.Validate(); err != nil {
		t.Fatal(err)
	}
	want := []string{PhaseAwaken, PhaseGather, PhaseGalaxy, PhaseSplit, PhaseSparkle, PhaseFade}
	if len(seq.Phases) != len(want) {
		t.Fatalf("phases = %d, want %d", len(seq.Phases), len(want))
	}
	for i, name := range want {
		if seq.Phases[i].Name != name {
			t.Errorf("phase %d = %q, want %q", i, seq.Phases[i].Name, name)
		}
		if cfg := seq.Phases[i].Assign(i % 3); cfg.Validate() != nil {
			t.Errorf("phase %q assigns an invalid config", name)
		}
	}
	if seq.Repeats {
		t.Error("welcome should not repeat")
	}
	if d := seq.Duration(); d != 12.5 {
		t.Errorf("Duration = %v, want 12.5", d)
	}
	if seq.Phases[len(seq.Phases)-1].Finish != FinishComplete {
		t.Error("welcome should finish by completing its instances")
	}
	if rate := seq.Phases[5].Assign(0).BirthRate; rate != 0 {
		t.Errorf("fade birth rate = %v, want 0", rate)
	}
	if WelcomeSequence(0, nil).Phases[0].Offset(0).Len() != 0 {
		t.Error("a single slot should sit at the origin")
	}
}

func TestWelcomeRunsToCompletion(t *testing.T) {
	e := quietEngine(EngineConfig{EvictionThreshold: -1})
	sink := &recordingSink{}
	e.SetEventSink(sink)

	const slots = 3
	sims := make([]*Simulator, slots)
	insts := make([]*EffectInstance, slots)
	for i := range insts {
		sims[i] = NewSimulator(64, rand.New(rand.NewPCG(uint64(i), 9)))
		inst, err := e.Spawn(PresetFireflies, sims[i])
		if err != nil {
			t.Fatal(err)
		}
		insts[i] = inst
	}
	s, err := e.NewSequencer(WelcomeSequence(slots, rand.New(rand.NewPCG(3, 4))), insts)
	if err != nil {
		t.Fatal(err)
	}
	done := 0
	if err := s.Start(func() { done++ }); err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{}
	for step := 0; step <= 130; step++ {
		e.Tick(float64(step) / 10)
		for _, sim := range sims {
			sim.Update(0.1)
		}
		seen[s.PhaseName()] = true
		if step == 75 {
			// Mid split: every slot sits on the ring of radius 2.
			for i, inst := range insts {
				if r := inst.Offset().Len(); math.Abs(r-2) > 1e-9 {
					t.Errorf("split: slot %d radius = %v, want 2", i, r)
				}
			}
		}
	}

	if done != 1 || s.State() != SequencerCompleted {
		t.Fatalf("done = %d state = %v, want 1 completed", done, s.State())
	}
	for _, name := range []string{PhaseAwaken, PhaseGather, PhaseGalaxy, PhaseSplit, PhaseSparkle, PhaseFade} {
		if !seen[name] {
			t.Errorf("phase %q never observed", name)
		}
	}
	for i, inst := range insts {
		if inst.State() != StateComplete {
			t.Errorf("slot %d state = %v, want Complete", i, inst.State())
		}
		if sims[i].Emitting() {
			t.Errorf("slot %d target still emitting", i)
		}
	}
	if sink.count(EventSequenceCompleted) != 1 || sink.count(EventPhaseEntered) != 6 {
		t.Errorf("events: completed %d, phases %d", sink.count(EventSequenceCompleted), sink.count(EventPhaseEntered))
	}
}
