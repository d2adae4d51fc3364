package lumen

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

// FinishAction is what the final phase of a sequence does to its instances
// once its duration has elapsed.
type FinishAction uint8

const (
	FinishComplete FinishAction = iota // move every instance to Complete
	FinishStop                         // stop every instance
	FinishKeep                         // leave instances emitting
)

// AnimationPhase is one timed segment of a sequence.
type AnimationPhase struct {
	Name string
	// Duration in seconds; zero advances on the next timer dispatch.
	Duration float64
	// Assign returns the configuration for the instance at index. nil keeps
	// each instance's current configuration.
	Assign func(index int) EffectConfig
	// Offset optionally positions the instance at index.
	Offset func(index int) mgl64.Vec3
	// Blend cross-fades active instances into the new configuration over
	// this many seconds using Easing (nil means linear). Zero switches at once.
	Blend  float64
	Easing ease.TweenFunc
	// Finish only applies to the last phase.
	Finish FinishAction
}

// AnimationSequence is an ordered list of phases. A repeating sequence
// restarts at phase 0 after its last phase and never completes.
type AnimationSequence struct {
	Name    string
	Phases  []AnimationPhase
	Repeats bool
}

// Validate reports sequences that cannot be played.
func (s AnimationSequence) Validate() error {
	if len(s.Phases) == 0 {
		return fmt.Errorf("sequence %q has no phases: %w", s.Name, ErrInvalidSequence)
	}
	total := 0.0
	for i, p := range s.Phases {
		if !(p.Duration >= 0) || !isFinite(p.Duration) {
			return fmt.Errorf("sequence %q phase %d (%s): duration %g: %w", s.Name, i, p.Name, p.Duration, ErrInvalidSequence)
		}
		if p.Blend < 0 {
			return fmt.Errorf("sequence %q phase %d (%s): blend %g: %w", s.Name, i, p.Name, p.Blend, ErrInvalidSequence)
		}
		total += p.Duration
	}
	if s.Repeats && total == 0 {
		return fmt.Errorf("sequence %q repeats with zero total duration: %w", s.Name, ErrInvalidSequence)
	}
	return nil
}

// Duration returns the length of one pass through the phases.
func (s AnimationSequence) Duration() float64 {
	total := 0.0
	for _, p := range s.Phases {
		total += p.Duration
	}
	return total
}

// SequencerState is the lifecycle state of a Sequencer.
type SequencerState uint8

const (
	SequencerIdle SequencerState = iota
	SequencerRunning
	SequencerCompleted
	SequencerCancelled
)

// String returns the state name.
func (s SequencerState) String() string {
	switch s {
	case SequencerIdle:
		return "idle"
	case SequencerRunning:
		return "running"
	case SequencerCompleted:
		return "completed"
	case SequencerCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Sequencer plays an AnimationSequence over a fixed set of instances,
// addressed by position. It holds at most one pending timer; every callback
// it schedules carries the run generation and does nothing once that
// generation has been superseded by Cancel or a new Start.
type Sequencer struct {
	seq       AnimationSequence
	instances []*EffectInstance
	timer     TimerService
	engine    *Engine
	logger    *log.Logger

	state      SequencerState
	generation uint64
	phase      int
	token      CancellationToken
	onComplete func()
}

// NewSequencer creates an idle sequencer. The instances slice is copied; the
// instances themselves stay owned by the caller and must not be given to
// another sequencer.
func NewSequencer(seq AnimationSequence, instances []*EffectInstance, timer TimerService) (*Sequencer, error) {
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	if timer == nil {
		return nil, fmt.Errorf("sequence %q: nil timer: %w", seq.Name, ErrInvalidSequence)
	}
	owned := make([]*EffectInstance, len(instances))
	copy(owned, instances)
	return &Sequencer{
		seq:       seq,
		instances: owned,
		timer:     timer,
		logger:    defaultLogger,
		phase:     -1,
	}, nil
}

// SetLogger replaces the sequencer's logger. nil restores the default.
func (s *Sequencer) SetLogger(l *log.Logger) {
	if l == nil {
		l = defaultLogger
	}
	s.logger = l
}

// Sequence returns the sequence being played.
func (s *Sequencer) Sequence() AnimationSequence { return s.seq }

// Instances returns the owned instances in slot order.
func (s *Sequencer) Instances() []*EffectInstance {
	out := make([]*EffectInstance, len(s.instances))
	copy(out, s.instances)
	return out
}

// State returns the lifecycle state.
func (s *Sequencer) State() SequencerState { return s.state }

// PhaseIndex returns the index of the current phase, or -1 before the first
// Start.
func (s *Sequencer) PhaseIndex() int { return s.phase }

// PhaseName returns the current phase's name, or "" before the first Start.
func (s *Sequencer) PhaseName() string {
	if s.phase < 0 || s.phase >= len(s.seq.Phases) {
		return ""
	}
	return s.seq.Phases[s.phase].Name
}

// Start applies phase 0 to every instance and arms the timer for the next
// phase. onComplete (may be nil) runs exactly once, after the final phase's
// finish action. Starting a running sequencer logs a warning, changes
// nothing and returns ErrSequencerRunning. A completed or cancelled
// sequencer may be started again.
func (s *Sequencer) Start(onComplete func()) error {
	if s.state == SequencerRunning {
		s.logger.Printf("warning: sequence %q already running (phase %d %q), start ignored",
			s.seq.Name, s.phase, s.PhaseName())
		return fmt.Errorf("start sequence %q: %w", s.seq.Name, ErrSequencerRunning)
	}
	s.generation++
	s.state = SequencerRunning
	s.onComplete = onComplete
	s.enter(0, s.generation)
	return nil
}

// Cancel tears the run down: the pending timer is cancelled and any callback
// already in flight is ignored. Instances are left in their current state.
// It reports whether a run was cancelled.
func (s *Sequencer) Cancel() bool {
	if s.state != SequencerRunning {
		return false
	}
	s.generation++
	if s.token != nil {
		s.token.Cancel()
		s.token = nil
	}
	s.state = SequencerCancelled
	s.onComplete = nil
	s.emit(EffectEvent{Type: EventSequenceCancelled, Sequence: s.seq.Name, Phase: s.phase, PhaseName: s.PhaseName()})
	return true
}

// enter applies phase idx and schedules its end.
func (s *Sequencer) enter(idx int, gen uint64) {
	s.phase = idx
	ph := s.seq.Phases[idx]
	for i, inst := range s.instances {
		s.apply(ph, i, inst)
	}
	s.emit(EffectEvent{Type: EventPhaseEntered, Sequence: s.seq.Name, Phase: idx, PhaseName: ph.Name})

	// The phase application may have cancelled or restarted this run
	// through an event sink.
	if s.generation != gen || s.state != SequencerRunning {
		return
	}
	s.token = s.timer.ScheduleAfter(ph.Duration, func() {
		if s.generation != gen || s.state != SequencerRunning {
			return
		}
		s.token = nil
		s.advance(gen)
	})
}

// apply assigns one phase to one instance and starts it. Failures are logged
// and the instance keeps its previous configuration; the other instances
// proceed.
func (s *Sequencer) apply(ph AnimationPhase, index int, inst *EffectInstance) {
	if inst == nil {
		return
	}
	if ph.Offset != nil {
		inst.SetOffset(ph.Offset(index))
	}
	if ph.Assign != nil {
		cfg := ph.Assign(index)
		var err error
		if ph.Blend > 0 {
			err = inst.TransitionTo(cfg, ph.Blend, ph.Easing)
		} else {
			err = inst.Update(cfg)
		}
		if err != nil {
			s.logger.Printf("sequence %q phase %q: instance %d (%s): %v", s.seq.Name, ph.Name, index, inst.Name(), err)
		}
	}
	// Evicted instances only take the staged configuration; the host
	// decides when to start them again.
	if inst.Evicted() {
		return
	}
	inst.Start()
}

func (s *Sequencer) advance(gen uint64) {
	next := s.phase + 1
	if next < len(s.seq.Phases) {
		s.enter(next, gen)
		return
	}
	if s.seq.Repeats {
		s.enter(0, gen)
		return
	}
	s.finish()
}

func (s *Sequencer) finish() {
	last := s.seq.Phases[len(s.seq.Phases)-1]
	for _, inst := range s.instances {
		if inst == nil {
			continue
		}
		switch last.Finish {
		case FinishComplete:
			inst.Complete()
		case FinishStop:
			inst.Stop()
		case FinishKeep:
		}
	}
	s.state = SequencerCompleted
	s.emit(EffectEvent{Type: EventSequenceCompleted, Sequence: s.seq.Name, Phase: s.phase, PhaseName: last.Name})
	cb := s.onComplete
	s.onComplete = nil
	if cb != nil {
		cb()
	}
}

func (s *Sequencer) emit(evt EffectEvent) {
	if s.engine != nil {
		s.engine.emit(evt)
	}
}
