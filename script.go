package lumen

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// scriptStep is a single timed action in a script.
type scriptStep struct {
	// At is seconds after the first Step call.
	At     float64 `json:"at"`
	Action string  `json:"action"`
	// Slot labels the instance an action addresses.
	Slot   string    `json:"slot,omitempty"`
	Effect string    `json:"effect,omitempty"`
	Mood   string    `json:"mood,omitempty"`
	Energy *float64  `json:"energy,omitempty"`
	Blend  float64   `json:"blend,omitempty"`
	Slots  int       `json:"slots,omitempty"`
	Offset []float64 `json:"offset,omitempty"`
}

// script is the top-level JSON structure.
type script struct {
	Steps []scriptStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"spawn": true, "start": true, "stop": true, "complete": true,
	"update": true, "release": true, "welcome": true, "mood": true, "cancel": true,
}

// ScriptRunner plays timed engine actions for headless and automated runs.
// Drive it with Step from the same loop that ticks the engine.
type ScriptRunner struct {
	steps   []scriptStep
	cursor  int
	origin  float64
	started bool
	done    bool

	targets    func(label string) RenderTarget
	slots      map[string]*EffectInstance
	sequencers []*Sequencer
	completed  int
	logger     *log.Logger
}

// LoadScript parses a JSON script. Steps are ordered by time; steps with the
// same time keep their file order.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
		if st.At < 0 {
			return nil, fmt.Errorf("parse script: step %d: negative time %g", i, st.At)
		}
		if st.Offset != nil && len(st.Offset) != 3 {
			return nil, fmt.Errorf("parse script: step %d: offset wants 3 components", i)
		}
	}
	sort.SliceStable(sc.Steps, func(a, b int) bool { return sc.Steps[a].At < sc.Steps[b].At })
	return &ScriptRunner{
		steps:  sc.Steps,
		slots:  make(map[string]*EffectInstance),
		logger: defaultLogger,
	}, nil
}

// SetTargetFactory sets the function that creates a render target for each
// spawned slot. Without one, instances are spawned with a Simulator.
func (r *ScriptRunner) SetTargetFactory(fn func(label string) RenderTarget) {
	r.targets = fn
}

// SetLogger replaces the runner's logger. nil restores the default.
func (r *ScriptRunner) SetLogger(l *log.Logger) {
	if l == nil {
		l = defaultLogger
	}
	r.logger = l
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Instance returns the instance spawned under label.
func (r *ScriptRunner) Instance(label string) (*EffectInstance, bool) {
	inst, ok := r.slots[label]
	return inst, ok
}

// Sequencers returns the sequencers started by the script.
func (r *ScriptRunner) Sequencers() []*Sequencer {
	return r.sequencers
}

// Completed returns how many script sequencers have finished.
func (r *ScriptRunner) Completed() int {
	return r.completed
}

// Step runs every step due at now against e. The first call sets the
// script's time origin. A failing step is logged and skipped; the failures
// are returned joined.
func (r *ScriptRunner) Step(e *Engine, now float64) error {
	if r.done {
		return nil
	}
	if !r.started {
		r.origin = now
		r.started = true
	}
	var errs []error
	for r.cursor < len(r.steps) && r.steps[r.cursor].At <= now-r.origin {
		st := r.steps[r.cursor]
		r.cursor++
		if err := r.run(e, st); err != nil {
			err = fmt.Errorf("script step %d (%s at %gs): %w", r.cursor-1, st.Action, st.At, err)
			r.logger.Print(err)
			errs = append(errs, err)
		}
	}
	if r.cursor >= len(r.steps) {
		r.done = true
	}
	return errors.Join(errs...)
}

func (r *ScriptRunner) run(e *Engine, st scriptStep) error {
	switch st.Action {
	case "spawn":
		if st.Slot == "" {
			return errors.New("slot is required")
		}
		if _, exists := r.slots[st.Slot]; exists {
			return fmt.Errorf("slot %q already spawned", st.Slot)
		}
		inst, err := e.Spawn(st.Effect, r.target(st.Slot))
		if err != nil {
			return err
		}
		if st.Offset != nil {
			inst.SetOffset(vec3Of(st.Offset))
		}
		r.slots[st.Slot] = inst
	case "start", "stop", "complete", "release":
		inst, ok := r.slots[st.Slot]
		if !ok {
			return fmt.Errorf("slot %q: %w", st.Slot, ErrStaleInstance)
		}
		switch st.Action {
		case "start":
			inst.Start()
		case "stop":
			inst.Stop()
		case "complete":
			inst.Complete()
		case "release":
			delete(r.slots, st.Slot)
			return e.Release(inst.ID())
		}
	case "update":
		inst, ok := r.slots[st.Slot]
		if !ok {
			return fmt.Errorf("slot %q: %w", st.Slot, ErrStaleInstance)
		}
		cfg, err := r.config(e, st, inst)
		if err != nil {
			return err
		}
		if st.Offset != nil {
			inst.SetOffset(vec3Of(st.Offset))
		}
		return inst.TransitionTo(cfg, st.Blend, nil)
	case "welcome", "mood":
		var seq AnimationSequence
		slots := st.Slots
		if slots < 1 {
			slots = 1
		}
		if st.Action == "welcome" {
			seq = WelcomeSequence(slots, nil)
		} else {
			m, err := ParseMood(st.Mood)
			if err != nil {
				return err
			}
			seq = MoodSequence(m, slots)
		}
		return r.play(e, seq, slots)
	case "cancel":
		for _, s := range r.sequencers {
			s.Cancel()
		}
	}
	return nil
}

// config resolves the configuration an update step asks for: a mood, a
// registered effect, or the instance's own configuration, then scaled by
// energy when given.
func (r *ScriptRunner) config(e *Engine, st scriptStep, inst *EffectInstance) (EffectConfig, error) {
	var cfg EffectConfig
	switch {
	case st.Mood != "":
		m, err := ParseMood(st.Mood)
		if err != nil {
			return EffectConfig{}, err
		}
		cfg = MoodConfig(m, 0.5)
	case st.Effect != "":
		c, ok := e.Registry().Configuration(st.Effect)
		if !ok {
			return EffectConfig{}, fmt.Errorf("effect %q: %w", st.Effect, ErrRegistryMiss)
		}
		cfg = c
	default:
		cfg = inst.Configuration()
	}
	if st.Energy != nil {
		cfg = EnergyConfig(cfg, *st.Energy)
	}
	return cfg, nil
}

// play spawns fresh instances for seq and starts it.
func (r *ScriptRunner) play(e *Engine, seq AnimationSequence, slots int) error {
	insts := make([]*EffectInstance, slots)
	for i := range insts {
		label := fmt.Sprintf("%s-%d-%d", seq.Name, len(r.sequencers), i)
		inst, err := e.SpawnConfig(label, seq.Phases[0].Assign(i), r.target(label))
		if err != nil {
			return err
		}
		r.slots[label] = inst
		insts[i] = inst
	}
	s, err := e.NewSequencer(seq, insts)
	if err != nil {
		return err
	}
	r.sequencers = append(r.sequencers, s)
	return s.Start(func() { r.completed++ })
}

func (r *ScriptRunner) target(label string) RenderTarget {
	if r.targets != nil {
		return r.targets(label)
	}
	return NewSimulator(0, nil)
}

func vec3Of(v []float64) mgl64.Vec3 {
	var out mgl64.Vec3
	copy(out[:], v)
	return out
}
