package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

// EffectInstance is one emitter's runtime state: a configuration, a state
// machine and the render target it writes to. Instances are created by an
// Engine (Spawn, SpawnConfig) or standalone (NewInstance) and are owned by
// their creator; one instance must not be driven by two sequencers.
//
// State transitions:
//
//	Inactive --Start--> Active --Stop--> Inactive
//	Active --Complete--> Complete --Start--> Active
//	Active --TransitionTo--> Transitioning --(blend done)--> Active
type EffectInstance struct {
	id     InstanceID
	name   string
	engine *Engine
	// hooks is set for instances spawned from a registry provider.
	hooks bool
	// custom is set once the configuration was replaced by Update or
	// TransitionTo; provider refreshes no longer override it.
	custom bool

	state   InstanceState
	config  EffectConfig
	physics *PhysicsParams
	target  RenderTarget
	offset  mgl64.Vec3

	birthRate  float64
	startedAt  float64
	activation uint64
	evicted    bool
	transition *Transition

	// last is the most recent snapshot written or queued.
	last    EmissionParams
	hasLast bool
	// pending is set while a queued write waits in the engine's batch queue.
	pending       bool
	pendingParams EmissionParams
}

// NewInstance creates a standalone instance that is not scheduled by any
// engine. Its writes go straight to target.
func NewInstance(name string, cfg EffectConfig, target RenderTarget) (*EffectInstance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &EffectInstance{name: name, config: cfg, target: target}, nil
}

// ID returns the engine-assigned ID. Standalone instances have the zero ID.
func (i *EffectInstance) ID() InstanceID { return i.id }

// Name returns the effect name the instance was created with.
func (i *EffectInstance) Name() string { return i.name }

// State returns the current lifecycle state.
func (i *EffectInstance) State() InstanceState { return i.state }

// Configuration returns the stored configuration. For staged updates this is
// the configuration that takes effect on the next Start.
func (i *EffectInstance) Configuration() EffectConfig { return i.config }

// BirthRate returns the birth rate currently applied (zero unless emitting).
func (i *EffectInstance) BirthRate() float64 { return i.birthRate }

// Target returns the render target.
func (i *EffectInstance) Target() RenderTarget { return i.target }

// Offset returns the spatial offset applied to the emitter.
func (i *EffectInstance) Offset() mgl64.Vec3 { return i.offset }

// SetOffset moves the emitter. Active instances pick the change up on the
// next tick.
func (i *EffectInstance) SetOffset(v mgl64.Vec3) { i.offset = v }

// Evicted reports whether the instance was stopped by the frame-rate policy
// and has not been started since.
func (i *EffectInstance) Evicted() bool { return i.evicted }

// Physics returns the attached physics parameters.
func (i *EffectInstance) Physics() (PhysicsParams, bool) {
	if i.physics == nil {
		return PhysicsParams{}, false
	}
	return *i.physics, true
}

// SetPhysics attaches a copy of p, or detaches physics when p is nil.
func (i *EffectInstance) SetPhysics(p *PhysicsParams) {
	if p == nil {
		i.physics = nil
		return
	}
	cp := *p
	i.physics = &cp
}

// emitting reports whether the state produces particles.
func (i *EffectInstance) emitting() bool {
	return i.state == StateActive || i.state == StateTransitioning
}

// Start begins emission at the configured birth rate and clears the eviction
// mark. Starting an instance that is already emitting is a no-op. Sequencers
// never start an evicted instance; only the host does.
func (i *EffectInstance) Start() {
	if i.emitting() {
		return
	}
	if i.engine != nil {
		i.engine.willStart(i)
	}
	i.state = StateActive
	i.birthRate = i.config.BirthRate
	i.evicted = false
	i.transition = nil
	if i.engine == nil {
		i.writeNow(i.emission(0))
		return
	}
	i.startedAt = i.engine.now
	i.engine.track(i)
	i.engine.enqueue(i, i.emission(i.engine.now))
	i.engine.emit(EffectEvent{Type: EventStarted, Instance: i.id, Name: i.name})
}

// Stop zeroes the birth rate and returns the instance to Inactive from any
// state. The configuration is kept.
func (i *EffectInstance) Stop() {
	i.halt(StateInactive, EventStopped)
}

// Complete marks the instance finished. Only Start leaves Complete.
func (i *EffectInstance) Complete() {
	if i.state == StateComplete {
		return
	}
	i.halt(StateComplete, EventCompleted)
}

// halt moves the instance to a non-emitting state, pushing the zero birth
// rate immediately when it was emitting.
func (i *EffectInstance) halt(to InstanceState, evt EventType) {
	was := i.emitting()
	i.state = to
	i.birthRate = 0
	i.transition = nil
	if !was {
		return
	}
	if i.engine == nil {
		i.writeNow(i.emission(0))
		return
	}
	i.engine.untrack(i)
	i.writeNow(i.emission(i.engine.now))
	i.engine.emit(EffectEvent{Type: evt, Instance: i.id, Name: i.name})
}

// Update replaces the configuration. Invalid configurations are rejected with
// a *ConfigError and the previous configuration is kept. Emitting instances
// recompute and push their parameters immediately (cancelling any running
// transition); idle instances only stage the new configuration.
func (i *EffectInstance) Update(cfg EffectConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	i.config = cfg
	i.custom = true
	if !i.emitting() {
		return nil
	}
	i.state = StateActive
	i.transition = nil
	i.birthRate = cfg.BirthRate
	i.writeNow(i.emission(i.now()))
	return nil
}

// TransitionTo replaces the configuration like Update, but an emitting
// instance blends from its current emission to the new one over seconds
// using fn (nil means linear). The instance reports StateTransitioning until
// the blend finishes. A non-positive duration behaves like Update.
func (i *EffectInstance) TransitionTo(cfg EffectConfig, seconds float64, fn ease.TweenFunc) error {
	if !i.emitting() || seconds <= 0 {
		return i.Update(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	from := i.emission(i.now())
	i.config = cfg
	i.custom = true
	i.birthRate = cfg.BirthRate
	i.transition = NewTransition(from, seconds, fn)
	i.state = StateTransitioning
	return nil
}

// Emission returns the snapshot the instance would write at its engine's
// current time.
func (i *EffectInstance) Emission() EmissionParams {
	return i.emission(i.now())
}

func (i *EffectInstance) now() float64 {
	if i.engine == nil {
		return 0
	}
	return i.engine.now
}

// emission computes the dynamic fields at engine time now: the color law is
// sampled at the emission cycle's lifetime fraction and the physics field is
// evaluated at the emitter offset.
func (i *EffectInstance) emission(now float64) EmissionParams {
	cfg := i.config
	age := math.Max(0, now-i.startedAt)
	accel := cfg.Acceleration
	if i.physics != nil && i.emitting() {
		var turb *Turbulence
		if i.engine != nil {
			turb = i.engine.turbulence
		}
		accel = accel.Add(i.physics.Acceleration(age, i.offset, turb))
	}
	p := EmissionParams{
		BirthRate:    i.birthRate,
		Color:        emissionColor(cfg.Color, lifetimeFraction(age, cfg.Lifetime)),
		Acceleration: accel,
		Speed:        cfg.Speed,
		Shape:        ShapeDescriptor{Shape: cfg.Shape, Size: cfg.EmitterSize},
		Lifetime:     cfg.Lifetime,
		Bounds:       cfg.Bounds,
		Offset:       i.offset,
		ColorLaw:     cfg.Color,
	}
	if i.transition != nil {
		p = i.transition.Blend(p)
	}
	return p
}

// writeNow pushes p to the target, superseding any queued write.
func (i *EffectInstance) writeNow(p EmissionParams) {
	i.pending = false
	i.last = p
	i.hasLast = true
	if i.target != nil {
		i.target.SetEmissionParams(p)
	}
}

// lifetimeFraction maps an age onto the repeating [0, 1) lifetime cycle.
func lifetimeFraction(age, lifetime float64) float64 {
	if lifetime <= 0 {
		return 0
	}
	return math.Mod(age, lifetime) / lifetime
}

// emissionColor is the instance-level color for a law. Palettes report their
// first entry; the per-particle pick is the render target's job.
func emissionColor(law ColorLaw, fraction float64) Color {
	if m, ok := law.(MultipleColors); ok {
		if len(m.Colors) == 0 {
			return ColorWhite
		}
		return m.Colors[0]
	}
	return SampleColor(law, fraction, nil)
}
