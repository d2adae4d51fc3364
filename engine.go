package lumen

import (
	"fmt"
	"log"
	"time"
)

// Engine is the top-level object that owns the instance arena, the batch
// scheduler, the frame sampler and (unless the host supplies one) the timer
// service. The host calls Tick once per frame from a single goroutine; the
// engine starts no goroutines and takes no locks.
type Engine struct {
	registry *Registry
	cfg      EngineConfig
	sink     EventSink
	logger   *log.Logger
	debug    bool

	arena arena
	// active holds emitting instances in activation order; index 0 is the
	// least recently added.
	active        []*EffectInstance
	activationSeq uint64
	// queue is the FIFO of instances with a pending write.
	queue []InstanceID

	sampler    *FrameSampler
	timer      TimerService
	clock      *ManualTimer // non-nil while the engine owns the timer
	turbulence *Turbulence

	now       float64
	lastTick  float64
	ticked    bool
	evictions int
}

// NewEngine creates an engine that resolves effect names through registry.
// A nil registry is replaced by an empty one. Zero fields in cfg take their
// defaults.
func NewEngine(registry *Registry, cfg EngineConfig) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	cfg = cfg.withDefaults()
	clock := NewManualTimer()
	return &Engine{
		registry:   registry,
		cfg:        cfg,
		logger:     defaultLogger,
		debug:      cfg.Debug,
		sampler:    NewFrameSampler(cfg.SampleCapacity),
		timer:      clock,
		clock:      clock,
		turbulence: NewTurbulence(cfg.NoiseSeed, cfg.NoiseScale),
	}
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Config returns the effective configuration.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Now returns the engine time of the latest tick.
func (e *Engine) Now() float64 {
	return e.now
}

// Timer returns the timer service sequencers should use.
func (e *Engine) Timer() TimerService {
	return e.timer
}

// SetTimer replaces the built-in timer with a host-provided service. The
// engine stops advancing its own clock; callbacks already scheduled on the
// built-in timer are dropped, and sequencers created earlier keep the timer
// they were given, so they stall. Call it before creating sequencers. nil
// restores a fresh built-in timer.
func (e *Engine) SetTimer(t TimerService) {
	if e.clock != nil && e.clock.Pending() > 0 {
		e.logger.Printf("warning: timer replaced with %d callbacks pending on the built-in timer, they will not fire",
			e.clock.Pending())
	}
	if t == nil {
		e.clock = NewManualTimer()
		e.clock.Advance(e.now)
		e.timer = e.clock
		return
	}
	e.clock = nil
	e.timer = t
}

// SetEventSink sets the optional event forwarder.
func (e *Engine) SetEventSink(sink EventSink) {
	e.sink = sink
}

// SetLogger replaces the engine's logger. nil restores the default.
func (e *Engine) SetLogger(l *log.Logger) {
	if l == nil {
		l = defaultLogger
	}
	e.logger = l
}

// SetDebugMode enables or disables per-tick stats logging.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug = enabled
}

// Spawn creates an Inactive instance of the registered effect name, with the
// provider's physics attached. Unknown names fail with ErrRegistryMiss.
func (e *Engine) Spawn(name string, target RenderTarget) (*EffectInstance, error) {
	p, ok := e.registry.Provider(name)
	if !ok {
		return nil, fmt.Errorf("spawn %q: %w", name, ErrRegistryMiss)
	}
	cfg := p.Configuration()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("spawn %q: %w", name, err)
	}
	inst := &EffectInstance{name: name, config: cfg, target: target, hooks: true}
	if phys, ok := p.PhysicsParams(); ok {
		inst.SetPhysics(&phys)
	}
	e.adopt(inst)
	return inst, nil
}

// SpawnConfig creates an Inactive instance from an explicit configuration.
// name is informational and does not trigger registry hooks.
func (e *Engine) SpawnConfig(name string, cfg EffectConfig, target RenderTarget) (*EffectInstance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("spawn %q: %w", name, err)
	}
	inst := &EffectInstance{name: name, config: cfg, target: target}
	e.adopt(inst)
	return inst, nil
}

func (e *Engine) adopt(inst *EffectInstance) {
	inst.engine = e
	inst.id = e.arena.insert(inst)
}

// Instance resolves id. Released IDs never resolve.
func (e *Engine) Instance(id InstanceID) (*EffectInstance, bool) {
	inst := e.arena.get(id)
	return inst, inst != nil
}

// Release stops the instance if it is emitting and frees its slot. Detaching
// the render target is the caller's job.
func (e *Engine) Release(id InstanceID) error {
	inst := e.arena.get(id)
	if inst == nil {
		return fmt.Errorf("release %v: %w", id, ErrStaleInstance)
	}
	if inst.emitting() {
		inst.Stop()
	}
	inst.pending = false
	e.arena.remove(id)
	inst.engine = nil
	return nil
}

// StopAll stops every live instance.
func (e *Engine) StopAll() {
	e.arena.each(func(inst *EffectInstance) {
		inst.Stop()
	})
}

// Instances returns the number of live (unreleased) instances.
func (e *Engine) Instances() int {
	return e.arena.len()
}

// Active returns the IDs of emitting instances, least recently added first.
func (e *Engine) Active() []InstanceID {
	ids := make([]InstanceID, len(e.active))
	for i, inst := range e.active {
		ids[i] = inst.id
	}
	return ids
}

// PendingWrites returns the number of queued writes not yet applied.
func (e *Engine) PendingWrites() int {
	n := 0
	for _, id := range e.queue {
		if inst := e.arena.get(id); inst != nil && inst.pending {
			n++
		}
	}
	return n
}

// FrameSampler exposes the frame-rate window for diagnostics.
func (e *Engine) FrameSampler() *FrameSampler {
	return e.sampler
}

// Evictions returns how many instances the frame-rate policy has stopped.
func (e *Engine) Evictions() int {
	return e.evictions
}

// Tick advances the engine to now (seconds, host clock):
//
//  1. dt = now - previous tick, clamped to >= 0 (0 on the first tick).
//  2. The built-in timer fires due callbacks (sequencer phase changes).
//  3. Every emitting instance recomputes its dynamic fields; changed
//     snapshots are queued, at most one per instance.
//  4. At most BatchSize queued writes are applied; the rest carry over.
//  5. 1/dt is sampled; a full window averaging below EvictionThreshold
//     stops the least recently added instance.
//
// Tick never blocks and never fails; instance problems are logged.
func (e *Engine) Tick(now float64) {
	var t0 time.Time
	if e.debug {
		t0 = time.Now()
	}

	dt := 0.0
	if !e.ticked {
		e.rebase(now)
		e.ticked = true
	} else {
		dt = now - e.lastTick
		if dt < 0 {
			dt = 0
		}
	}
	e.lastTick = now
	if now > e.now {
		e.now = now
	}

	if e.clock != nil {
		e.clock.Advance(e.now)
	}

	var stats tickStats
	for _, inst := range e.active {
		tr := inst.transition
		if tr != nil {
			tr.Update(dt)
		}
		p := inst.emission(e.now)
		if tr != nil && tr.Done {
			inst.transition = nil
			inst.state = StateActive
		}
		stats.recomputed++
		if !inst.hasLast || !p.equal(inst.last) {
			e.enqueue(inst, p)
			stats.enqueued++
		}
	}

	stats.drained = e.drain()

	if dt > 0 {
		e.sampler.Record(PerformanceSample{Timestamp: now, FrameRate: 1 / dt})
	}
	e.checkFrameRate()

	if e.debug {
		stats.active = len(e.active)
		stats.pending = e.PendingWrites()
		stats.frameRate = e.sampler.Average()
		stats.elapsed = time.Since(t0)
		e.debugLog(stats)
		e.debugCheckActive()
	}
}

// rebase anchors everything that happened before the first tick at the first
// tick's time, so the host clock may start anywhere.
func (e *Engine) rebase(now float64) {
	shift := now - e.now
	e.now = now
	if e.clock != nil {
		e.clock.Rebase(now)
	}
	for _, inst := range e.active {
		inst.startedAt += shift
	}
}

// enqueue records p as inst's pending write. An instance already waiting in
// the queue keeps its position and gets the newer payload.
func (e *Engine) enqueue(inst *EffectInstance, p EmissionParams) {
	inst.last = p
	inst.hasLast = true
	inst.pendingParams = p
	if inst.pending {
		return
	}
	inst.pending = true
	e.queue = append(e.queue, inst.id)
}

// drain applies up to BatchSize queued writes and returns how many it applied.
func (e *Engine) drain() int {
	applied := 0
	n := 0
	for n < len(e.queue) && applied < e.cfg.BatchSize {
		id := e.queue[n]
		n++
		inst := e.arena.get(id)
		if inst == nil || !inst.pending {
			// Released, or superseded by an immediate write.
			continue
		}
		inst.pending = false
		if inst.target != nil {
			inst.target.SetEmissionParams(inst.pendingParams)
		}
		applied++
	}
	e.queue = append(e.queue[:0], e.queue[n:]...)
	return applied
}

// checkFrameRate applies the eviction policy: one instance per breach, and
// the window restarts after every eviction.
func (e *Engine) checkFrameRate() {
	if e.cfg.EvictionThreshold <= 0 || !e.sampler.Full() || len(e.active) == 0 {
		return
	}
	avg := e.sampler.Average()
	if avg >= e.cfg.EvictionThreshold {
		return
	}
	victim := e.active[0]
	e.logger.Printf("frame rate %.1f Hz below %.1f Hz over %d samples, evicting %q (%v)",
		avg, e.cfg.EvictionThreshold, e.sampler.Len(), victim.name, victim.id)
	victim.halt(StateInactive, EventEvicted)
	victim.evicted = true
	e.evictions++
	e.sampler.Reset()
}

// willStart runs the registry activation hook. A fresh configuration from
// the provider replaces the instance's own unless the caller has set one.
func (e *Engine) willStart(inst *EffectInstance) {
	if !inst.hooks {
		return
	}
	cfg, ok := e.registry.WillStart(inst.name)
	if !ok || inst.custom {
		return
	}
	if err := cfg.Validate(); err != nil {
		e.logger.Printf("effect %q: provider produced invalid configuration, keeping previous: %v", inst.name, err)
		return
	}
	inst.config = cfg
}

// track appends inst to the activation order.
func (e *Engine) track(inst *EffectInstance) {
	e.activationSeq++
	inst.activation = e.activationSeq
	e.active = append(e.active, inst)
}

// untrack removes inst from the activation order and runs the registry
// deactivation hook.
func (e *Engine) untrack(inst *EffectInstance) {
	for k, a := range e.active {
		if a == inst {
			e.active = append(e.active[:k], e.active[k+1:]...)
			break
		}
	}
	inst.activation = 0
	if inst.hooks {
		e.registry.DidStop(inst.name)
	}
}

// emit forwards evt to the sink, stamped with the engine time.
func (e *Engine) emit(evt EffectEvent) {
	if e.sink == nil {
		return
	}
	evt.Time = e.now
	e.sink.EmitEvent(evt)
}

// NewSequencer creates a sequencer over instances that schedules through the
// engine's timer and reports through the engine's logger and event sink.
func (e *Engine) NewSequencer(seq AnimationSequence, instances []*EffectInstance) (*Sequencer, error) {
	s, err := NewSequencer(seq, instances, e.timer)
	if err != nil {
		return nil, err
	}
	s.engine = e
	s.logger = e.logger
	return s, nil
}
