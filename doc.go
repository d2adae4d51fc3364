// Package lumen is a declarative, time-driven particle-effect engine for
// ambient and narrative visuals: a welcome animation, mood visualisations
// that follow the music, bursts and weather.
//
// The engine does not draw. Each effect instance writes [EmissionParams] to
// a host-owned [RenderTarget] and the host's renderer turns them into
// particles. [Simulator] is a reference target that simulates particles on
// the CPU; the example hosts draw its output.
//
// # Quick start
//
//	engine := lumen.NewEngine(lumen.NewPresetRegistry(), lumen.EngineConfig{})
//	sim := lumen.NewSimulator(0, nil)
//	inst, err := engine.Spawn(lumen.PresetFireflies, sim)
//	if err != nil {
//		log.Fatal(err)
//	}
//	inst.Start()
//
//	// every frame:
//	engine.Tick(now)
//	sim.Update(dt)
//
// # Configurations and presets
//
// An [EffectConfig] is an immutable value describing shape, birth rate,
// [ColorLaw], bounds, acceleration, speed and lifetime. [Validate] enforces
// lifetime > 0, birth rate >= 0 and ordered bounds, reporting a
// [*ConfigError]. Built-in presets are resolved with [Resolve]; more can be
// loaded from YAML with [LoadPresetFile].
//
// # Instances
//
// An [EffectInstance] moves between Inactive, Active, Transitioning and
// Complete. Start is idempotent, Stop always yields Inactive, and Update on
// an idle instance only stages the new configuration. [EffectInstance.TransitionTo]
// cross-fades an emitting instance with a tween.
//
// # Tick and batching
//
// [Engine.Tick] recomputes every emitting instance's color and physics
// acceleration, queues changed snapshots, and applies at most
// [EngineConfig].BatchSize writes per tick. A [FrameSampler] window that
// averages below EvictionThreshold stops the least recently added
// instance.
//
// # Sequences
//
// A [Sequencer] plays an [AnimationSequence] of timed phases over a fixed
// set of instances through a [TimerService]. The engine's built-in
// [ManualTimer] is advanced from Tick. Cancel invalidates the pending timer,
// so no callback fires into a torn-down run. [WelcomeSequence] and
// [MoodSequence] are ready-made sequences.
//
// # Physics
//
// [Wave], [Swirl], [Spiral], [CenterAttraction], [GalaxyPull] and
// [DarkMatterHalo] are pure functions. [PhysicsParams] selects one per
// instance; [Turbulence] adds a perlin-noise field.
//
// # Events
//
// [Engine.SetEventSink] forwards lifecycle, eviction and sequencer events.
// The ecs sub-package publishes them into a Donburi world.
//
// # Debug mode
//
// [Engine.SetDebugMode] logs per-tick counters and timing through the
// engine's logger.
package lumen
