package lumen

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// setupBenchEngine creates an engine with n started galaxy instances, each
// writing to its own Simulator.
func setupBenchEngine(n int) (*Engine, []*Simulator) {
	e := quietEngine(EngineConfig{EvictionThreshold: -1})
	sims := make([]*Simulator, n)
	for i := 0; i < n; i++ {
		sims[i] = NewSimulator(256, rand.New(rand.NewPCG(uint64(i), 1)))
		inst, err := e.Spawn(PresetGalaxy, sims[i])
		if err != nil {
			panic(err)
		}
		inst.SetOffset(SlotOffset(i, n, 3))
		inst.Start()
	}
	return e, sims
}

// --- Tick Benchmarks ---

func BenchmarkTick_100Instances(b *testing.B) {
	e, _ := setupBenchEngine(100)
	e.Tick(0) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Tick(float64(i+1) / 60)
	}
}

func BenchmarkTick_100Instances_Transitioning(b *testing.B) {
	e, _ := setupBenchEngine(100)
	e.Tick(0)
	split, _ := Resolve(PresetGalaxySplit)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if i%60 == 0 {
			for _, id := range e.Active() {
				inst, _ := e.Instance(id)
				_ = inst.TransitionTo(split, 1, nil)
			}
		}
		e.Tick(float64(i+1) / 60)
	}
}

// --- Simulator Benchmarks ---

func BenchmarkSimulator_512Particles(b *testing.B) {
	e, sims := setupBenchEngine(1)
	e.Tick(0)
	sim := sims[0]
	for sim.AliveCount() < 200 {
		sim.Update(1.0 / 60)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sim.Update(1.0 / 60)
	}
}

func BenchmarkSimulator_Interaction(b *testing.B) {
	sim := NewSimulator(256, rand.New(rand.NewPCG(7, 7)))
	cfg, _ := Resolve(PresetFireflies)
	sim.SetEmissionParams(EmissionParams{
		BirthRate: 500,
		Lifetime:  100,
		Speed:     cfg.Speed,
		Bounds:    Cube(50),
		ColorLaw:  cfg.Color,
		Shape:     ShapeDescriptor{Shape: ShapeSphere, Size: mgl64.Vec3{2, 2, 2}},
	})
	sim.SetPhysics(&PhysicsParams{ParticleInteraction: 0.2, InteractionRadius: 0.5, Damping: 0.1}, nil)
	sim.Update(1) // fill the pool

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sim.Update(1.0 / 60)
	}
}

// --- Physics Benchmarks ---

func BenchmarkPhysics_GalaxyField(b *testing.B) {
	p, _ := LookupPreset(PresetGalaxy)
	phys := *p.Physics
	pos := mgl64.Vec3{1, 0.5, 0}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = phys.Acceleration(float64(i)/60, pos, nil)
	}
}

func BenchmarkPhysics_Turbulence(b *testing.B) {
	turb := NewTurbulence(1, DefaultNoiseScale)
	phys := PhysicsParams{Field: FieldTurbulence, Intensity: 1}
	pos := mgl64.Vec3{1, 0.5, 0}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = phys.Acceleration(float64(i)/60, pos, turb)
	}
}
