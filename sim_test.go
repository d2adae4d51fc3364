package lumen

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func simParams() EmissionParams {
	return EmissionParams{
		BirthRate: 100,
		Color:     ColorWhite,
		Speed:     0,
		Shape:     ShapeDescriptor{Shape: ShapePoint},
		Lifetime:  1,
		Bounds:    Cube(10),
		ColorLaw:  ConstantColor{Color: ColorWhite},
	}
}

func TestSimulatorPool(t *testing.T) {
	s := NewSimulator(0, nil)
	if len(s.particles) != DefaultMaxParticles {
		t.Errorf("pool = %d, want %d", len(s.particles), DefaultMaxParticles)
	}
	s = NewSimulator(5, nil)
	s.SetEmissionParams(simParams())
	s.Update(1)
	if s.AliveCount() != 5 {
		t.Errorf("alive = %d, want pool size 5", s.AliveCount())
	}
}

func TestSimulatorSpawnRate(t *testing.T) {
	s := NewSimulator(1000, rand.New(rand.NewPCG(1, 1)))
	s.SetEmissionParams(simParams())
	s.Update(0.1)
	if s.AliveCount() != 10 {
		t.Errorf("alive = %d, want 10", s.AliveCount())
	}
	if !s.Emitting() {
		t.Error("Emitting should be true")
	}
}

func TestSimulatorStopsWhenRateZero(t *testing.T) {
	s := NewSimulator(100, nil)
	p := simParams()
	s.SetEmissionParams(p)
	s.Update(0.1)
	p.BirthRate = 0
	s.SetEmissionParams(p)
	n := s.AliveCount()
	s.Update(0.1)
	if s.AliveCount() != n {
		t.Errorf("alive = %d, want %d (no new particles)", s.AliveCount(), n)
	}
	s.Update(1)
	if s.AliveCount() != 0 {
		t.Errorf("alive = %d, want 0 after lifetime", s.AliveCount())
	}
}

func TestSimulatorAccelerationAndBounds(t *testing.T) {
	s := NewSimulator(10, nil)
	p := simParams()
	p.BirthRate = 1
	p.Lifetime = 100
	p.Acceleration = mgl64.Vec3{0, -10, 0}
	p.Bounds = AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}
	s.SetEmissionParams(p)
	s.Update(1) // spawns one at the origin
	if s.AliveCount() != 1 {
		t.Fatalf("alive = %d, want 1", s.AliveCount())
	}
	p.BirthRate = 0
	s.SetEmissionParams(p)
	s.Update(0.1)
	pt := s.Particles()[0]
	if pt.Velocity[1] >= 0 || pt.Position[1] >= 0 {
		t.Errorf("particle = %+v, want falling", pt)
	}
	for i := 0; i < 20; i++ {
		s.Update(0.1)
	}
	if s.AliveCount() != 0 {
		t.Errorf("alive = %d, want culled outside bounds", s.AliveCount())
	}
}

func TestSimulatorOffsetSpawn(t *testing.T) {
	s := NewSimulator(10, nil)
	p := simParams()
	p.BirthRate = 1
	p.Offset = mgl64.Vec3{3, 0, 0}
	s.SetEmissionParams(p)
	s.Update(1)
	if got := s.Particles()[0].Position; got != (mgl64.Vec3{3, 0, 0}) {
		t.Errorf("position = %v, want emitter offset", got)
	}
}

func TestSimulatorShapes(t *testing.T) {
	s := NewSimulator(10, rand.New(rand.NewPCG(5, 6)))
	for i := 0; i < 200; i++ {
		v := s.shapePoint(ShapeDescriptor{Shape: ShapeSphere, Size: mgl64.Vec3{2, 1, 1}})
		if (v[0]/2)*(v[0]/2)+v[1]*v[1]+v[2]*v[2] > 1+1e-9 {
			t.Fatalf("sphere point %v outside ellipsoid", v)
		}
		v = s.shapePoint(ShapeDescriptor{Shape: ShapePlane, Size: mgl64.Vec3{2, 5, 1}})
		if v[1] != 0 || v[0] < -2 || v[0] > 2 || v[2] < -1 || v[2] > 1 {
			t.Fatalf("plane point %v outside rectangle", v)
		}
	}
	if v := s.shapePoint(ShapeDescriptor{Shape: ShapePoint, Size: mgl64.Vec3{9, 9, 9}}); v != (mgl64.Vec3{}) {
		t.Errorf("point shape = %v, want origin", v)
	}
}

func TestSimulatorEvolvingColor(t *testing.T) {
	s := NewSimulator(10, nil)
	p := simParams()
	p.BirthRate = 1
	p.Lifetime = 2
	p.ColorLaw = EvolvingColor{Start: Color{R: 1, A: 1}, End: Color{B: 1, A: 1}}
	s.SetEmissionParams(p)
	s.Update(1)
	p.BirthRate = 0
	s.SetEmissionParams(p)
	s.Update(1)
	c := s.Particles()[0].Color
	if c.R != 0.5 || c.B != 0.5 {
		t.Errorf("color at half life = %v, want halfway", c)
	}
}

func TestSimulatorPaletteFixedPerParticle(t *testing.T) {
	s := NewSimulator(50, rand.New(rand.NewPCG(2, 3)))
	p := simParams()
	p.Lifetime = 10
	red, blue := Color{R: 1, A: 1}, Color{B: 1, A: 1}
	p.ColorLaw = MultipleColors{Colors: []Color{red, blue}}
	s.SetEmissionParams(p)
	s.Update(0.3)
	first := make([]Color, s.AliveCount())
	for i, pt := range s.Particles() {
		first[i] = pt.Color
		if pt.Color != red && pt.Color != blue {
			t.Fatalf("color %v not in palette", pt.Color)
		}
	}
	p.BirthRate = 0
	s.SetEmissionParams(p)
	s.Update(0.1)
	for i, pt := range s.Particles() {
		if pt.Color != first[i] {
			t.Errorf("particle %d changed color %v -> %v", i, first[i], pt.Color)
		}
	}
}

func TestSimulatorDampingAndInteraction(t *testing.T) {
	s := NewSimulator(10, nil)
	s.SetPhysics(&PhysicsParams{Damping: 5, ParticleInteraction: 1, InteractionRadius: 1}, nil)
	if s.physics.Damping != 1 {
		t.Errorf("damping = %v, want clamped to 1", s.physics.Damping)
	}
	p := simParams()
	p.BirthRate = 0
	s.SetEmissionParams(p)
	s.particles[0] = Particle{Position: mgl64.Vec3{0.1, 0, 0}, Velocity: mgl64.Vec3{1, 0, 0}, Lifetime: 10}
	s.particles[1] = Particle{Position: mgl64.Vec3{-0.1, 0, 0}, Lifetime: 10}
	s.alive = 2
	s.SetPhysics(&PhysicsParams{Damping: 0.5, ParticleInteraction: 1, InteractionRadius: 1}, nil)
	s.Update(0.1)
	a, b := s.Particles()[0], s.Particles()[1]
	if a.Velocity[0] <= 0 || b.Velocity[0] >= 0 {
		t.Errorf("velocities %v / %v, want pushed apart", a.Velocity, b.Velocity)
	}
	if a.Velocity[0] >= 1+0.8*0.1 {
		t.Errorf("velocity %v not damped", a.Velocity)
	}
}

func TestSimulatorAsEngineTarget(t *testing.T) {
	e := quietEngine(EngineConfig{EvictionThreshold: -1})
	sim := NewSimulator(256, rand.New(rand.NewPCG(1, 2)))
	inst, err := e.Spawn(PresetSparkles, sim)
	if err != nil {
		t.Fatal(err)
	}
	e.Tick(0)
	inst.Start()
	for i := 1; i <= 10; i++ {
		e.Tick(float64(i) / 60)
		sim.Update(1.0 / 60)
	}
	if sim.AliveCount() == 0 {
		t.Error("simulator spawned nothing from engine writes")
	}
	inst.Stop()
	if sim.Emitting() {
		t.Error("simulator still emitting after Stop")
	}
}

func TestSimulatorReset(t *testing.T) {
	s := NewSimulator(10, nil)
	s.SetEmissionParams(simParams())
	s.Update(0.05)
	s.Reset()
	if s.AliveCount() != 0 {
		t.Errorf("alive = %d, want 0", s.AliveCount())
	}
	if _, ok := s.Params(); !ok {
		t.Error("Reset should keep params")
	}
}
