package lumen

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMaxParticles is the simulator pool size used when none is given.
const DefaultMaxParticles = 512

// Particle is one simulated particle in world space.
type Particle struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Color    Color
	Age      float64
	Lifetime float64

	// pick is the palette index drawn at birth for MultipleColors.
	pick int
}

// Simulator is a RenderTarget that runs a CPU particle simulation from the
// emission parameters it receives. It is the reference target used by the
// example hosts and by tests; real renderers usually simulate on their own.
//
// Physics attached to the instance arrives as a uniform acceleration
// evaluated at the emitter. Physics attached to the simulator with
// SetPhysics is evaluated per particle and also supplies damping and
// pairwise interaction. Attach a field to one side only.
type Simulator struct {
	params    EmissionParams
	hasParams bool

	particles []Particle
	alive     int
	emitAccum float64
	time      float64

	physics *PhysicsParams
	turb    *Turbulence
	rng     *rand.Rand
	// forces is scratch space for pairwise interaction.
	forces []mgl64.Vec3
}

// NewSimulator creates a simulator with a preallocated pool of maxParticles.
// New particles are dropped while the pool is full. rng may be nil to use the
// global source.
func NewSimulator(maxParticles int, rng *rand.Rand) *Simulator {
	if maxParticles <= 0 {
		maxParticles = DefaultMaxParticles
	}
	return &Simulator{
		particles: make([]Particle, maxParticles),
		rng:       rng,
	}
}

// SetEmissionParams implements RenderTarget.
func (s *Simulator) SetEmissionParams(p EmissionParams) {
	s.params = p
	s.hasParams = true
}

// Params returns the most recently received emission parameters.
func (s *Simulator) Params() (EmissionParams, bool) {
	return s.params, s.hasParams
}

// SetPhysics attaches a per-particle field, or removes it when p is nil. turb
// is only needed for FieldTurbulence.
func (s *Simulator) SetPhysics(p *PhysicsParams, turb *Turbulence) {
	if p == nil {
		s.physics = nil
		s.turb = nil
		return
	}
	cp := *p
	cp.Damping = clamp01(cp.Damping)
	s.physics = &cp
	s.turb = turb
}

// Emitting reports whether the last parameters had a positive birth rate.
func (s *Simulator) Emitting() bool {
	return s.hasParams && s.params.BirthRate > 0
}

// AliveCount returns the number of live particles.
func (s *Simulator) AliveCount() int {
	return s.alive
}

// Particles returns the live particles. The slice aliases the pool and is
// only valid until the next Update or Reset.
func (s *Simulator) Particles() []Particle {
	return s.particles[:s.alive]
}

// Reset kills every particle. The emission parameters are kept.
func (s *Simulator) Reset() {
	s.alive = 0
	s.emitAccum = 0
}

// Update advances the simulation by dt seconds.
func (s *Simulator) Update(dt float64) {
	if dt <= 0 {
		return
	}
	s.time += dt
	p := &s.params

	s.forces = s.forces[:0]
	if s.physics != nil && s.physics.ParticleInteraction != 0 && s.physics.InteractionRadius > 0 {
		s.accumulateInteraction()
	}

	drag := 1.0
	if s.physics != nil && s.physics.Damping > 0 {
		drag = math.Max(0, 1-s.physics.Damping*dt)
	}

	// Update existing particles, swap-remove dead ones.
	i := 0
	for i < s.alive {
		pt := &s.particles[i]
		pt.Age += dt
		if pt.Age >= pt.Lifetime {
			s.kill(i)
			continue
		}

		a := p.Acceleration
		if s.physics != nil {
			a = a.Add(s.physics.Acceleration(s.time, pt.Position.Sub(p.Offset), s.turb))
			if i < len(s.forces) {
				a = a.Add(s.forces[i])
			}
		}
		pt.Velocity = pt.Velocity.Add(a.Mul(dt)).Mul(drag)
		pt.Position = pt.Position.Add(pt.Velocity.Mul(dt))

		if !p.Bounds.Contains(pt.Position.Sub(p.Offset)) {
			s.kill(i)
			continue
		}
		pt.Color = s.particleColor(pt)
		i++
	}

	// Emit new particles.
	if p.BirthRate > 0 && p.Lifetime > 0 {
		s.emitAccum += p.BirthRate * dt
		for s.emitAccum >= 1.0 {
			s.emitAccum -= 1.0
			if s.alive < len(s.particles) {
				s.spawn()
			}
		}
	} else {
		s.emitAccum = 0
	}
}

// accumulateInteraction fills s.forces with the pairwise force on every live
// particle. Quadratic in the live count; pools are small.
func (s *Simulator) accumulateInteraction() {
	if cap(s.forces) < s.alive {
		s.forces = make([]mgl64.Vec3, len(s.particles))
	}
	s.forces = s.forces[:s.alive]
	for i := range s.forces {
		s.forces[i] = mgl64.Vec3{}
	}
	str, rad := s.physics.ParticleInteraction, s.physics.InteractionRadius
	for i := 0; i < s.alive; i++ {
		for j := i + 1; j < s.alive; j++ {
			f := Interaction(s.particles[i].Position, s.particles[j].Position, str, rad)
			s.forces[i] = s.forces[i].Add(f)
			s.forces[j] = s.forces[j].Sub(f)
		}
	}
}

// kill swap-removes particle i, keeping the force scratch aligned.
func (s *Simulator) kill(i int) {
	s.alive--
	s.particles[i] = s.particles[s.alive]
	if i < len(s.forces) && s.alive < len(s.forces) {
		s.forces[i] = s.forces[s.alive]
	}
}

// spawn initializes the particle at slot s.alive and increments alive.
func (s *Simulator) spawn() {
	p := &s.params
	pt := &s.particles[s.alive]
	pt.Position = p.Offset.Add(s.shapePoint(p.Shape))
	pt.Velocity = s.direction().Mul(p.Speed)
	pt.Age = 0
	pt.Lifetime = p.Lifetime
	pt.pick = -1
	if m, ok := p.ColorLaw.(MultipleColors); ok && len(m.Colors) > 0 {
		pt.pick = s.intN(len(m.Colors))
	}
	pt.Color = s.particleColor(pt)
	s.alive++
}

// particleColor samples the color law at the particle's lifetime fraction.
// Without a law the instance-level color is used.
func (s *Simulator) particleColor(pt *Particle) Color {
	law := s.params.ColorLaw
	if law == nil {
		return s.params.Color
	}
	if m, ok := law.(MultipleColors); ok {
		if pt.pick >= 0 && pt.pick < len(m.Colors) {
			return m.Colors[pt.pick]
		}
		return ColorWhite
	}
	return SampleColor(law, pt.Age/pt.Lifetime, nil)
}

// shapePoint returns a random birth position relative to the emitter.
func (s *Simulator) shapePoint(d ShapeDescriptor) mgl64.Vec3 {
	switch d.Shape {
	case ShapeSphere:
		// Rejection-sample the unit ball, then stretch to the ellipsoid.
		for {
			v := mgl64.Vec3{s.float()*2 - 1, s.float()*2 - 1, s.float()*2 - 1}
			if v.Dot(v) <= 1 {
				return mgl64.Vec3{v[0] * d.Size[0], v[1] * d.Size[1], v[2] * d.Size[2]}
			}
		}
	case ShapePlane:
		return mgl64.Vec3{
			(s.float()*2 - 1) * d.Size[0],
			0,
			(s.float()*2 - 1) * d.Size[2],
		}
	default:
		return mgl64.Vec3{}
	}
}

// direction returns a uniformly distributed unit vector.
func (s *Simulator) direction() mgl64.Vec3 {
	z := s.float()*2 - 1
	phi := s.float() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return mgl64.Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

func (s *Simulator) float() float64 {
	if s.rng != nil {
		return s.rng.Float64()
	}
	return rand.Float64()
}

func (s *Simulator) intN(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}
