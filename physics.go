package lumen

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
)

// GravitationalConstant is G in SI units. GalaxyPull multiplies it by a
// universe scale so simulation values stay in a usable range.
const GravitationalConstant = 6.674e-11

// Wave returns (cos(t·f)·a, sin(t·f)·a, 0).
func Wave(t, amplitude, frequency float64) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Cos(t*frequency) * amplitude,
		math.Sin(t*frequency) * amplitude,
		0,
	}
}

// Swirl returns (cos(t)·i·r, sin(t)·i·r, 0).
func Swirl(t, intensity, radius float64) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Cos(t) * intensity * radius,
		math.Sin(t) * intensity * radius,
		0,
	}
}

// Spiral is a unit-radius swirl with a downward pull proportional to intensity.
func Spiral(t, intensity, inwardPull float64) mgl64.Vec3 {
	return Swirl(t, intensity, 1).Add(mgl64.Vec3{0, -inwardPull * intensity, 0})
}

// CenterAttraction returns (center − position)·strength.
func CenterAttraction(position, center mgl64.Vec3, strength float64) mgl64.Vec3 {
	return center.Sub(position).Mul(strength)
}

// GalaxyPull is a softened inverse-square attraction toward the origin:
//
//	|a| = G·M·s / (|p|² + ε²)
//
// The softening radius ε bounds the magnitude by G·M·s/ε², so the field has
// no singularity at the origin. At exactly the origin the direction is
// undefined and the zero vector is returned.
func GalaxyPull(position mgl64.Vec3, blackHoleMass, softeningEpsilon, universeScale float64) mgl64.Vec3 {
	r2 := position.Dot(position)
	if r2 == 0 {
		return mgl64.Vec3{}
	}
	mag := GravitationalConstant * blackHoleMass * universeScale / (r2 + softeningEpsilon*softeningEpsilon)
	return position.Mul(-mag / math.Sqrt(r2))
}

// DarkMatterHalo pulls toward the origin with strength/max(|p|, haloRadius).
// Inside the halo radius the magnitude is flat at strength/haloRadius.
func DarkMatterHalo(position mgl64.Vec3, strength, haloRadius float64) mgl64.Vec3 {
	r := position.Len()
	if r == 0 || strength == 0 {
		return mgl64.Vec3{}
	}
	return position.Mul(-strength / (math.Max(r, haloRadius) * r))
}

// GalaxyField combines the black-hole pull and the dark-matter halo term
// selected by p.
func GalaxyField(position mgl64.Vec3, p PhysicsParams) mgl64.Vec3 {
	a := GalaxyPull(position, p.GravityStrength, p.GravityEpsilon, p.UniverseScale)
	if p.HaloStrength != 0 {
		a = a.Add(DarkMatterHalo(position, p.HaloStrength, p.HaloRadius))
	}
	return a
}

// Interaction is the pairwise force on a particle at p from one at q. It
// falls off linearly to zero at radius; positive strength repels.
func Interaction(p, q mgl64.Vec3, strength, radius float64) mgl64.Vec3 {
	d := p.Sub(q)
	dist := d.Len()
	if dist == 0 || dist >= radius {
		return mgl64.Vec3{}
	}
	return d.Mul(strength * (1 - dist/radius) / dist)
}

// FieldKind selects the physics function family applied to an instance.
type FieldKind uint8

const (
	FieldNone       FieldKind = iota // config acceleration only
	FieldWave                        // Wave(t, Amplitude, Frequency)
	FieldSwirl                       // Swirl(t, Intensity, Radius)
	FieldSpiral                      // Spiral(t, Intensity, InwardPull)
	FieldCenter                      // CenterAttraction toward Center
	FieldGalaxy                      // GalaxyPull plus dark-matter halo
	FieldTurbulence                  // perlin turbulence scaled by Intensity
)

var fieldNames = [...]string{"none", "wave", "swirl", "spiral", "center", "galaxy", "turbulence"}

// String returns the lower-case field name used in preset files.
func (k FieldKind) String() string {
	if int(k) < len(fieldNames) {
		return fieldNames[k]
	}
	return "unknown"
}

// ParseFieldKind is the inverse of FieldKind.String.
func ParseFieldKind(s string) (FieldKind, bool) {
	for i, name := range fieldNames {
		if name == s {
			return FieldKind(i), true
		}
	}
	return FieldNone, false
}

// PhysicsParams selects and parameterises the force field that modulates an
// instance's acceleration each tick.
type PhysicsParams struct {
	Field FieldKind

	// Gravity (FieldGalaxy): GravityStrength is the central mass,
	// GravityEpsilon the softening radius.
	GravityStrength float64
	GravityEpsilon  float64
	UniverseScale   float64
	HaloStrength    float64
	HaloRadius      float64

	// CenterAttraction pulls toward Center. Added on top of any field.
	CenterAttraction float64
	Center           mgl64.Vec3

	// Pairwise particle interaction, applied by the simulator.
	ParticleInteraction float64
	InteractionRadius   float64

	// Damping is the fraction of velocity removed per second, applied by the simulator.
	Damping float64

	// Wave, swirl, spiral and turbulence parameters.
	Amplitude  float64
	Frequency  float64
	Intensity  float64
	Radius     float64
	InwardPull float64
}

// Acceleration evaluates the selected field at time t and position. turb is
// only consulted for FieldTurbulence and may be nil otherwise.
func (p PhysicsParams) Acceleration(t float64, position mgl64.Vec3, turb *Turbulence) mgl64.Vec3 {
	var a mgl64.Vec3
	switch p.Field {
	case FieldNone, FieldCenter:
	case FieldWave:
		a = Wave(t, p.Amplitude, p.Frequency)
	case FieldSwirl:
		a = Swirl(t, p.Intensity, p.Radius)
	case FieldSpiral:
		a = Spiral(t, p.Intensity, p.InwardPull)
	case FieldGalaxy:
		a = GalaxyField(position, p)
	case FieldTurbulence:
		if turb != nil {
			a = turb.At(t, position, p.Intensity)
		}
	}
	if p.CenterAttraction != 0 {
		a = a.Add(CenterAttraction(position, p.Center, p.CenterAttraction))
	}
	return a
}

// Turbulence is a perlin-noise vector field. The permutation table is built
// once from the seed; At only reads it, so a Turbulence can be shared.
type Turbulence struct {
	noise *perlin.Perlin
	scale float64
}

// NewTurbulence builds a field with the given seed and spatial frequency
// (noise cells per unit). A non-positive scale defaults to 0.5.
func NewTurbulence(seed int64, scale float64) *Turbulence {
	if scale <= 0 {
		scale = 0.5
	}
	return &Turbulence{
		noise: perlin.NewPerlin(2, 2, 3, seed),
		scale: scale,
	}
}

// At samples the field at position and time, scaled by strength.
func (tb *Turbulence) At(t float64, position mgl64.Vec3, strength float64) mgl64.Vec3 {
	x := position[0] * tb.scale
	y := position[1] * tb.scale
	z := position[2]*tb.scale + t*0.25
	return mgl64.Vec3{
		tb.noise.Noise3D(x, y, z),
		tb.noise.Noise3D(x+31.416, y, z),
		tb.noise.Noise3D(x, y+17.71, z),
	}.Mul(strength)
}
