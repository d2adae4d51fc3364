package lumen

import (
	"github.com/charmbracelet/harmonica"
)

// EnergyFollower smooths a music energy level in [0, 1] with a damped
// spring, so effects breathe with the music instead of jumping between
// analysis frames.
type EnergyFollower struct {
	frequency float64
	damping   float64
	spring    harmonica.Spring
	step      float64

	pos, vel float64
	target   float64
}

// NewEnergyFollower creates a follower with the given angular frequency and
// damping ratio. Non-positive values default to 6 and 1 (critically damped).
func NewEnergyFollower(frequency, damping float64) *EnergyFollower {
	if frequency <= 0 {
		frequency = 6
	}
	if damping <= 0 {
		damping = 1
	}
	return &EnergyFollower{frequency: frequency, damping: damping}
}

// SetTarget sets the level to follow, clamped to [0, 1].
func (f *EnergyFollower) SetTarget(energy float64) {
	f.target = clamp01(energy)
}

// Target returns the level being followed.
func (f *EnergyFollower) Target() float64 {
	return f.target
}

// Value returns the smoothed level.
func (f *EnergyFollower) Value() float64 {
	return clamp01(f.pos)
}

// Snap jumps straight to energy with no motion.
func (f *EnergyFollower) Snap(energy float64) {
	f.target = clamp01(energy)
	f.pos = f.target
	f.vel = 0
}

// Update advances the spring by dt seconds and returns the smoothed level.
func (f *EnergyFollower) Update(dt float64) float64 {
	if dt <= 0 {
		return f.Value()
	}
	if dt != f.step {
		f.spring = harmonica.NewSpring(dt, f.frequency, f.damping)
		f.step = dt
	}
	f.pos, f.vel = f.spring.Update(f.pos, f.vel, f.target)
	return f.Value()
}

// EnergyConfig scales base by a music energy level in [0, 1]: birth rate runs
// from a quarter of the base at silence to 1.75x at full energy, and speed
// from half to 1.5x.
func EnergyConfig(base EffectConfig, energy float64) EffectConfig {
	e := clamp01(energy)
	return base.
		WithBirthRate(base.BirthRate * (0.25 + 1.5*e)).
		WithSpeed(base.Speed * (0.5 + e))
}
