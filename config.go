package lumen

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// ColorLaw describes how particle color is chosen. The set of laws is closed:
// ConstantColor, EvolvingColor and MultipleColors are the only implementations.
type ColorLaw interface {
	colorLaw()
}

// ConstantColor gives every particle the same color for its whole life.
type ConstantColor struct {
	Color Color
}

// EvolvingColor interpolates from Start to End over each particle's lifetime
// fraction (age / lifetime), not over wall-clock time.
type EvolvingColor struct {
	Start, End Color
}

// MultipleColors picks one of Colors uniformly at random per particle.
// The slice is shared between copies of a configuration and must not be mutated.
type MultipleColors struct {
	Colors []Color
}

func (ConstantColor) colorLaw()  {}
func (EvolvingColor) colorLaw()  {}
func (MultipleColors) colorLaw() {}

// SampleColor evaluates law at the given lifetime fraction. rng is only used
// by MultipleColors; a nil rng falls back to the global source. A nil law or
// an empty palette yields ColorWhite.
func SampleColor(law ColorLaw, fraction float64, rng *rand.Rand) Color {
	switch l := law.(type) {
	case ConstantColor:
		return l.Color
	case EvolvingColor:
		return l.Start.Lerp(l.End, clamp01(fraction))
	case MultipleColors:
		if len(l.Colors) == 0 {
			return ColorWhite
		}
		var i int
		if rng != nil {
			i = rng.IntN(len(l.Colors))
		} else {
			i = rand.IntN(len(l.Colors))
		}
		return l.Colors[i]
	default:
		return ColorWhite
	}
}

// EffectConfig describes everything an emitter does. It is a value: instances
// replace their configuration wholesale and never mutate it in place.
type EffectConfig struct {
	// Shape is the volume particles are born in.
	Shape EmitterShape
	// EmitterSize is the radius (sphere) or extent (plane) of the shape.
	EmitterSize mgl64.Vec3
	// BirthRate is the number of particles spawned per second while active.
	BirthRate float64
	// Color selects the color law.
	Color ColorLaw
	// Bounds culls particles that leave the box.
	Bounds AABB
	// Acceleration is the constant acceleration applied to every particle.
	Acceleration mgl64.Vec3
	// Speed is the initial particle speed in units per second.
	Speed float64
	// Lifetime is the particle lifetime in seconds.
	Lifetime float64
}

// WithBirthRate returns a copy of c with the birth rate replaced.
func (c EffectConfig) WithBirthRate(rate float64) EffectConfig {
	c.BirthRate = rate
	return c
}

// WithColor returns a copy of c with the color law replaced.
func (c EffectConfig) WithColor(law ColorLaw) EffectConfig {
	c.Color = law
	return c
}

// WithAcceleration returns a copy of c with the acceleration replaced.
func (c EffectConfig) WithAcceleration(a mgl64.Vec3) EffectConfig {
	c.Acceleration = a
	return c
}

// WithSpeed returns a copy of c with the speed replaced.
func (c EffectConfig) WithSpeed(speed float64) EffectConfig {
	c.Speed = speed
	return c
}

// WithLifetime returns a copy of c with the lifetime replaced.
func (c EffectConfig) WithLifetime(seconds float64) EffectConfig {
	c.Lifetime = seconds
	return c
}

// Validate checks the configuration invariants. It returns a *ConfigError
// for the first violated rule, in the order lifetime, birth rate, bounds.
func (c EffectConfig) Validate() error {
	if !(c.Lifetime > 0) {
		return &ConfigError{Kind: InvalidLifetime, Value: c.Lifetime}
	}
	if !(c.BirthRate >= 0) {
		return &ConfigError{Kind: NegativeRate, Value: c.BirthRate}
	}
	if !c.Bounds.Valid() {
		return &ConfigError{Kind: InvalidBounds}
	}
	return nil
}

// Validate is a function form of EffectConfig.Validate.
func Validate(c EffectConfig) error {
	return c.Validate()
}

// ConfigErrorKind identifies which configuration invariant failed.
type ConfigErrorKind uint8

const (
	InvalidLifetime ConfigErrorKind = iota + 1 // lifetime is not > 0
	InvalidBounds                              // bounds min exceeds max on some axis
	NegativeRate                               // birth rate is negative
)

// String returns the kind name.
func (k ConfigErrorKind) String() string {
	switch k {
	case InvalidLifetime:
		return "invalid lifetime"
	case InvalidBounds:
		return "invalid bounds"
	case NegativeRate:
		return "negative birth rate"
	default:
		return "unknown config error"
	}
}

// ConfigError reports a rejected EffectConfig. Callers keep their previous
// configuration when they receive one.
type ConfigError struct {
	Kind  ConfigErrorKind
	Value float64
}

func (e *ConfigError) Error() string {
	if e.Kind == InvalidBounds {
		return "lumen: " + e.Kind.String()
	}
	return fmt.Sprintf("lumen: %s (%g)", e.Kind, e.Value)
}

// Is matches any *ConfigError of the same kind, so errors.Is works against
// the Err* sentinels.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	return ok && t.Kind == e.Kind
}

// Sentinel errors. Use errors.Is to test for them.
var (
	ErrInvalidLifetime = &ConfigError{Kind: InvalidLifetime}
	ErrInvalidBounds   = &ConfigError{Kind: InvalidBounds}
	ErrNegativeRate    = &ConfigError{Kind: NegativeRate}

	// ErrRegistryMiss is returned when a preset or effect name is unknown.
	// Callers are expected to fall back to a default configuration.
	ErrRegistryMiss = errors.New("lumen: unknown effect")

	// ErrSequencerRunning is returned by Sequencer.Start while a run is in
	// progress. The call is otherwise a no-op.
	ErrSequencerRunning = errors.New("lumen: sequencer already running")

	// ErrInvalidSequence is returned for sequences that cannot be played.
	ErrInvalidSequence = errors.New("lumen: invalid sequence")

	// ErrStaleInstance is returned for instance IDs that were released.
	ErrStaleInstance = errors.New("lumen: stale instance id")
)

// isFinite reports whether v is neither NaN nor infinite.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
