package lumen

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

// Welcome phase names.
const (
	PhaseAwaken  = "awaken"
	PhaseGather  = "gather"
	PhaseGalaxy  = "galaxy"
	PhaseSplit   = "split"
	PhaseSparkle = "sparkle"
	PhaseFade    = "fade"
)

// SlotOffset places slot i of n evenly on a ring of the given radius in the
// XY plane, starting at the top. A single slot sits at the origin.
func SlotOffset(i, n int, radius float64) mgl64.Vec3 {
	if n <= 1 {
		return mgl64.Vec3{}
	}
	a := math.Pi/2 - 2*math.Pi*float64(i)/float64(n)
	return mgl64.Vec3{math.Cos(a) * radius, math.Sin(a) * radius, 0}
}

// WelcomeSequence builds the welcome animation over slots instances: faint
// fireflies wake on a wide ring, drift together, collapse into a single
// galaxy, split into one galaxy per slot, burst into rainbow sparkles and
// fade out. The rainbow hues are drawn from rng (nil uses the global source)
// when the sparkle phase starts.
func WelcomeSequence(slots int, rng *rand.Rand) AnimationSequence {
	if slots < 1 {
		slots = 1
	}
	must := func(name string) EffectConfig {
		cfg, err := Resolve(name)
		if err != nil {
			panic(err) // built-in preset names
		}
		return cfg
	}
	fireflies := must(PresetFireflies)
	galaxy := must(PresetGalaxy)
	split := must(PresetGalaxySplit)
	share := 1 / float64(slots)

	ring := func(radius float64) func(int) mgl64.Vec3 {
		return func(i int) mgl64.Vec3 { return SlotOffset(i, slots, radius) }
	}

	return AnimationSequence{
		Name: "welcome",
		Phases: []AnimationPhase{
			{
				Name:     PhaseAwaken,
				Duration: 2,
				Assign: func(int) EffectConfig {
					return fireflies.WithBirthRate(fireflies.BirthRate * 0.5)
				},
				Offset: ring(3),
			},
			{
				Name:     PhaseGather,
				Duration: 2,
				Assign:   func(int) EffectConfig { return fireflies },
				Offset:   ring(1),
				Blend:    1.5,
				Easing:   ease.InOutSine,
			},
			{
				Name:     PhaseGalaxy,
				Duration: 3,
				Assign: func(int) EffectConfig {
					return galaxy.WithBirthRate(galaxy.BirthRate * share)
				},
				Offset: ring(0),
				Blend:  1,
				Easing: ease.OutCubic,
			},
			{
				Name:     PhaseSplit,
				Duration: 2.5,
				Assign:   func(int) EffectConfig { return split },
				Offset:   ring(2),
				Blend:    1.5,
				Easing:   ease.OutBack,
			},
			{
				Name:     PhaseSparkle,
				Duration: 1.5,
				Assign:   func(int) EffectConfig { return RainbowConfig(rng) },
			},
			{
				Name:     PhaseFade,
				Duration: 1.5,
				Assign: func(int) EffectConfig {
					return split.WithBirthRate(0)
				},
				Blend:  1.2,
				Easing: ease.InQuad,
				Finish: FinishComplete,
			},
		},
	}
}
