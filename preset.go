package lumen

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Built-in preset names.
const (
	PresetFireflies   = "fireflies"
	PresetGalaxy      = "galaxy"
	PresetGalaxySplit = "galaxySplit"
	PresetSparkles    = "sparkles"
	PresetSmoke       = "smoke"
	PresetRain        = "rain"
	PresetSnow        = "snow"
	PresetEmbers      = "embers"
	PresetAurora      = "aurora"
	PresetRainbow     = "rainbow"
)

// Preset is a named configuration with optional physics.
type Preset struct {
	Name    string
	Config  EffectConfig
	Physics *PhysicsParams

	// generate, when set, produces a fresh configuration on every
	// resolution instead of returning Config.
	generate func(rng *rand.Rand) EffectConfig
}

// Resolve returns the configuration. Randomised presets draw from rng, or
// from the global source when rng is nil.
func (p Preset) Resolve(rng *rand.Rand) EffectConfig {
	if p.generate != nil {
		return p.generate(rng)
	}
	return p.Config
}

// Randomized reports whether every resolution yields a new configuration.
func (p Preset) Randomized() bool {
	return p.generate != nil
}

var galaxyPhysics = PhysicsParams{
	Field:           FieldGalaxy,
	GravityStrength: 4e10,
	GravityEpsilon:  0.5,
	UniverseScale:   1,
	HaloStrength:    0.8,
	HaloRadius:      1.5,
	Damping:         0.05,
}

var builtinPresets = []Preset{
	{
		Name: PresetFireflies,
		Config: EffectConfig{
			Shape:       ShapeSphere,
			EmitterSize: mgl64.Vec3{3, 2, 1},
			BirthRate:   6,
			Color: EvolvingColor{
				Start: Color{R: 1, G: 0.95, B: 0.55, A: 1},
				End:   Color{R: 0.55, G: 1, B: 0.45, A: 0},
			},
			Bounds:       Cube(5),
			Acceleration: mgl64.Vec3{0, 0.02, 0},
			Speed:        0.15,
			Lifetime:     6,
		},
		Physics: &PhysicsParams{Field: FieldWave, Amplitude: 0.05, Frequency: 0.8, Damping: 0.1},
	},
	{
		Name: PresetGalaxy,
		Config: EffectConfig{
			Shape:       ShapeSphere,
			EmitterSize: mgl64.Vec3{2.5, 2.5, 0.2},
			BirthRate:   120,
			Color: EvolvingColor{
				Start: Color{R: 0.75, G: 0.6, B: 1, A: 1},
				End:   Color{R: 0.2, G: 0.3, B: 0.9, A: 0},
			},
			Bounds:   Cube(6),
			Speed:    0.4,
			Lifetime: 5,
		},
		Physics: &galaxyPhysics,
	},
	{
		Name: PresetGalaxySplit,
		Config: EffectConfig{
			Shape:       ShapeSphere,
			EmitterSize: mgl64.Vec3{1.2, 1.2, 0.1},
			BirthRate:   70,
			Color: EvolvingColor{
				Start: Color{R: 1, G: 0.6, B: 0.85, A: 1},
				End:   Color{R: 0.45, G: 0.25, B: 0.9, A: 0},
			},
			Bounds:   Cube(6),
			Speed:    0.35,
			Lifetime: 4,
		},
		Physics: &galaxyPhysics,
	},
	{
		Name: PresetSparkles,
		Config: EffectConfig{
			Shape:     ShapePoint,
			BirthRate: 60,
			Color: MultipleColors{Colors: []Color{
				{R: 1, G: 0.85, B: 0.3, A: 1},
				{R: 1, G: 1, B: 1, A: 1},
				{R: 0.7, G: 0.85, B: 1, A: 1},
			}},
			Bounds:       Cube(4),
			Acceleration: mgl64.Vec3{0, -0.3, 0},
			Speed:        1.2,
			Lifetime:     1.2,
		},
	},
	{
		Name: PresetSmoke,
		Config: EffectConfig{
			Shape:       ShapePlane,
			EmitterSize: mgl64.Vec3{1, 0, 0.5},
			BirthRate:   18,
			Color: EvolvingColor{
				Start: Color{R: 0.5, G: 0.5, B: 0.52, A: 0.35},
				End:   Color{R: 0.25, G: 0.25, B: 0.28, A: 0},
			},
			Bounds:       Cube(5),
			Acceleration: mgl64.Vec3{0, 0.25, 0},
			Speed:        0.2,
			Lifetime:     4,
		},
		Physics: &PhysicsParams{Field: FieldTurbulence, Intensity: 0.4, Damping: 0.2},
	},
	{
		Name: PresetRain,
		Config: EffectConfig{
			Shape:        ShapePlane,
			EmitterSize:  mgl64.Vec3{6, 0, 2},
			BirthRate:    200,
			Color:        ConstantColor{Color: Color{R: 0.6, G: 0.75, B: 1, A: 0.7}},
			Bounds:       AABB{Min: mgl64.Vec3{-6, -6, -3}, Max: mgl64.Vec3{6, 6, 3}},
			Acceleration: mgl64.Vec3{0, -9.8, 0},
			Speed:        2,
			Lifetime:     1,
		},
	},
	{
		Name: PresetSnow,
		Config: EffectConfig{
			Shape:        ShapePlane,
			EmitterSize:  mgl64.Vec3{6, 0, 2},
			BirthRate:    40,
			Color:        ConstantColor{Color: Color{R: 1, G: 1, B: 1, A: 0.9}},
			Bounds:       AABB{Min: mgl64.Vec3{-6, -6, -3}, Max: mgl64.Vec3{6, 6, 3}},
			Acceleration: mgl64.Vec3{0, -0.3, 0},
			Speed:        0.1,
			Lifetime:     8,
		},
		Physics: &PhysicsParams{Field: FieldWave, Amplitude: 0.2, Frequency: 0.7},
	},
	{
		Name: PresetEmbers,
		Config: EffectConfig{
			Shape:     ShapePoint,
			BirthRate: 25,
			Color: EvolvingColor{
				Start: Color{R: 1, G: 0.6, B: 0.1, A: 1},
				End:   Color{R: 0.8, G: 0.1, B: 0, A: 0},
			},
			Bounds:       Cube(4),
			Acceleration: mgl64.Vec3{0, 0.6, 0},
			Speed:        0.5,
			Lifetime:     2.5,
		},
		Physics: &PhysicsParams{Field: FieldSwirl, Intensity: 0.3, Radius: 0.5},
	},
	{
		Name: PresetAurora,
		Config: EffectConfig{
			Shape:       ShapePlane,
			EmitterSize: mgl64.Vec3{5, 0, 0.5},
			BirthRate:   50,
			Color: EvolvingColor{
				Start: Color{R: 0.3, G: 1, B: 0.6, A: 0.8},
				End:   Color{R: 0.6, G: 0.3, B: 1, A: 0},
			},
			Bounds:       Cube(6),
			Acceleration: mgl64.Vec3{0, 0.1, 0},
			Speed:        0.05,
			Lifetime:     5,
		},
		Physics: &PhysicsParams{Field: FieldWave, Amplitude: 0.3, Frequency: 0.4},
	},
	{
		Name:     PresetRainbow,
		generate: RainbowConfig,
	},
}

var presetIndex = func() map[string]int {
	m := make(map[string]int, len(builtinPresets))
	for i, p := range builtinPresets {
		m[p.Name] = i
	}
	return m
}()

// LookupPreset returns the built-in preset with the given name.
func LookupPreset(name string) (Preset, bool) {
	i, ok := presetIndex[name]
	if !ok {
		return Preset{}, false
	}
	return builtinPresets[i], true
}

// Resolve returns the configuration of a built-in preset. Unknown names fail
// with an error wrapping ErrRegistryMiss.
func Resolve(name string) (EffectConfig, error) {
	p, ok := LookupPreset(name)
	if !ok {
		return EffectConfig{}, fmt.Errorf("resolve %q: %w", name, ErrRegistryMiss)
	}
	return p.Resolve(nil), nil
}

// PresetNames returns the built-in preset names in table order.
func PresetNames() []string {
	names := make([]string, len(builtinPresets))
	for i, p := range builtinPresets {
		names[i] = p.Name
	}
	return names
}

// RainbowConfig is the sparkle burst with a freshly drawn hue pair. The end
// hue is 90 to 270 degrees away from the start so the pair always contrasts.
func RainbowConfig(rng *rand.Rand) EffectConfig {
	next := rand.Float64
	if rng != nil {
		next = rng.Float64
	}
	h1 := next() * 360
	h2 := h1 + 90 + next()*180
	if h2 >= 360 {
		h2 -= 360
	}
	return EffectConfig{
		Shape:       ShapeSphere,
		EmitterSize: mgl64.Vec3{0.3, 0.3, 0.3},
		BirthRate:   80,
		Color: EvolvingColor{
			Start: hsvColor(h1, 0.85, 1, 1),
			End:   hsvColor(h2, 0.9, 1, 0),
		},
		Bounds:       Cube(4),
		Acceleration: mgl64.Vec3{0, -0.2, 0},
		Speed:        1,
		Lifetime:     1.8,
	}
}

// hsvColor converts a hue in degrees plus saturation and value to a Color.
func hsvColor(h, s, v, alpha float64) Color {
	c := colorful.Hsv(h, s, v).Clamped()
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}
}
