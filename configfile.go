package lumen

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Engine defaults.
const (
	DefaultBatchSize         = 10
	DefaultEvictionThreshold = 30.0
	DefaultNoiseScale        = 0.5
)

// EngineConfig holds the scheduler tunables. Zero fields take their defaults
// when passed to NewEngine.
type EngineConfig struct {
	// BatchSize is the maximum number of render-target writes per tick.
	BatchSize int `yaml:"batchSize"`
	// EvictionThreshold is the average frame rate (Hz) below which the
	// oldest active instance is stopped. Negative disables eviction.
	EvictionThreshold float64 `yaml:"evictionThreshold"`
	// SampleCapacity is the frame sampler window length.
	SampleCapacity int `yaml:"sampleCapacity"`
	// NoiseSeed and NoiseScale parameterise the shared turbulence field.
	NoiseSeed  int64   `yaml:"noiseSeed"`
	NoiseScale float64 `yaml:"noiseScale"`
	// Debug enables per-tick stats logging.
	Debug bool `yaml:"debug"`
}

// DefaultEngineConfig returns the configuration NewEngine uses for zero fields.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BatchSize:         DefaultBatchSize,
		EvictionThreshold: DefaultEvictionThreshold,
		SampleCapacity:    DefaultSampleCapacity,
		NoiseScale:        DefaultNoiseScale,
	}
}

// withDefaults fills zero fields from DefaultEngineConfig.
func (c EngineConfig) withDefaults() EngineConfig {
	d := DefaultEngineConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.EvictionThreshold == 0 {
		c.EvictionThreshold = d.EvictionThreshold
	}
	if c.SampleCapacity <= 0 {
		c.SampleCapacity = d.SampleCapacity
	}
	if c.NoiseScale <= 0 {
		c.NoiseScale = d.NoiseScale
	}
	return c
}

// Validate rejects values that cannot be defaulted sensibly.
func (c EngineConfig) Validate() error {
	if c.BatchSize < 0 {
		return fmt.Errorf("batchSize must not be negative, got %d", c.BatchSize)
	}
	if c.SampleCapacity < 0 {
		return fmt.Errorf("sampleCapacity must not be negative, got %d", c.SampleCapacity)
	}
	if !isFinite(c.EvictionThreshold) {
		return fmt.Errorf("evictionThreshold must be finite, got %g", c.EvictionThreshold)
	}
	if !isFinite(c.NoiseScale) || c.NoiseScale < 0 {
		return fmt.Errorf("noiseScale must be a non-negative number, got %g", c.NoiseScale)
	}
	return nil
}

// LoadEngineConfig reads an EngineConfig from a YAML file. Missing fields
// take their defaults.
func LoadEngineConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("read engine config %s: %w", path, err)
	}
	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("parse engine config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, fmt.Errorf("invalid engine config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

// presetFile is the YAML document read by LoadPresets.
type presetFile struct {
	Effects []presetEntry `yaml:"effects"`
}

type presetEntry struct {
	Name         string        `yaml:"name"`
	Shape        string        `yaml:"shape"`
	EmitterSize  []float64     `yaml:"emitterSize"`
	BirthRate    float64       `yaml:"birthRate"`
	Color        colorEntry    `yaml:"color"`
	Bounds       boundsEntry   `yaml:"bounds"`
	Acceleration []float64     `yaml:"acceleration"`
	Speed        float64       `yaml:"speed"`
	Lifetime     float64       `yaml:"lifetime"`
	Physics      *physicsEntry `yaml:"physics"`
}

// colorEntry sets exactly one of its fields. Colors are [r, g, b] or
// [r, g, b, a] lists.
type colorEntry struct {
	Constant []float64 `yaml:"constant"`
	Evolving *struct {
		Start []float64 `yaml:"start"`
		End   []float64 `yaml:"end"`
	} `yaml:"evolving"`
	Palette [][]float64 `yaml:"palette"`
}

// boundsEntry is either a half extent (a cube) or explicit corners.
type boundsEntry struct {
	Half float64   `yaml:"half"`
	Min  []float64 `yaml:"min"`
	Max  []float64 `yaml:"max"`
}

type physicsEntry struct {
	Field               string    `yaml:"field"`
	GravityStrength     float64   `yaml:"gravityStrength"`
	GravityEpsilon      float64   `yaml:"gravityEpsilon"`
	UniverseScale       float64   `yaml:"universeScale"`
	HaloStrength        float64   `yaml:"haloStrength"`
	HaloRadius          float64   `yaml:"haloRadius"`
	CenterAttraction    float64   `yaml:"centerAttraction"`
	Center              []float64 `yaml:"center"`
	ParticleInteraction float64   `yaml:"particleInteraction"`
	InteractionRadius   float64   `yaml:"interactionRadius"`
	Damping             float64   `yaml:"damping"`
	Amplitude           float64   `yaml:"amplitude"`
	Frequency           float64   `yaml:"frequency"`
	Intensity           float64   `yaml:"intensity"`
	Radius              float64   `yaml:"radius"`
	InwardPull          float64   `yaml:"inwardPull"`
}

// LoadPresets parses a YAML preset document. Every entry is validated; the
// first bad entry fails the whole document.
func LoadPresets(r io.Reader) ([]Preset, error) {
	var doc presetFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	out := make([]Preset, 0, len(doc.Effects))
	seen := make(map[string]bool, len(doc.Effects))
	for i, e := range doc.Effects {
		p, err := e.preset()
		if err != nil {
			return nil, fmt.Errorf("preset %d (%q): %w", i, e.Name, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("preset %d: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out, nil
}

// LoadPresetFile is LoadPresets on the named file.
func LoadPresetFile(path string) ([]Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open presets %s: %w", path, err)
	}
	defer f.Close()
	presets, err := LoadPresets(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return presets, nil
}

// RegisterFile loads a preset file and registers every preset in it. It
// returns the registered names in file order.
func (r *Registry) RegisterFile(path string) ([]string, error) {
	presets, err := LoadPresetFile(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		r.Register(p.Name, PresetProvider(p))
		names = append(names, p.Name)
	}
	return names, nil
}

func (e presetEntry) preset() (Preset, error) {
	if e.Name == "" {
		return Preset{}, errors.New("name is required")
	}
	shape, err := parseShape(e.Shape)
	if err != nil {
		return Preset{}, err
	}
	size, err := vec3(e.EmitterSize, "emitterSize")
	if err != nil {
		return Preset{}, err
	}
	accel, err := vec3(e.Acceleration, "acceleration")
	if err != nil {
		return Preset{}, err
	}
	law, err := e.Color.law()
	if err != nil {
		return Preset{}, err
	}
	bounds, err := e.Bounds.aabb()
	if err != nil {
		return Preset{}, err
	}
	cfg := EffectConfig{
		Shape:        shape,
		EmitterSize:  size,
		BirthRate:    e.BirthRate,
		Color:        law,
		Bounds:       bounds,
		Acceleration: accel,
		Speed:        e.Speed,
		Lifetime:     e.Lifetime,
	}
	if err := cfg.Validate(); err != nil {
		return Preset{}, err
	}
	p := Preset{Name: e.Name, Config: cfg}
	if e.Physics != nil {
		phys, err := e.Physics.params()
		if err != nil {
			return Preset{}, err
		}
		p.Physics = &phys
	}
	return p, nil
}

func parseShape(s string) (EmitterShape, error) {
	switch s {
	case "", "point":
		return ShapePoint, nil
	case "sphere":
		return ShapeSphere, nil
	case "plane":
		return ShapePlane, nil
	default:
		return ShapePoint, fmt.Errorf("unknown shape %q", s)
	}
}

func (c colorEntry) law() (ColorLaw, error) {
	set := 0
	if c.Constant != nil {
		set++
	}
	if c.Evolving != nil {
		set++
	}
	if c.Palette != nil {
		set++
	}
	switch {
	case set == 0:
		return ConstantColor{Color: ColorWhite}, nil
	case set > 1:
		return nil, errors.New("color: set exactly one of constant, evolving, palette")
	}

	switch {
	case c.Constant != nil:
		col, err := rgba(c.Constant)
		if err != nil {
			return nil, fmt.Errorf("color.constant: %w", err)
		}
		return ConstantColor{Color: col}, nil
	case c.Evolving != nil:
		start, err := rgba(c.Evolving.Start)
		if err != nil {
			return nil, fmt.Errorf("color.evolving.start: %w", err)
		}
		end, err := rgba(c.Evolving.End)
		if err != nil {
			return nil, fmt.Errorf("color.evolving.end: %w", err)
		}
		return EvolvingColor{Start: start, End: end}, nil
	default:
		if len(c.Palette) == 0 {
			return nil, errors.New("color.palette: empty")
		}
		colors := make([]Color, len(c.Palette))
		for i, v := range c.Palette {
			col, err := rgba(v)
			if err != nil {
				return nil, fmt.Errorf("color.palette[%d]: %w", i, err)
			}
			colors[i] = col
		}
		return MultipleColors{Colors: colors}, nil
	}
}

func (b boundsEntry) aabb() (AABB, error) {
	if b.Min == nil && b.Max == nil {
		if b.Half <= 0 {
			return AABB{}, errors.New("bounds: half or min/max is required")
		}
		return Cube(b.Half), nil
	}
	lo, err := vec3(b.Min, "bounds.min")
	if err != nil {
		return AABB{}, err
	}
	hi, err := vec3(b.Max, "bounds.max")
	if err != nil {
		return AABB{}, err
	}
	return AABB{Min: lo, Max: hi}, nil
}

func (p physicsEntry) params() (PhysicsParams, error) {
	kind := FieldNone
	if p.Field != "" {
		k, ok := ParseFieldKind(p.Field)
		if !ok {
			return PhysicsParams{}, fmt.Errorf("physics: unknown field %q", p.Field)
		}
		kind = k
	}
	if kind == FieldGalaxy && !(p.GravityEpsilon > 0) {
		return PhysicsParams{}, fmt.Errorf("physics: galaxy field needs gravityEpsilon > 0, got %g", p.GravityEpsilon)
	}
	center, err := vec3(p.Center, "physics.center")
	if err != nil {
		return PhysicsParams{}, err
	}
	scale := p.UniverseScale
	if scale == 0 {
		scale = 1
	}
	return PhysicsParams{
		Field:               kind,
		GravityStrength:     p.GravityStrength,
		GravityEpsilon:      p.GravityEpsilon,
		UniverseScale:       scale,
		HaloStrength:        p.HaloStrength,
		HaloRadius:          p.HaloRadius,
		CenterAttraction:    p.CenterAttraction,
		Center:              center,
		ParticleInteraction: p.ParticleInteraction,
		InteractionRadius:   p.InteractionRadius,
		Damping:             clamp01(p.Damping),
		Amplitude:           p.Amplitude,
		Frequency:           p.Frequency,
		Intensity:           p.Intensity,
		Radius:              p.Radius,
		InwardPull:          p.InwardPull,
	}, nil
}

// vec3 converts an optional three-element list. An absent list is the zero vector.
func vec3(v []float64, field string) (mgl64.Vec3, error) {
	if v == nil {
		return mgl64.Vec3{}, nil
	}
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("%s: want 3 components, got %d", field, len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

// rgba converts [r, g, b] or [r, g, b, a]; alpha defaults to 1.
func rgba(v []float64) (Color, error) {
	switch len(v) {
	case 3:
		return Color{R: v[0], G: v[1], B: v[2], A: 1}, nil
	case 4:
		return Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
	default:
		return Color{}, fmt.Errorf("want 3 or 4 components, got %d", len(v))
	}
}
