package lumen

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func validConfig() EffectConfig {
	return EffectConfig{
		Shape:     ShapePoint,
		BirthRate: 10,
		Color:     ConstantColor{Color: ColorWhite},
		Bounds:    Cube(1),
		Speed:     1,
		Lifetime:  2,
	}
}

func TestValidateAcceptsValid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
	if err := validConfig().WithBirthRate(0).Validate(); err != nil {
		t.Errorf("zero birth rate: Validate = %v, want nil", err)
	}
	flat := validConfig()
	flat.Bounds = AABB{Min: mgl64.Vec3{1, 1, 1}, Max: mgl64.Vec3{1, 1, 1}}
	if err := flat.Validate(); err != nil {
		t.Errorf("degenerate bounds: Validate = %v, want nil", err)
	}
}

func TestValidateRejects(t *testing.T) {
	inverted := validConfig()
	inverted.Bounds = AABB{Min: mgl64.Vec3{0, 2, 0}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name string
		cfg  EffectConfig
		want error
	}{
		{"zero lifetime", validConfig().WithLifetime(0), ErrInvalidLifetime},
		{"negative lifetime", validConfig().WithLifetime(-1), ErrInvalidLifetime},
		{"NaN lifetime", validConfig().WithLifetime(math.NaN()), ErrInvalidLifetime},
		{"negative rate", validConfig().WithBirthRate(-0.5), ErrNegativeRate},
		{"NaN rate", validConfig().WithBirthRate(math.NaN()), ErrNegativeRate},
		{"inverted bounds", inverted, ErrInvalidBounds},
		// Lifetime is checked first.
		{"everything wrong", inverted.WithLifetime(0).WithBirthRate(-1), ErrInvalidLifetime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate = %v, want %v", err, tt.want)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("error %T is not *ConfigError", err)
			}
		})
	}
}

func TestValidateIffInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		cfg := validConfig()
		cfg.Lifetime = rng.Float64()*4 - 1
		cfg.BirthRate = rng.Float64()*4 - 1
		for k := 0; k < 3; k++ {
			cfg.Bounds.Min[k] = rng.Float64()*2 - 1
			cfg.Bounds.Max[k] = rng.Float64()*2 - 1
		}
		want := cfg.Lifetime > 0 && cfg.BirthRate >= 0 &&
			cfg.Bounds.Min[0] <= cfg.Bounds.Max[0] &&
			cfg.Bounds.Min[1] <= cfg.Bounds.Max[1] &&
			cfg.Bounds.Min[2] <= cfg.Bounds.Max[2]
		if got := cfg.Validate() == nil; got != want {
			t.Fatalf("Validate(%+v) ok = %v, want %v", cfg, got, want)
		}
	}
}

func TestWithHelpersCopy(t *testing.T) {
	base := validConfig()
	c := base.WithBirthRate(99).WithSpeed(3).WithAcceleration(mgl64.Vec3{0, -1, 0})
	if base.BirthRate != 10 || base.Speed != 1 || base.Acceleration != (mgl64.Vec3{}) {
		t.Errorf("base mutated: %+v", base)
	}
	if c.BirthRate != 99 || c.Speed != 3 || c.Acceleration[1] != -1 {
		t.Errorf("copy = %+v", c)
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := validConfig().WithLifetime(-2).Validate()
	if got, want := err.Error(), "lumen: invalid lifetime (-2)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSampleColor(t *testing.T) {
	red := Color{R: 1, A: 1}
	blue := Color{B: 1, A: 0}

	if got := SampleColor(ConstantColor{Color: red}, 0.7, nil); got != red {
		t.Errorf("constant = %v, want %v", got, red)
	}

	ev := EvolvingColor{Start: red, End: blue}
	if got := SampleColor(ev, 0, nil); got != red {
		t.Errorf("evolving(0) = %v, want %v", got, red)
	}
	if got := SampleColor(ev, 1, nil); got != blue {
		t.Errorf("evolving(1) = %v, want %v", got, blue)
	}
	mid := SampleColor(ev, 0.5, nil)
	if mid.R != 0.5 || mid.B != 0.5 || mid.A != 0.5 {
		t.Errorf("evolving(0.5) = %v, want halfway", mid)
	}
	if got := SampleColor(ev, 3, nil); got != blue {
		t.Errorf("evolving(3) = %v, want clamped to end", got)
	}

	pal := MultipleColors{Colors: []Color{red, blue}}
	rng := rand.New(rand.NewPCG(7, 7))
	seen := map[Color]bool{}
	for i := 0; i < 100; i++ {
		seen[SampleColor(pal, 0, rng)] = true
	}
	if !seen[red] || !seen[blue] || len(seen) != 2 {
		t.Errorf("palette picks = %v, want both colors only", seen)
	}

	if got := SampleColor(MultipleColors{}, 0, nil); got != ColorWhite {
		t.Errorf("empty palette = %v, want white", got)
	}
	if got := SampleColor(nil, 0, nil); got != ColorWhite {
		t.Errorf("nil law = %v, want white", got)
	}
}
