package lumen

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestBuiltinPresetsValid(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			cfg, err := Resolve(name)
			if err != nil {
				t.Fatalf("Resolve(%q) = %v", name, err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %q invalid: %v", name, err)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("nebula")
	if !errors.Is(err, ErrRegistryMiss) {
		t.Errorf("Resolve(nebula) = %v, want ErrRegistryMiss", err)
	}
}

func TestResolveIsPure(t *testing.T) {
	a, _ := Resolve(PresetGalaxy)
	b, _ := Resolve(PresetGalaxy)
	if a.BirthRate != b.BirthRate || a.Color != b.Color || a.Bounds != b.Bounds {
		t.Error("fixed preset resolved to different configurations")
	}
}

func TestSpecNamedPresetsExist(t *testing.T) {
	for _, name := range []string{PresetFireflies, PresetGalaxy, PresetGalaxySplit, PresetSparkles, PresetSmoke, PresetRain} {
		if _, ok := LookupPreset(name); !ok {
			t.Errorf("preset %q missing", name)
		}
	}
}

func TestRainbowResamples(t *testing.T) {
	p, ok := LookupPreset(PresetRainbow)
	if !ok {
		t.Fatal("rainbow preset missing")
	}
	if !p.Randomized() {
		t.Error("rainbow should be randomized")
	}
	rng := rand.New(rand.NewPCG(3, 4))
	a := p.Resolve(rng)
	b := p.Resolve(rng)
	if a.Color == b.Color {
		t.Error("two rainbow resolutions produced the same colors")
	}
	if _, ok := a.Color.(EvolvingColor); !ok {
		t.Errorf("rainbow color law = %T, want EvolvingColor", a.Color)
	}
}

func TestRainbowSeeded(t *testing.T) {
	a := RainbowConfig(rand.New(rand.NewPCG(9, 9)))
	b := RainbowConfig(rand.New(rand.NewPCG(9, 9)))
	if a.Color != b.Color {
		t.Errorf("same seed gave %v and %v", a.Color, b.Color)
	}
}

func TestGalaxyPresetsCarryPhysics(t *testing.T) {
	for _, name := range []string{PresetGalaxy, PresetGalaxySplit} {
		p, _ := LookupPreset(name)
		if p.Physics == nil || p.Physics.Field != FieldGalaxy {
			t.Errorf("preset %q physics = %+v, want galaxy field", name, p.Physics)
		}
	}
}
