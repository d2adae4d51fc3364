package lumen

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRenderTargetFunc(t *testing.T) {
	var got EmissionParams
	var rt RenderTarget = RenderTargetFunc(func(p EmissionParams) { got = p })
	rt.SetEmissionParams(EmissionParams{BirthRate: 7})
	if got.BirthRate != 7 {
		t.Errorf("BirthRate = %v, want 7", got.BirthRate)
	}
}

func TestEmissionParamsEqual(t *testing.T) {
	pal := func() ColorLaw {
		return MultipleColors{Colors: []Color{ColorWhite, {R: 1, A: 1}}}
	}
	a := EmissionParams{BirthRate: 5, Offset: mgl64.Vec3{1, 2, 3}, ColorLaw: pal()}
	b := a
	b.ColorLaw = pal()
	if !a.equal(b) {
		t.Error("palettes with equal colors should compare equal")
	}

	b.ColorLaw = MultipleColors{Colors: []Color{ColorWhite}}
	if a.equal(b) {
		t.Error("palettes of different length compared equal")
	}
	b.ColorLaw = ConstantColor{Color: ColorWhite}
	if a.equal(b) {
		t.Error("different law kinds compared equal")
	}

	c := a
	c.Offset = mgl64.Vec3{1, 2, 4}
	if a.equal(c) {
		t.Error("different offsets compared equal")
	}
	if !(EmissionParams{}).equal(EmissionParams{}) {
		t.Error("zero snapshots should be equal")
	}
}
