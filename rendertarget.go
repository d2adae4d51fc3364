package lumen

import "github.com/go-gl/mathgl/mgl64"

// EmissionParams is the snapshot of an instance's emission pushed to its
// render target. Targets copy what they need; the engine never retains a
// reference to anything the target owns.
type EmissionParams struct {
	// BirthRate is zero whenever the instance is not emitting.
	BirthRate    float64
	Color        Color
	Acceleration mgl64.Vec3
	Speed        float64
	Shape        ShapeDescriptor

	// Fields below let a target simulate particles itself.
	Lifetime float64
	Bounds   AABB
	Offset   mgl64.Vec3
	ColorLaw ColorLaw
}

// equal reports whether two snapshots would produce the same write.
func (p EmissionParams) equal(o EmissionParams) bool {
	return p.BirthRate == o.BirthRate &&
		p.Color == o.Color &&
		p.Acceleration == o.Acceleration &&
		p.Speed == o.Speed &&
		p.Shape == o.Shape &&
		p.Lifetime == o.Lifetime &&
		p.Bounds == o.Bounds &&
		p.Offset == o.Offset &&
		sameColorLaw(p.ColorLaw, o.ColorLaw)
}

// sameColorLaw compares laws by value. MultipleColors holds a slice, so the
// interfaces cannot be compared with ==.
func sameColorLaw(a, b ColorLaw) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case ConstantColor:
		y, ok := b.(ConstantColor)
		return ok && x == y
	case EvolvingColor:
		y, ok := b.(EvolvingColor)
		return ok && x == y
	case MultipleColors:
		y, ok := b.(MultipleColors)
		if !ok || len(x.Colors) != len(y.Colors) {
			return false
		}
		for i := range x.Colors {
			if x.Colors[i] != y.Colors[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// RenderTarget is the host-owned handle an instance renders through. The
// engine never creates or destroys the underlying renderable.
type RenderTarget interface {
	SetEmissionParams(p EmissionParams)
}

// RenderTargetFunc adapts a plain function to RenderTarget.
type RenderTargetFunc func(p EmissionParams)

// SetEmissionParams calls f(p).
func (f RenderTargetFunc) SetEmissionParams(p EmissionParams) {
	f(p)
}
