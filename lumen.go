package lumen

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the fallback color for empty or missing color laws.
var ColorWhite = Color{1, 1, 1, 1}

// Lerp linearly interpolates every channel from c toward to by t.
func (c Color) Lerp(to Color, t float64) Color {
	return Color{
		R: lerp(c.R, to.R, t),
		G: lerp(c.G, to.G, t),
		B: lerp(c.B, to.B, t),
		A: lerp(c.A, to.A, t),
	}
}

// Clamped returns c with every channel clamped to [0, 1].
func (c Color) Clamped() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

// AABB is an axis-aligned bounding box in emitter space.
type AABB struct {
	Min, Max mgl64.Vec3
}

// Valid reports whether Min <= Max on every axis.
func (b AABB) Valid() bool {
	for i := 0; i < 3; i++ {
		// NaN fails both comparisons and is rejected here as well.
		if !(b.Min[i] <= b.Max[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether p lies inside the box. Points on a face are inside.
func (b AABB) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Cube returns a box centred on the origin with the given half extent.
func Cube(half float64) AABB {
	return AABB{
		Min: mgl64.Vec3{-half, -half, -half},
		Max: mgl64.Vec3{half, half, half},
	}
}

// EmitterShape selects the volume particles are born in.
type EmitterShape uint8

const (
	ShapePoint  EmitterShape = iota // all particles start at the emitter origin
	ShapeSphere                     // uniform inside an ellipsoid of EmitterSize radii
	ShapePlane                      // uniform on the XZ rectangle of EmitterSize extents
)

// String returns the lower-case shape name used in preset files.
func (s EmitterShape) String() string {
	switch s {
	case ShapePoint:
		return "point"
	case ShapeSphere:
		return "sphere"
	case ShapePlane:
		return "plane"
	default:
		return "unknown"
	}
}

// ShapeDescriptor is the shape information handed to render targets.
type ShapeDescriptor struct {
	Shape EmitterShape
	Size  mgl64.Vec3
}

// InstanceState is the lifecycle state of an EffectInstance.
type InstanceState uint8

const (
	StateInactive      InstanceState = iota // idle, birth rate zero
	StateActive                             // emitting at the configured birth rate
	StateTransitioning                      // emitting while blending toward a new configuration
	StateComplete                           // finished; only Start leaves this state
)

// String returns the state name.
func (s InstanceState) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	case StateTransitioning:
		return "transitioning"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
