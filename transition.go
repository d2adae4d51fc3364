package lumen

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Transition cross-fades an instance's emission from a frozen snapshot to
// its live target. A single gween tween drives the eased progress; Blend
// mixes the continuous fields (birth rate, color, acceleration, speed,
// offset) and switches the discrete ones (shape, lifetime, bounds, color
// law) to the target immediately.
//
// Call Update(dt) once per tick. Done is set when the tween finishes.
type Transition struct {
	tween    *gween.Tween
	from     EmissionParams
	progress float64
	Done     bool
}

// NewTransition creates a transition lasting duration seconds. A nil easing
// function means ease.Linear.
func NewTransition(from EmissionParams, duration float64, fn ease.TweenFunc) *Transition {
	if fn == nil {
		fn = ease.Linear
	}
	return &Transition{
		tween: gween.New(0, 1, float32(duration), fn),
		from:  from,
	}
}

// Update advances the tween by dt seconds and returns the eased progress in [0, 1].
func (t *Transition) Update(dt float64) float64 {
	if t.Done {
		return 1
	}
	val, finished := t.tween.Update(float32(dt))
	t.progress = float64(val)
	if finished {
		t.progress = 1
		t.Done = true
	}
	return t.progress
}

// Progress returns the eased progress reached by the last Update.
func (t *Transition) Progress() float64 {
	return t.progress
}

// Blend returns the snapshot between the transition's origin and to at the
// current progress.
func (t *Transition) Blend(to EmissionParams) EmissionParams {
	k := t.progress
	out := to
	out.BirthRate = lerp(t.from.BirthRate, to.BirthRate, k)
	out.Color = t.from.Color.Lerp(to.Color, k)
	out.Acceleration = t.from.Acceleration.Add(to.Acceleration.Sub(t.from.Acceleration).Mul(k))
	out.Speed = lerp(t.from.Speed, to.Speed, k)
	out.Offset = t.from.Offset.Add(to.Offset.Sub(t.from.Offset).Mul(k))
	return out
}
