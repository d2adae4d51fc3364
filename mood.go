package lumen

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Mood is the emotional color of the music currently playing.
type Mood uint8

const (
	MoodCalm Mood = iota
	MoodJoyful
	MoodEnergetic
	MoodMelancholy
	MoodDreamy
)

var moodNames = [...]string{"calm", "joyful", "energetic", "melancholy", "dreamy"}

// String returns the lower-case mood name.
func (m Mood) String() string {
	if int(m) < len(moodNames) {
		return moodNames[m]
	}
	return "unknown"
}

// ParseMood is the inverse of Mood.String. It ignores case.
func ParseMood(s string) (Mood, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range moodNames {
		if name == s {
			return Mood(i), nil
		}
	}
	return MoodCalm, fmt.Errorf("parse mood %q: %w", s, ErrRegistryMiss)
}

// Moods returns every mood in declaration order.
func Moods() []Mood {
	out := make([]Mood, len(moodNames))
	for i := range out {
		out[i] = Mood(i)
	}
	return out
}

type moodStyle struct {
	hue, spread float64 // palette centre and width in degrees
	sat         float64
	base        string  // preset the mood is built on
	breath      float64 // seconds per breathing phase
}

var moodStyles = [...]moodStyle{
	MoodCalm:       {hue: 195, spread: 30, sat: 0.45, base: PresetFireflies, breath: 4},
	MoodJoyful:     {hue: 45, spread: 60, sat: 0.8, base: PresetSparkles, breath: 1.5},
	MoodEnergetic:  {hue: 10, spread: 40, sat: 0.95, base: PresetEmbers, breath: 0.75},
	MoodMelancholy: {hue: 230, spread: 20, sat: 0.35, base: PresetSnow, breath: 5},
	MoodDreamy:     {hue: 285, spread: 50, sat: 0.5, base: PresetAurora, breath: 3},
}

func (m Mood) style() moodStyle {
	if int(m) < len(moodStyles) {
		return moodStyles[m]
	}
	return moodStyles[MoodCalm]
}

// MoodPalette returns n colors spread evenly around the mood's hue.
func MoodPalette(m Mood, n int) []Color {
	if n <= 0 {
		return nil
	}
	st := m.style()
	out := make([]Color, n)
	for i := range out {
		h := st.hue
		if n > 1 {
			h += st.spread * (float64(i)/float64(n-1) - 0.5)
		}
		if h < 0 {
			h += 360
		}
		c := colorful.Hsv(h, st.sat, 1).Clamped()
		out[i] = Color{R: c.R, G: c.G, B: c.B, A: 1}
	}
	return out
}

// MoodConfig builds the configuration for mood at a music energy in [0, 1].
// The mood's base preset supplies shape and motion; the color law is
// replaced by the mood palette and EnergyConfig scales rate and speed.
func MoodConfig(m Mood, energy float64) EffectConfig {
	st := m.style()
	base, err := Resolve(st.base)
	if err != nil {
		base, _ = Resolve(PresetFireflies)
	}
	pal := MoodPalette(m, 3)
	var law ColorLaw
	if _, ok := base.Color.(MultipleColors); ok {
		law = MultipleColors{Colors: pal}
	} else {
		end := pal[len(pal)-1]
		end.A = 0
		law = EvolvingColor{Start: pal[0], End: end}
	}
	return EnergyConfig(base.WithColor(law), energy)
}

// MoodPhysics returns the physics of the mood's base preset, if any.
func MoodPhysics(m Mood) (PhysicsParams, bool) {
	p, ok := LookupPreset(m.style().base)
	if !ok || p.Physics == nil {
		return PhysicsParams{}, false
	}
	return *p.Physics, true
}

// MoodSequence is a repeating two-phase breathing loop over slots instances:
// the effect swells to the high-energy configuration and relaxes back, with
// phase length set by the mood's tempo.
func MoodSequence(m Mood, slots int) AnimationSequence {
	st := m.style()
	hi := MoodConfig(m, 0.8)
	lo := MoodConfig(m, 0.3)
	offset := func(i int) mgl64.Vec3 { return SlotOffset(i, slots, 2) }
	return AnimationSequence{
		Name:    "mood-" + m.String(),
		Repeats: true,
		Phases: []AnimationPhase{
			{
				Name:     "inhale",
				Duration: st.breath,
				Assign:   func(int) EffectConfig { return hi },
				Offset:   offset,
				Blend:    st.breath / 2,
			},
			{
				Name:     "exhale",
				Duration: st.breath,
				Assign:   func(int) EffectConfig { return lo },
				Offset:   offset,
				Blend:    st.breath / 2,
			},
		},
	}
}
