// terminal renders lumen effects as colored glyphs in a terminal. An audio
// source (a WAV file, or a synthetic pulse when none is given) is reduced to
// an energy envelope that drives the current mood.
//
// Settings come from the environment or a .env file:
//
//	LUMEN_MOOD    initial mood (calm, joyful, energetic, melancholy, dreamy)
//	LUMEN_SLOTS   number of emitters (default 3)
//	LUMEN_WAV     WAV file to analyse
//	LUMEN_CONFIG  engine config YAML
//	LUMEN_PRESETS extra presets YAML
//	LUMEN_SCRIPT  JSON script to play instead of the interactive loop
//
// Keys: 1-5 select a mood, b toggles the breathing loop, w plays the welcome
// animation, q or Esc quits.
package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
	"github.com/joho/godotenv"
	"github.com/phanxgames/lumen"
)

const (
	frameTime   = 33 * time.Millisecond
	cellsPerX   = 6.0 // terminal columns per world unit
	cellsPerY   = 3.0 // terminal rows per world unit
	energyEvery = 0.25
	sampleRate  = beep.SampleRate(22050)
)

var glyphs = []rune{'.', ':', '*', 'o', '@'}

type demo struct {
	screen tcell.Screen
	engine *lumen.Engine
	slots  int

	insts []*lumen.EffectInstance
	sims  []*lumen.Simulator
	seq   *lumen.Sequencer

	mood      lumen.Mood
	breathing bool

	audio    beep.Streamer
	format   beep.Format
	buf      [][2]float64
	follower *lumen.EnergyFollower
	lastPush float64

	script *lumen.ScriptRunner
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf(".env: %v", err)
	}

	d, err := newDemo()
	if err != nil {
		log.Fatal(err)
	}
	defer d.screen.Fini()
	d.run()
}

func newDemo() (*demo, error) {
	cfg := lumen.DefaultEngineConfig()
	if path := os.Getenv("LUMEN_CONFIG"); path != "" {
		c, err := lumen.LoadEngineConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	registry := lumen.NewPresetRegistry()
	if path := os.Getenv("LUMEN_PRESETS"); path != "" {
		if _, err := registry.RegisterFile(path); err != nil {
			return nil, err
		}
	}

	slots := 3
	if s := os.Getenv("LUMEN_SLOTS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("LUMEN_SLOTS: want a positive integer, got %q", s)
		}
		slots = n
	}
	mood := lumen.MoodCalm
	if s := os.Getenv("LUMEN_MOOD"); s != "" {
		m, err := lumen.ParseMood(s)
		if err != nil {
			return nil, err
		}
		mood = m
	}

	d := &demo{
		engine:   lumen.NewEngine(registry, cfg),
		slots:    slots,
		mood:     mood,
		follower: lumen.NewEnergyFollower(4, 1),
	}
	// The terminal belongs to tcell; logs would tear the display.
	d.engine.SetLogger(log.New(logSink(), "[lumen] ", log.LstdFlags))

	if err := d.openAudio(os.Getenv("LUMEN_WAV")); err != nil {
		return nil, err
	}
	if path := os.Getenv("LUMEN_SCRIPT"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		r, err := lumen.LoadScript(data)
		if err != nil {
			return nil, err
		}
		r.SetTargetFactory(func(string) lumen.RenderTarget {
			sim := lumen.NewSimulator(300, nil)
			d.sims = append(d.sims, sim)
			return sim
		})
		d.script = r
	} else if err := d.spawn(); err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	d.screen = screen
	return d, nil
}

// logSink sends engine logs to LUMEN_LOG, or discards them.
func logSink() io.Writer {
	path := os.Getenv("LUMEN_LOG")
	if path == "" {
		return io.Discard
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard
	}
	return f
}

// openAudio decodes path as WAV, or builds a pulsing tone when path is empty.
func (d *demo) openAudio(path string) error {
	if path == "" {
		tone, err := generators.SineTone(sampleRate, 220)
		if err != nil {
			return err
		}
		d.audio = &pulse{src: tone, rate: float64(sampleRate)}
		d.format = beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}
	d.audio = beep.Loop(-1, s)
	d.format = format
	return nil
}

// spawn creates one mood instance and simulator per slot.
func (d *demo) spawn() error {
	cfg := lumen.MoodConfig(d.mood, 0.5)
	for i := 0; i < d.slots; i++ {
		sim := lumen.NewSimulator(300, nil)
		inst, err := d.engine.SpawnConfig(fmt.Sprintf("slot-%d", i), cfg, sim)
		if err != nil {
			return err
		}
		inst.SetOffset(lumen.SlotOffset(i, d.slots, 2))
		d.insts = append(d.insts, inst)
		d.sims = append(d.sims, sim)
	}
	d.setMood(d.mood)
	for _, inst := range d.insts {
		inst.Start()
	}
	return nil
}

func (d *demo) setMood(m lumen.Mood) {
	d.mood = m
	for _, sim := range d.sims {
		if phys, ok := lumen.MoodPhysics(m); ok {
			sim.SetPhysics(&phys, nil)
		} else {
			sim.SetPhysics(nil, nil)
		}
	}
	if d.breathing {
		d.play(lumen.MoodSequence(m, d.slots))
	}
}

func (d *demo) play(seq lumen.AnimationSequence) {
	if d.seq != nil {
		d.seq.Cancel()
	}
	s, err := d.engine.NewSequencer(seq, d.insts)
	if err != nil {
		return
	}
	d.seq = s
	_ = s.Start(func() { d.seq = nil })
}

func (d *demo) run() {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()
	start := time.Now()
	last := 0.0
	for {
		select {
		case ev, ok := <-events:
			if !ok || d.handle(ev) {
				return
			}
		case t := <-ticker.C:
			now := t.Sub(start).Seconds()
			dt := now - last
			last = now
			d.frame(now, dt)
		}
	}
}

// handle processes one terminal event and reports whether to quit.
func (d *demo) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		d.screen.Sync()
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
			return true
		}
		if d.script != nil {
			return false
		}
		switch r := ev.Rune(); {
		case r >= '1' && r <= '5':
			d.setMood(lumen.Mood(r - '1'))
		case r == 'b':
			d.breathing = !d.breathing
			if d.breathing {
				d.play(lumen.MoodSequence(d.mood, d.slots))
			} else if d.seq != nil {
				d.seq.Cancel()
				d.seq = nil
			}
		case r == 'w':
			d.breathing = false
			for _, sim := range d.sims {
				sim.SetPhysics(nil, nil)
			}
			d.play(lumen.WelcomeSequence(d.slots, nil))
		}
	}
	return false
}

func (d *demo) frame(now, dt float64) {
	d.follower.SetTarget(d.readEnergy(dt))
	energy := d.follower.Update(dt)

	if d.script != nil {
		_ = d.script.Step(d.engine, now)
	} else if d.seq == nil && now-d.lastPush >= energyEvery {
		// Between sequences the music drives the mood directly.
		d.lastPush = now
		cfg := lumen.MoodConfig(d.mood, energy)
		for _, inst := range d.insts {
			if inst.State() == lumen.StateComplete {
				inst.Start()
			}
			_ = inst.TransitionTo(cfg, energyEvery, nil)
		}
	}

	d.engine.Tick(now)
	for _, sim := range d.sims {
		sim.Update(dt)
	}
	d.draw(energy)
}

// readEnergy pulls dt worth of audio and returns its RMS level scaled into
// [0, 1].
func (d *demo) readEnergy(dt float64) float64 {
	n := d.format.SampleRate.N(time.Duration(dt * float64(time.Second)))
	if n <= 0 {
		return d.follower.Target()
	}
	if cap(d.buf) < n {
		d.buf = make([][2]float64, n)
	}
	buf := d.buf[:n]
	got, _ := d.audio.Stream(buf)
	if got == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range buf[:got] {
		m := (s[0] + s[1]) / 2
		sum += m * m
	}
	return math.Min(1, 2.5*math.Sqrt(sum/float64(got)))
}

func (d *demo) draw(energy float64) {
	d.screen.Clear()
	w, h := d.screen.Size()
	cx, cy := float64(w)/2, float64(h)/2
	for _, sim := range d.sims {
		for _, p := range sim.Particles() {
			x := int(cx + p.Position[0]*cellsPerX)
			y := int(cy - p.Position[1]*cellsPerY)
			if x < 0 || y < 0 || x >= w || y >= h {
				continue
			}
			c := p.Color.Clamped()
			g := glyphs[min(len(glyphs)-1, int(c.A*float64(len(glyphs))))]
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(
				int32(c.R*255), int32(c.G*255), int32(c.B*255)))
			d.screen.SetContent(x, y, g, nil, style)
		}
	}

	status := fmt.Sprintf(" mood %-10s energy %.2f  %.0f Hz  evicted %d ",
		d.mood, energy, d.engine.FrameSampler().Average(), d.engine.Evictions())
	if d.seq != nil {
		status += fmt.Sprintf(" %s/%s ", d.seq.Sequence().Name, d.seq.PhaseName())
	}
	for i, r := range status {
		if i >= w {
			break
		}
		d.screen.SetContent(i, h-1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	d.screen.Show()
}

// pulse gates a tone with a 120 bpm envelope so the demo has a beat without
// an audio file.
type pulse struct {
	src  beep.Streamer
	rate float64
	pos  int
}

func (p *pulse) Stream(samples [][2]float64) (int, bool) {
	n, ok := p.src.Stream(samples)
	for i := range samples[:n] {
		t := float64(p.pos) / p.rate
		beat := math.Exp(-6 * math.Mod(t, 0.5))
		swell := 0.5 + 0.5*math.Sin(2*math.Pi*t/16)
		g := beat * (0.3 + 0.7*swell)
		samples[i][0] *= g
		samples[i][1] *= g
		p.pos++
	}
	return n, ok
}

func (p *pulse) Err() error {
	return p.src.Err()
}
