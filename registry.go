package lumen

import (
	"log"
	"math/rand/v2"
)

// Provider supplies the configuration (and optional physics) of a named effect.
type Provider interface {
	Configuration() EffectConfig
	PhysicsParams() (PhysicsParams, bool)
}

// LifecycleProvider is implemented by providers that compute a fresh
// configuration per activation. The engine calls WillStart right before an
// instance of the effect starts emitting and DidStop once it stops.
type LifecycleProvider interface {
	Provider
	WillStart() (EffectConfig, bool)
	DidStop()
}

// StaticProvider serves a fixed configuration.
type StaticProvider struct {
	Config  EffectConfig
	Physics *PhysicsParams
}

// Configuration implements Provider.
func (p StaticProvider) Configuration() EffectConfig {
	return p.Config
}

// PhysicsParams implements Provider.
func (p StaticProvider) PhysicsParams() (PhysicsParams, bool) {
	if p.Physics == nil {
		return PhysicsParams{}, false
	}
	return *p.Physics, true
}

// ProviderFunc adapts a function to Provider. The function is called on every
// lookup; it has no physics.
type ProviderFunc func() EffectConfig

// Configuration implements Provider.
func (f ProviderFunc) Configuration() EffectConfig {
	return f()
}

// PhysicsParams implements Provider.
func (f ProviderFunc) PhysicsParams() (PhysicsParams, bool) {
	return PhysicsParams{}, false
}

// GeneratedProvider draws a new configuration on every activation, such as
// the rainbow preset's random hue pair. Between activations Configuration
// returns the most recent draw.
type GeneratedProvider struct {
	generate func(*rand.Rand) EffectConfig
	physics  *PhysicsParams
	rng      *rand.Rand
	current  EffectConfig
	active   int
}

// NewGeneratedProvider creates a provider around generate. rng may be nil to
// use the global source.
func NewGeneratedProvider(generate func(*rand.Rand) EffectConfig, physics *PhysicsParams, rng *rand.Rand) *GeneratedProvider {
	return &GeneratedProvider{
		generate: generate,
		physics:  physics,
		rng:      rng,
		current:  generate(rng),
	}
}

// Configuration implements Provider.
func (p *GeneratedProvider) Configuration() EffectConfig {
	return p.current
}

// PhysicsParams implements Provider.
func (p *GeneratedProvider) PhysicsParams() (PhysicsParams, bool) {
	if p.physics == nil {
		return PhysicsParams{}, false
	}
	return *p.physics, true
}

// WillStart implements LifecycleProvider.
func (p *GeneratedProvider) WillStart() (EffectConfig, bool) {
	p.current = p.generate(p.rng)
	p.active++
	return p.current, true
}

// DidStop implements LifecycleProvider.
func (p *GeneratedProvider) DidStop() {
	if p.active > 0 {
		p.active--
	}
}

// Active returns the number of activations not yet matched by DidStop.
func (p *GeneratedProvider) Active() int {
	return p.active
}

// PresetProvider wraps a preset in the matching provider type.
func PresetProvider(p Preset) Provider {
	if p.generate != nil {
		return NewGeneratedProvider(p.generate, p.Physics, nil)
	}
	return StaticProvider{Config: p.Config, Physics: p.Physics}
}

// Registry maps effect names to providers so new effect types can be added
// without touching the scheduler. A Registry is built once at startup and
// then read from the tick context; it has no locking.
type Registry struct {
	providers map[string]Provider
	order     []string
	logger    *log.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		logger:    defaultLogger,
	}
}

// NewPresetRegistry creates a registry holding every built-in preset.
func NewPresetRegistry() *Registry {
	r := NewRegistry()
	for _, p := range builtinPresets {
		r.Register(p.Name, PresetProvider(p))
	}
	return r
}

// SetLogger replaces the registry's logger. nil restores the default.
func (r *Registry) SetLogger(l *log.Logger) {
	if l == nil {
		l = defaultLogger
	}
	r.logger = l
}

// Register associates name with p. A duplicate name replaces the previous
// provider; the replacement is logged and reported through replaced. A nil
// provider is logged and ignored.
func (r *Registry) Register(name string, p Provider) (replaced bool) {
	if p == nil {
		r.logger.Printf("registry: effect %q: nil provider ignored", name)
		return false
	}
	if _, exists := r.providers[name]; exists {
		replaced = true
		r.logger.Printf("registry: effect %q re-registered, previous provider replaced", name)
	} else {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
	return replaced
}

// Provider returns the provider registered under name.
func (r *Registry) Provider(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Configuration returns the current configuration of name.
func (r *Registry) Configuration(name string) (EffectConfig, bool) {
	p, ok := r.providers[name]
	if !ok {
		return EffectConfig{}, false
	}
	return p.Configuration(), true
}

// PhysicsParams returns the physics parameters of name, if it has any.
func (r *Registry) PhysicsParams(name string) (PhysicsParams, bool) {
	p, ok := r.providers[name]
	if !ok {
		return PhysicsParams{}, false
	}
	return p.PhysicsParams()
}

// WillStart runs the activation hook of name. It returns a fresh
// configuration when the provider produces one per activation.
func (r *Registry) WillStart(name string) (EffectConfig, bool) {
	lp, ok := r.providers[name].(LifecycleProvider)
	if !ok {
		return EffectConfig{}, false
	}
	return lp.WillStart()
}

// DidStop runs the deactivation hook of name, if the provider has one.
func (r *Registry) DidStop(name string) {
	if lp, ok := r.providers[name].(LifecycleProvider); ok {
		lp.DidStop()
	}
}

// Names returns the registered names in first-registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.providers)
}
