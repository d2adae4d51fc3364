// Package ecs provides ECS adapters for lumen.
package ecs

import (
	"github.com/phanxgames/lumen"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EffectEventType carries every lumen engine event unchanged.
var EffectEventType = events.NewEventType[lumen.EffectEvent]()

// InstanceEvent is an instance lifecycle change: started, stopped, completed
// or evicted.
type InstanceEvent struct {
	Kind     lumen.EventType
	Time     float64
	Instance lumen.InstanceID
	Name     string
	// Emitting is true only for EventStarted.
	Emitting bool
	// Evicted marks a stop forced by the frame-rate policy.
	Evicted bool
}

// SequenceEvent is a sequencer change: a phase entered, the sequence
// completed, or the run cancelled.
type SequenceEvent struct {
	Kind      lumen.EventType
	Time      float64
	Sequence  string
	Phase     int
	PhaseName string
	// Done is true once the run is over, completed or cancelled.
	Done bool
}

// InstanceEventType and SequenceEventType split the stream for systems that
// only care about one side.
var (
	InstanceEventType = events.NewEventType[InstanceEvent]()
	SequenceEventType = events.NewEventType[SequenceEvent]()
)

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Every engine event is published to EffectEventType and, by kind, to
// InstanceEventType or SequenceEventType. Consume them with Subscribe and
// ProcessEvents.
func NewDonburiSink(world donburi.World) lumen.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event lumen.EffectEvent) {
	EffectEventType.Publish(s.world, event)
	switch event.Type {
	case lumen.EventStarted, lumen.EventStopped, lumen.EventCompleted, lumen.EventEvicted:
		InstanceEventType.Publish(s.world, InstanceEvent{
			Kind:     event.Type,
			Time:     event.Time,
			Instance: event.Instance,
			Name:     event.Name,
			Emitting: event.Type == lumen.EventStarted,
			Evicted:  event.Type == lumen.EventEvicted,
		})
	case lumen.EventPhaseEntered, lumen.EventSequenceCompleted, lumen.EventSequenceCancelled:
		SequenceEventType.Publish(s.world, SequenceEvent{
			Kind:      event.Type,
			Time:      event.Time,
			Sequence:  event.Sequence,
			Phase:     event.Phase,
			PhaseName: event.PhaseName,
			Done:      event.Type != lumen.EventPhaseEntered,
		})
	}
}
