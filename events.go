package lumen

// EventSink is the interface for optional event forwarding (for example into
// an ECS world, see the ecs package). When set on an Engine, lifecycle and
// sequencer events are delivered synchronously from the tick context.
type EventSink interface {
	EmitEvent(event EffectEvent)
}

// EventType identifies a kind of engine event.
type EventType uint8

const (
	EventStarted           EventType = iota // an instance began emitting
	EventStopped                            // an instance was stopped
	EventCompleted                          // an instance reached Complete
	EventEvicted                            // an instance was stopped by the frame-rate policy
	EventPhaseEntered                       // a sequencer applied a phase
	EventSequenceCompleted                  // a sequencer finished its final phase
	EventSequenceCancelled                  // a sequencer was torn down mid-run
)

var eventNames = [...]string{
	"started", "stopped", "completed", "evicted",
	"phase-entered", "sequence-completed", "sequence-cancelled",
}

// String returns the event name.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// EffectEvent carries event data for the sink.
type EffectEvent struct {
	Type EventType
	// Time is the engine time of the tick that produced the event.
	Time float64
	// Instance and Name are set for instance events.
	Instance InstanceID
	Name     string
	// Sequence, Phase and PhaseName are set for sequencer events.
	Sequence  string
	Phase     int
	PhaseName string
}
