// Package ecs provides ECS adapters for lumen's engine event stream.
//
// The primary adapter is [NewDonburiSink], which bridges lumen engine events
// (instance started, stopped, completed, evicted, sequencer phases) into a
// [Donburi] world as typed events. Subscribe to [EffectEventType] in your ECS
// systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	engine.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
