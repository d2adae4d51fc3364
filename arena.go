package lumen

import "fmt"

// InstanceID identifies an instance inside an Engine. IDs are generation
// checked: once an instance is released its ID never resolves again, even if
// the slot is reused. The zero value is never a valid ID.
type InstanceID struct {
	index      uint32
	generation uint32
}

// IsZero reports whether id is the zero (invalid) ID.
func (id InstanceID) IsZero() bool {
	return id.generation == 0
}

// String formats the ID as index:generation.
func (id InstanceID) String() string {
	return fmt.Sprintf("%d:%d", id.index, id.generation)
}

type arenaSlot struct {
	generation uint32
	inst       *EffectInstance
}

// arena is a dense slot array with a free list. Generations start at 1 and
// bump on every release.
type arena struct {
	slots []arenaSlot
	free  []uint32
	live  int
}

// insert stores inst and returns its new ID.
func (a *arena) insert(inst *EffectInstance) InstanceID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, arenaSlot{})
	}
	s := &a.slots[idx]
	s.generation++
	if s.generation == 0 {
		// Wrapped; skip the invalid zero generation.
		s.generation = 1
	}
	s.inst = inst
	a.live++
	return InstanceID{index: idx, generation: s.generation}
}

// get resolves id, returning nil for stale or unknown IDs.
func (a *arena) get(id InstanceID) *EffectInstance {
	if id.generation == 0 || int(id.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[id.index]
	if s.generation != id.generation {
		return nil
	}
	return s.inst
}

// remove releases the slot held by id. It reports false for stale IDs.
func (a *arena) remove(id InstanceID) bool {
	if a.get(id) == nil {
		return false
	}
	s := &a.slots[id.index]
	s.inst = nil
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	a.free = append(a.free, id.index)
	a.live--
	return true
}

// len returns the number of live instances.
func (a *arena) len() int {
	return a.live
}

// each calls fn for every live instance in slot order.
func (a *arena) each(fn func(inst *EffectInstance)) {
	for i := range a.slots {
		if inst := a.slots[i].inst; inst != nil {
			fn(inst)
		}
	}
}
