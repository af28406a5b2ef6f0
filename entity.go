package depot

import (
	"fmt"
	"math"
)

// provisionalGeneration marks handles issued by a CommandBuffer before flush.
// The allocator never hands it out.
const provisionalGeneration = math.MaxUint32

// Entity is a generation-checked handle to an object in a World.
// Two handles are the same entity only if both fields match.
type Entity struct {
	Index      uint32
	Generation uint32
}

// IsProvisional reports whether e was issued by CommandBuffer.EnqueueSpawn and
// has not been resolved by a flush.
func (e Entity) IsProvisional() bool {
	return e.Generation == provisionalGeneration
}

func (e Entity) String() string {
	if e.IsProvisional() {
		return fmt.Sprintf("%dp", e.Index)
	}
	return fmt.Sprintf("%dv%d", e.Index, e.Generation)
}

type entitySlot struct {
	generation uint32
	alive      bool
	archetype  ArchetypeID
}

type entityAllocator struct {
	slots []entitySlot
	free  []uint32
	alive int
}

func newEntityAllocator(capacity int) entityAllocator {
	return entityAllocator{
		slots: make([]entitySlot, 0, capacity),
	}
}

// spawn returns a recycled index with its bumped generation, or a fresh index at
// generation 0.
func (a *entityAllocator) spawn() Entity {
	a.alive++
	if n := len(a.free); n > 0 {
		index := a.free[n-1]
		a.free = a.free[:n-1]
		slot := &a.slots[index]
		slot.alive = true
		slot.archetype = 0
		return Entity{Index: index, Generation: slot.generation}
	}
	index := uint32(len(a.slots))
	a.slots = append(a.slots, entitySlot{alive: true})
	return Entity{Index: index}
}

// despawn is a no-op returning false for dead or stale handles.
func (a *entityAllocator) despawn(e Entity) bool {
	if !a.isAlive(e) {
		return false
	}
	slot := &a.slots[e.Index]
	slot.alive = false
	slot.generation++
	a.alive--
	// An index whose next generation would collide with provisional handles
	// is retired instead of recycled.
	if slot.generation != provisionalGeneration {
		a.free = append(a.free, e.Index)
	}
	return true
}

func (a *entityAllocator) isAlive(e Entity) bool {
	if int(e.Index) >= len(a.slots) {
		return false
	}
	slot := a.slots[e.Index]
	return slot.alive && slot.generation == e.Generation
}

// slot returns the live slot for e, or nil when e is stale.
func (a *entityAllocator) slot(e Entity) *entitySlot {
	if !a.isAlive(e) {
		return nil
	}
	return &a.slots[e.Index]
}

func (a *entityAllocator) aliveCount() int {
	return a.alive
}

func (a *entityAllocator) capacity() int {
	return len(a.slots)
}
