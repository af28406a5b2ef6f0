package depot

import (
	"iter"
	"log/slog"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"github.com/google/uuid"
)

// MaxComponentTypes is the number of distinct component types one World can
// register. It bounds the bit width of archetype signatures.
const MaxComponentTypes = 64

// World owns every entity, archetype and resource. It is not safe for
// concurrent use; see SharedWorld and the Scheduler's parallel mode.
type World struct {
	id         uuid.UUID
	logger     *slog.Logger
	capacity   int
	entities   entityAllocator
	archetypes archetypes
	components componentRegistry
	resources  resources

	// version changes on every structural change so cursors can detect
	// mutation during iteration.
	version uint64
	locked  bool
}

type componentRegistry struct {
	schema table.Schema
	// bySeq maps a process-wide component seq to its id in this world, plus one.
	bySeq []int32
	types [MaxComponentTypes]*componentType
}

func newWorld(schema table.Schema) *World {
	id := uuid.New()
	w := &World{
		id:         id,
		logger:     Config.logger().With(slog.String("world", id.String())),
		capacity:   Config.initialCapacity,
		archetypes: newArchetypes(),
		components: componentRegistry{schema: schema},
		resources:  newResources(),
	}
	w.entities = newEntityAllocator(w.capacity)
	var empty mask.Mask
	w.getOrCreateArchetype(empty, nil)
	return w
}

// NewWorld returns a World with its own component schema.
func NewWorld() *World {
	return newWorld(table.Factory.NewSchema())
}

// ID identifies the world in logs.
func (w *World) ID() uuid.UUID {
	return w.id
}

func (r *componentRegistry) lookup(c *componentType) (componentID, bool) {
	if c.seq >= len(r.bySeq) || r.bySeq[c.seq] == 0 {
		return 0, false
	}
	return componentID(r.bySeq[c.seq] - 1), true
}

func (r *componentRegistry) register(c *componentType) componentID {
	if cid, ok := r.lookup(c); ok {
		return cid
	}
	r.schema.Register(c)
	bit := r.schema.RowIndexFor(c)
	if bit >= MaxComponentTypes {
		panic(ComponentLimitError{Component: c})
	}
	if c.seq >= len(r.bySeq) {
		grown := make([]int32, max(c.seq+1, 2*len(r.bySeq)))
		copy(grown, r.bySeq)
		r.bySeq = grown
	}
	r.bySeq[c.seq] = int32(bit) + 1
	r.types[bit] = c
	return componentID(bit)
}

// RegisterComponents assigns ids for the given types up front. Registration
// otherwise happens on first use. The registry is part of the world's
// structure, so a locked world rejects it.
func (w *World) RegisterComponents(components ...Component) {
	w.checkUnlocked()
	for _, c := range components {
		w.components.register(c.meta())
	}
}

// Spawn creates an entity with no components.
func (w *World) Spawn() Entity {
	w.checkUnlocked()
	e := w.entities.spawn()
	w.archetypes.get(0).pushEntity(e)
	w.version++
	return e
}

// SpawnWith creates an entity directly in the archetype of values, without
// intermediate transitions. A type given twice keeps its last value and the
// earlier one is dropped.
func (w *World) SpawnWith(values ...ComponentValue) Entity {
	w.checkUnlocked()
	ids := make([]componentID, len(values))
	for i, v := range values {
		ids[i] = w.components.register(v.Component().meta())
	}
	arch := w.archetypeFor(ids)
	e := w.entities.spawn()
	row := arch.pushEntity(e)
	var seen [MaxComponentTypes]bool
	for i, v := range values {
		col := arch.column(ids[i])
		if seen[ids[i]] {
			col.dropAt(row)
		}
		seen[ids[i]] = true
		v.set(col, row)
	}
	w.entities.slots[e.Index].archetype = arch.id
	w.version++
	return e
}

// Despawn removes e and all of its components. Stale handles return false and
// change nothing, so despawning twice is harmless.
func (w *World) Despawn(e Entity) bool {
	w.checkUnlocked()
	slot := w.entities.slot(e)
	if slot == nil {
		return false
	}
	w.archetypes.get(slot.archetype).removeRow(e, true)
	w.entities.despawn(e)
	w.version++
	return true
}

func (w *World) IsAlive(e Entity) bool {
	return w.entities.isAlive(e)
}

// EntityCount is the number of live entities.
func (w *World) EntityCount() int {
	return w.entities.aliveCount()
}

// ArchetypeOf returns the id of the archetype holding e.
func (w *World) ArchetypeOf(e Entity) (ArchetypeID, bool) {
	slot := w.entities.slot(e)
	if slot == nil {
		return 0, false
	}
	return slot.archetype, true
}

// Archetypes yields every archetype in ascending id order, empty ones included.
func (w *World) Archetypes() iter.Seq[Archetype] {
	return func(yield func(Archetype) bool) {
		for _, a := range w.archetypes.asSlice {
			if !yield(a) {
				return
			}
		}
	}
}

// ArchetypeCount is the number of archetypes created so far.
func (w *World) ArchetypeCount() int {
	return w.archetypes.len()
}

// Clear despawns every entity, dropping component values. Archetypes and
// their ids survive so iteration order of later spawns stays stable.
func (w *World) Clear() {
	w.checkUnlocked()
	for _, a := range w.archetypes.asSlice {
		for _, e := range a.Entities() {
			w.entities.despawn(e)
		}
		a.clear(true)
	}
	w.version++
}

// Lock forbids structural changes until Unlock. The scheduler holds the lock
// while systems run concurrently.
func (w *World) Lock() {
	w.locked = true
}

func (w *World) Unlock() {
	w.locked = false
}

func (w *World) Locked() bool {
	return w.locked
}

func (w *World) checkUnlocked() {
	if w.locked {
		panic(LockedWorldError{})
	}
}
