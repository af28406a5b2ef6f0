package depot

import (
	"log/slog"

	"github.com/rotisserie/eris"
)

type operationType int

const (
	opSpawn operationType = iota
	opInsert
	opRemove
	opDespawn
)

func (t operationType) String() string {
	switch t {
	case opSpawn:
		return "spawn"
	case opInsert:
		return "insert"
	case opRemove:
		return "remove"
	case opDespawn:
		return "despawn"
	default:
		return "unknown"
	}
}

type operation struct {
	typ        operationType
	entity     Entity
	values     []ComponentValue
	components []Component
}

// CommandBuffer queues structural changes so systems can request them while
// queries are iterating. Commands apply in the order they were queued when
// Flush runs.
type CommandBuffer struct {
	ops             []operation
	nextProvisional uint32
}

// NewCommandBuffer returns an empty buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// EnqueueSpawn queues a new entity with values and returns a provisional handle
// that later commands in this buffer may target. The entity is not visible
// to queries until Flush.
func (cb *CommandBuffer) EnqueueSpawn(values ...ComponentValue) Entity {
	e := Entity{Index: cb.nextProvisional, Generation: provisionalGeneration}
	cb.nextProvisional++
	cb.ops = append(cb.ops, operation{typ: opSpawn, entity: e, values: values})
	return e
}

// EnqueueInsert queues inserting values on e, which may be provisional.
func (cb *CommandBuffer) EnqueueInsert(e Entity, values ...ComponentValue) {
	cb.ops = append(cb.ops, operation{typ: opInsert, entity: e, values: values})
}

// EnqueueRemove queues removing components from e. Removed values are dropped.
func (cb *CommandBuffer) EnqueueRemove(e Entity, components ...Component) {
	cb.ops = append(cb.ops, operation{typ: opRemove, entity: e, components: components})
}

// EnqueueDespawn queues despawning e.
func (cb *CommandBuffer) EnqueueDespawn(e Entity) {
	cb.ops = append(cb.ops, operation{typ: opDespawn, entity: e})
}

// Len is the number of queued commands.
func (cb *CommandBuffer) Len() int {
	return len(cb.ops)
}

// Clear discards every queued command.
func (cb *CommandBuffer) Clear() {
	clear(cb.ops)
	cb.ops = cb.ops[:0]
	cb.nextProvisional = 0
}

// Flush applies the queued commands to w in order and empties the buffer.
// Commands naming stale entities, or provisional handles from another buffer,
// are skipped. A locked world is rejected before anything is applied.
func (cb *CommandBuffer) Flush(w *World) error {
	if w.locked {
		return eris.Wrapf(LockedWorldError{}, "failed to flush %d queued commands", len(cb.ops))
	}
	if len(cb.ops) == 0 {
		return nil
	}

	spawned := make(map[uint32]Entity)
	resolve := func(e Entity) Entity {
		if !e.IsProvisional() {
			return e
		}
		if resolved, ok := spawned[e.Index]; ok {
			return resolved
		}
		return e
	}

	// Register every component type up front so a registration failure
	// cannot leave the buffer half applied.
	for _, op := range cb.ops {
		for _, v := range op.values {
			w.components.register(v.Component().meta())
		}
	}

	skipped := 0
	for _, op := range cb.ops {
		switch op.typ {
		case opSpawn:
			spawned[op.entity.Index] = w.SpawnWith(op.values...)
		case opInsert:
			e := resolve(op.entity)
			for _, v := range op.values {
				if !w.insertComponentValue(e, v) {
					skipped++
				}
			}
		case opRemove:
			e := resolve(op.entity)
			if !w.IsAlive(e) {
				skipped++
				continue
			}
			for _, c := range op.components {
				w.RemoveComponent(e, c)
			}
		case opDespawn:
			if !w.Despawn(resolve(op.entity)) {
				skipped++
			}
		}
	}

	w.logger.Debug("depot: command buffer flushed",
		slog.Int("commands", len(cb.ops)),
		slog.Int("spawned", len(spawned)),
		slog.Int("skipped", skipped))
	cb.Clear()
	return nil
}
