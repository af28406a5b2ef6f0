package depot

import (
	"log/slog"
	"slices"

	"github.com/TheBitDrifter/mask"
)

// archetypes is the ordered archetype store. asSlice is indexed by id, and ids
// are handed out in creation order and never reused, so walking asSlice is
// walking ascending ids.
type archetypes struct {
	nextID           ArchetypeID
	asSlice          []*archetype
	idsGroupedByMask map[mask.Mask]ArchetypeID
}

func newArchetypes() archetypes {
	return archetypes{
		idsGroupedByMask: make(map[mask.Mask]ArchetypeID),
	}
}

func (as *archetypes) get(id ArchetypeID) *archetype {
	return as.asSlice[id]
}

func (as *archetypes) len() int {
	return len(as.asSlice)
}

// getOrCreateArchetype returns the archetype for ids, creating it when the signature has
// not been seen. ids must be sorted ascending.
func (w *World) getOrCreateArchetype(signature mask.Mask, ids []componentID) *archetype {
	as := &w.archetypes
	if id, found := as.idsGroupedByMask[signature]; found {
		return as.asSlice[id]
	}
	created := newArchetype(as.nextID, signature, ids, &w.components, w.capacity)
	as.asSlice = append(as.asSlice, created)
	as.idsGroupedByMask[signature] = as.nextID
	as.nextID++
	w.logger.Debug("depot: archetype created",
		slog.Uint64("archetype", uint64(created.id)),
		slog.Int("components", len(ids)))
	return created
}

// archetypeWith follows or fills the add edge of src for cid.
func (w *World) archetypeWith(src *archetype, cid componentID) *archetype {
	if id, ok := src.addEdges[cid]; ok {
		return w.archetypes.get(id)
	}
	signature := src.signature
	signature.Mark(uint32(cid))
	ids := make([]componentID, 0, len(src.componentIDs)+1)
	ids = append(ids, src.componentIDs...)
	ids = append(ids, cid)
	slices.Sort(ids)

	dst := w.getOrCreateArchetype(signature, ids)
	src.addEdges[cid] = dst.id
	dst.removeEdges[cid] = src.id
	return dst
}

// archetypeWithout follows or fills the remove edge of src for cid.
func (w *World) archetypeWithout(src *archetype, cid componentID) *archetype {
	if id, ok := src.removeEdges[cid]; ok {
		return w.archetypes.get(id)
	}
	signature := src.signature
	signature.Unmark(uint32(cid))
	ids := make([]componentID, 0, len(src.componentIDs))
	for _, id := range src.componentIDs {
		if id != cid {
			ids = append(ids, id)
		}
	}

	dst := w.getOrCreateArchetype(signature, ids)
	src.removeEdges[cid] = dst.id
	dst.addEdges[cid] = src.id
	return dst
}

// archetypeFor resolves a full set of component ids, as used by SpawnWith.
func (w *World) archetypeFor(ids []componentID) *archetype {
	var signature mask.Mask
	for _, cid := range ids {
		signature.Mark(uint32(cid))
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return w.getOrCreateArchetype(signature, sorted)
}

// SpawnBatch creates n entities carrying zero values of components, reserving
// column space once for the whole batch.
func (w *World) SpawnBatch(n int, components ...Component) []Entity {
	w.checkUnlocked()
	if n <= 0 {
		return nil
	}
	ids := make([]componentID, len(components))
	for i, c := range components {
		ids[i] = w.components.register(c.meta())
	}
	arch := w.archetypeFor(ids)
	for _, col := range arch.columns {
		col.reserve(n)
	}

	entities := make([]Entity, n)
	for i := range entities {
		e := w.entities.spawn()
		arch.pushEntity(e)
		w.entities.slots[e.Index].archetype = arch.id
		entities[i] = e
	}
	w.version++
	return entities
}

// DespawnBatch despawns every live entity in entities and returns how many
// were removed.
func (w *World) DespawnBatch(entities ...Entity) int {
	removed := 0
	for _, e := range entities {
		if w.Despawn(e) {
			removed++
		}
	}
	return removed
}
