package depot

import (
	"github.com/TheBitDrifter/depot/internal/assert"
	"github.com/TheBitDrifter/mask"
)

// ArchetypeID is assigned monotonically as archetypes are created. Archetype
// 0 always holds entities with no components.
type ArchetypeID uint32

type componentID uint32

const noColumn = -1

// archetype stores every entity with exactly one signature. rows is keyed by
// entity index and its dense array is the packed entity list: row i of every
// column belongs to rows.Values()[i].
type archetype struct {
	id           ArchetypeID
	signature    mask.Mask
	componentIDs []componentID
	columns      []blobArray
	slots        [MaxComponentTypes]int
	rows         SparseSet[Entity]

	// Transition edges, filled lazily.
	addEdges    map[componentID]ArchetypeID
	removeEdges map[componentID]ArchetypeID
}

func newArchetype(id ArchetypeID, signature mask.Mask, ids []componentID, reg *componentRegistry, capacity int) *archetype {
	a := &archetype{
		id:           id,
		signature:    signature,
		componentIDs: ids,
		columns:      make([]blobArray, len(ids)),
		addEdges:     make(map[componentID]ArchetypeID),
		removeEdges:  make(map[componentID]ArchetypeID),
	}
	for i := range a.slots {
		a.slots[i] = noColumn
	}
	for i, cid := range ids {
		a.columns[i] = reg.types[cid].newColumn(capacity)
		a.slots[cid] = i
	}
	a.rows.init(capacity)
	return a
}

func (a *archetype) ID() uint32 {
	return uint32(a.id)
}

func (a *archetype) Signature() mask.Mask {
	return a.signature
}

func (a *archetype) Len() int {
	return a.rows.Len()
}

// Entities returns the packed entity list. The slice is owned by the archetype.
func (a *archetype) Entities() []Entity {
	return a.rows.Values()
}

func (a *archetype) has(cid componentID) bool {
	return a.slots[cid] != noColumn
}

func (a *archetype) column(cid componentID) blobArray {
	slot := a.slots[cid]
	if slot == noColumn {
		return nil
	}
	return a.columns[slot]
}

// pushEntity adds e with zeroed columns and returns its row.
func (a *archetype) pushEntity(e Entity) int {
	row := a.rows.Insert(e.Index, e)
	for _, col := range a.columns {
		col.pushZero()
	}
	a.checkAligned()
	return row
}

// removeRow swap-removes e from every column and from the row index. Values
// are dropped only when drop is set.
func (a *archetype) removeRow(e Entity, drop bool) {
	row, ok := a.rows.Row(e.Index)
	assert.That(ok, "entity %s missing from archetype %d", e, a.id)
	for _, col := range a.columns {
		col.swapRemove(row, drop)
	}
	a.rows.Remove(e.Index)
	a.checkAligned()
}

func (a *archetype) clear(drop bool) {
	for _, col := range a.columns {
		col.clear(drop)
	}
	a.rows.Clear()
}

func (a *archetype) checkAligned() {
	n := a.rows.Len()
	for i, col := range a.columns {
		assert.That(col.Len() == n, "archetype %d column %d has %d rows, want %d", a.id, a.componentIDs[i], col.Len(), n)
	}
}
