package depot

// moveEntity relocates e from src to dst, carrying every column the two
// archetypes share. The source row is swap-removed without dropping, since the
// values now live in dst. Returns the destination row.
func (w *World) moveEntity(e Entity, src, dst *archetype) int {
	row, _ := src.rows.Row(e.Index)
	dstRow := dst.rows.Insert(e.Index, e)
	for i, cid := range dst.componentIDs {
		if from := src.column(cid); from != nil {
			from.transfer(dst.columns[i], row)
		} else {
			dst.columns[i].pushZero()
		}
	}
	src.removeRow(e, false)
	dst.checkAligned()
	w.entities.slots[e.Index].archetype = dst.id
	w.version++
	return dstRow
}

// insertValue sets the component cid of e through set, moving e to the archetype
// that includes cid when needed. A value being overwritten is dropped first.
// Returns false for stale handles.
func (w *World) insertValue(e Entity, cid componentID, set func(col blobArray, row int)) bool {
	w.checkUnlocked()
	slot := w.entities.slot(e)
	if slot == nil {
		return false
	}
	src := w.archetypes.get(slot.archetype)
	if col := src.column(cid); col != nil {
		row, _ := src.rows.Row(e.Index)
		col.dropAt(row)
		set(col, row)
		return true
	}
	dst := w.archetypeWith(src, cid)
	row := w.moveEntity(e, src, dst)
	set(dst.column(cid), row)
	return true
}

// removeComponent moves e to the archetype without cid. The removed value is
// dropped when drop is set; otherwise the caller has already taken it.
func (w *World) removeComponent(e Entity, cid componentID, drop bool) bool {
	w.checkUnlocked()
	slot := w.entities.slot(e)
	if slot == nil {
		return false
	}
	src := w.archetypes.get(slot.archetype)
	col := src.column(cid)
	if col == nil {
		return false
	}
	if drop {
		row, _ := src.rows.Row(e.Index)
		col.dropAt(row)
	}
	dst := w.archetypeWithout(src, cid)
	w.moveEntity(e, src, dst)
	return true
}

// insertComponentValue is the type-erased insert used by command buffers.
func (w *World) insertComponentValue(e Entity, v ComponentValue) bool {
	w.checkUnlocked()
	cid := w.components.register(v.Component().meta())
	return w.insertValue(e, cid, v.set)
}
