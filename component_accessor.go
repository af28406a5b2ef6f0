package depot

// AccessibleComponent is a typed component handle. It satisfies Component, so
// it can be used in queries and access sets, and it reads values for cursors
// and entities without going through the generic functions.
type AccessibleComponent[T any] struct {
	Component
}

// FactoryNewComponent returns the handle for T. Every call for the same T
// yields the same identity.
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	return AccessibleComponent[T]{Component: componentFor[T]()}
}

// GetFromCursor returns the value for the entity under the cursor. The
// cursor's query must require the component.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	col := cursor.column(c.meta())
	return col.(*blob[T]).Get(cursor.row())
}

// GetFromCursorSafe reports false when the current archetype lacks the component.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	col := cursor.column(c.meta())
	if col == nil {
		return false, nil
	}
	return true, col.(*blob[T]).Get(cursor.row())
}

// CheckCursor reports whether the archetype under the cursor has the component.
func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	return cursor.column(c.meta()) != nil
}

// GetFromEntity is GetMut for this component.
func (c AccessibleComponent[T]) GetFromEntity(w *World, e Entity) *T {
	return GetMut[T](w, e)
}

// Value pairs v with this component for SpawnWith and command buffers.
func (c AccessibleComponent[T]) Value(v T) ComponentValue {
	return componentValue[T]{c: c.meta(), v: v}
}

// Insert adds or overwrites the T component of e. Returns false for stale handles.
func Insert[T any](w *World, e Entity, v T) bool {
	w.checkUnlocked()
	cid := w.components.register(componentFor[T]())
	return w.insertValue(e, cid, func(col blobArray, row int) {
		*col.(*blob[T]).Get(row) = v
	})
}

// Remove detaches the T component of e and hands it back without dropping it.
func Remove[T any](w *World, e Entity) (T, bool) {
	var zero T
	w.checkUnlocked()
	p := GetMut[T](w, e)
	if p == nil {
		return zero, false
	}
	v := *p
	cid, _ := w.components.lookup(componentFor[T]())
	w.removeComponent(e, cid, false)
	return v, true
}

// Get returns a copy of the T component of e.
func Get[T any](w *World, e Entity) (T, bool) {
	p := GetMut[T](w, e)
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// GetMut returns a pointer to the T component of e, or nil. The pointer is
// valid until the next structural change to the world.
func GetMut[T any](w *World, e Entity) *T {
	cid, ok := w.components.lookup(componentFor[T]())
	if !ok {
		return nil
	}
	slot := w.entities.slot(e)
	if slot == nil {
		return nil
	}
	a := w.archetypes.get(slot.archetype)
	col := a.column(cid)
	if col == nil {
		return nil
	}
	row, _ := a.rows.Row(e.Index)
	return col.(*blob[T]).Get(row)
}

func Has[T any](w *World, e Entity) bool {
	return w.HasComponent(e, componentFor[T]())
}

// Count returns how many live entities carry T.
func Count[T any](w *World) int {
	cid, ok := w.components.lookup(componentFor[T]())
	if !ok {
		return 0
	}
	n := 0
	for _, a := range w.archetypes.asSlice {
		if a.has(cid) {
			n += a.Len()
		}
	}
	return n
}

// EntitiesWith lists the entities carrying T in query order.
func EntitiesWith[T any](w *World) []Entity {
	return w.Query(Types(componentFor[T]()), nil).Collect()
}

// HasComponent is the type-erased form of Has.
func (w *World) HasComponent(e Entity, c Component) bool {
	cid, ok := w.components.lookup(c.meta())
	if !ok {
		return false
	}
	slot := w.entities.slot(e)
	if slot == nil {
		return false
	}
	return w.archetypes.get(slot.archetype).has(cid)
}

// RemoveComponent detaches c from e and drops its value.
func (w *World) RemoveComponent(e Entity, c Component) bool {
	w.checkUnlocked()
	cid, ok := w.components.lookup(c.meta())
	if !ok {
		return false
	}
	return w.removeComponent(e, cid, true)
}

// Components lists the component types of e in id order.
func (w *World) Components(e Entity) []Component {
	slot := w.entities.slot(e)
	if slot == nil {
		return nil
	}
	a := w.archetypes.get(slot.archetype)
	out := make([]Component, len(a.componentIDs))
	for i, cid := range a.componentIDs {
		out[i] = w.components.types[cid]
	}
	return out
}
