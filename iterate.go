package depot

import "iter"

// Batch is one matching archetype seen through a query. Column slices and the
// entity slice are row-aligned and valid until the next structural change.
type Batch struct {
	world *World
	arch  *archetype
}

// Batches yields every non-empty matching archetype in ascending id order.
func (q *Query) Batches() iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		q.refresh()
		version := q.world.version
		for _, a := range q.matched {
			if a.Len() == 0 {
				continue
			}
			if !yield(Batch{world: q.world, arch: a}) {
				return
			}
			q.world.checkVersion(version)
		}
	}
}

func (b Batch) Archetype() ArchetypeID {
	return b.arch.id
}

func (b Batch) Len() int {
	return b.arch.Len()
}

func (b Batch) Entities() []Entity {
	return b.arch.Entities()
}

// Column returns the packed T values of the batch, or nil when the archetype
// does not carry T.
func Column[T any](b Batch) []T {
	cid, ok := b.world.components.lookup(componentFor[T]())
	if !ok {
		return nil
	}
	col := b.arch.column(cid)
	if col == nil {
		return nil
	}
	return col.(*blob[T]).Slice()
}

// typedColumn caches the typed column of the cursor's current archetype.
type typedColumn[T any] struct {
	ct   *componentType
	arch *archetype
	data *blob[T]
}

func (tc *typedColumn[T]) get(c *Cursor) *T {
	if tc.arch != c.currentArchetype {
		tc.arch = c.currentArchetype
		tc.data = c.column(tc.ct).(*blob[T])
	}
	return tc.data.Get(c.row())
}

// Query1 iterates entities carrying A.
type Query1[A any] struct {
	cursor *Cursor
	a      typedColumn[A]
}

// NewQuery1 selects entities with A and none of excluded.
func NewQuery1[A any](w *World, excluded ...Component) *Query1[A] {
	ca := componentFor[A]()
	q := w.Query(Types(ca), excluded)
	return &Query1[A]{
		cursor: q.Cursor(),
		a:      typedColumn[A]{ct: ca},
	}
}

func (q *Query1[A]) Next() bool     { return q.cursor.Next() }
func (q *Query1[A]) Entity() Entity { return q.cursor.Entity() }
func (q *Query1[A]) Reset()         { q.cursor.Reset() }
func (q *Query1[A]) Count() int     { return q.cursor.TotalMatched() }

// Get returns the A value of the current entity.
func (q *Query1[A]) Get() *A {
	return q.a.get(q.cursor)
}

// All ranges over entity and value pairs.
func (q *Query1[A]) All() iter.Seq2[Entity, *A] {
	return func(yield func(Entity, *A) bool) {
		defer q.Reset()
		for q.Next() {
			if !yield(q.Entity(), q.Get()) {
				return
			}
		}
	}
}

// Query2 iterates entities carrying A and B.
type Query2[A, B any] struct {
	cursor *Cursor
	a      typedColumn[A]
	b      typedColumn[B]
}

func NewQuery2[A, B any](w *World, excluded ...Component) *Query2[A, B] {
	ca, cb := componentFor[A](), componentFor[B]()
	q := w.Query(Types(ca, cb), excluded)
	return &Query2[A, B]{
		cursor: q.Cursor(),
		a:      typedColumn[A]{ct: ca},
		b:      typedColumn[B]{ct: cb},
	}
}

func (q *Query2[A, B]) Next() bool     { return q.cursor.Next() }
func (q *Query2[A, B]) Entity() Entity { return q.cursor.Entity() }
func (q *Query2[A, B]) Reset()         { q.cursor.Reset() }
func (q *Query2[A, B]) Count() int     { return q.cursor.TotalMatched() }

func (q *Query2[A, B]) Get() (*A, *B) {
	return q.a.get(q.cursor), q.b.get(q.cursor)
}

// Query3 iterates entities carrying A, B and C.
type Query3[A, B, C any] struct {
	cursor *Cursor
	a      typedColumn[A]
	b      typedColumn[B]
	c      typedColumn[C]
}

func NewQuery3[A, B, C any](w *World, excluded ...Component) *Query3[A, B, C] {
	ca, cb, cc := componentFor[A](), componentFor[B](), componentFor[C]()
	q := w.Query(Types(ca, cb, cc), excluded)
	return &Query3[A, B, C]{
		cursor: q.Cursor(),
		a:      typedColumn[A]{ct: ca},
		b:      typedColumn[B]{ct: cb},
		c:      typedColumn[C]{ct: cc},
	}
}

func (q *Query3[A, B, C]) Next() bool     { return q.cursor.Next() }
func (q *Query3[A, B, C]) Entity() Entity { return q.cursor.Entity() }
func (q *Query3[A, B, C]) Reset()         { q.cursor.Reset() }
func (q *Query3[A, B, C]) Count() int     { return q.cursor.TotalMatched() }

func (q *Query3[A, B, C]) Get() (*A, *B, *C) {
	return q.a.get(q.cursor), q.b.get(q.cursor), q.c.get(q.cursor)
}
