package depot

import "iter"

var _ iCursor = &Cursor{}

type iCursor interface {
	Entities() iter.Seq2[int, Entity]
	Next() bool
}

// Cursor walks a query one entity at a time:
//
//	for cursor.Next() {
//		pos := position.GetFromCursor(cursor)
//		...
//	}
//
// Structural changes while a cursor is mid-iteration panic; queue them on a
// CommandBuffer instead.
type Cursor struct {
	query *Query

	// Current iteration state
	currentArchetype *archetype
	storageIndex     int
	entityIndex      int
	remaining        int
	version          uint64

	initialized bool
}

func newCursor(query *Query) *Cursor {
	return &Cursor{
		query: query,
	}
}

// Next advances to the next matching entity. After it returns false the cursor
// is reset and can be reused.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	} else {
		c.query.world.checkVersion(c.version)
	}
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	matched := c.query.matched
	for c.storageIndex+1 < len(matched) {
		c.storageIndex++
		c.currentArchetype = matched[c.storageIndex]
		c.remaining = c.currentArchetype.Len()
		c.entityIndex = 0
		if c.remaining > 0 {
			c.entityIndex = 1
			return true
		}
	}
	c.Reset()
	return false
}

// Entities yields the row and entity of every match.
func (c *Cursor) Entities() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		defer c.Reset()
		for c.Next() {
			if !yield(c.row(), c.Entity()) {
				return
			}
		}
	}
}

func (c *Cursor) initialize() {
	c.query.refresh()
	c.storageIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.currentArchetype = nil
	if len(c.query.matched) > 0 {
		c.currentArchetype = c.query.matched[0]
		c.remaining = c.currentArchetype.Len()
	}
	c.version = c.query.world.version
	c.initialized = true
}

func (c *Cursor) Reset() {
	c.storageIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.currentArchetype = nil
	c.initialized = false
}

// Entity is the entity under the cursor.
func (c *Cursor) Entity() Entity {
	return c.currentArchetype.Entities()[c.row()]
}

// Archetype is the id of the archetype under the cursor.
func (c *Cursor) Archetype() ArchetypeID {
	return c.currentArchetype.id
}

func (c *Cursor) RemainingInArchetype() int {
	return c.remaining - c.entityIndex
}

func (c *Cursor) TotalMatched() int {
	return c.query.Count()
}

func (c *Cursor) row() int {
	return c.entityIndex - 1
}

func (c *Cursor) column(ct *componentType) blobArray {
	cid, ok := c.query.world.components.lookup(ct)
	if !ok {
		return nil
	}
	return c.currentArchetype.column(cid)
}
