package depot

import (
	"iter"

	"github.com/TheBitDrifter/mask"
)

// Archetype is a read-only view of the storage for one signature.
type Archetype interface {
	ID() uint32
	Signature() mask.Mask
	Len() int
	Entities() []Entity
}

// Filter builds QueryNode trees from components, TypeSets and other nodes.
// The first node built becomes the filter's root.
type Filter interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

type QueryNode interface {
	Evaluate(archetype Archetype, world *World) bool
}

// Plugin bundles systems and resources for an App.
type Plugin interface {
	Build(app *App) error
}

type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
	Items() iter.Seq2[int, *T]
	Len() int
	Clear()
}

type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}
