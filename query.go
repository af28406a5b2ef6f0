package depot

import (
	"iter"

	"github.com/TheBitDrifter/mask"
	iter_util "github.com/TheBitDrifter/util/iter"
)

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op         Operation
	children   []QueryNode
	components []Component
}

// filterNode is the required/excluded form behind World.Query.
type filterNode struct {
	required TypeSet
	excluded TypeSet
}

type filter struct {
	root QueryNode
}

func newFilter() Filter {
	return &filter{}
}

func newCompositeNode(op Operation, components []Component) *compositeNode {
	return &compositeNode{
		op:         op,
		children:   make([]QueryNode, 0),
		components: components,
	}
}

// maskFor builds the signature mask for components. missing counts components
// the world has never registered; no archetype can hold those.
func (w *World) maskFor(components []Component) (m mask.Mask, present, missing int) {
	for _, comp := range components {
		cid, ok := w.components.lookup(comp.meta())
		if !ok {
			missing++
			continue
		}
		m.Mark(uint32(cid))
		present++
	}
	return m, present, missing
}

func (n *compositeNode) Evaluate(archetype Archetype, world *World) bool {
	// Build mask at evaluation time
	nodeMask, present, missing := world.maskFor(n.components)
	archeMask := archetype.Signature()

	switch n.op {
	case OpAnd:
		if missing > 0 {
			return false
		}
		if present > 0 && !archeMask.ContainsAll(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(archetype, world) {
				return false
			}
		}
		return true

	case OpOr:
		if present > 0 && archeMask.ContainsAny(nodeMask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(archetype, world) {
				return true
			}
		}
		return false

	case OpNot:
		for _, child := range n.children {
			if child.Evaluate(archetype, world) {
				return false
			}
		}
		return present == 0 || archeMask.ContainsNone(nodeMask)
	}
	return false
}

func (n *filterNode) Evaluate(archetype Archetype, world *World) bool {
	required, present, missing := world.maskFor(n.required)
	if missing > 0 {
		return false
	}
	archeMask := archetype.Signature()
	if present > 0 && !archeMask.ContainsAll(required) {
		return false
	}
	excluded, present, _ := world.maskFor(n.excluded)
	return present == 0 || archeMask.ContainsNone(excluded)
}

func (f *filter) And(items ...interface{}) QueryNode {
	components, children := f.processItems(items...)
	node := newCompositeNode(OpAnd, components)
	node.children = children
	if f.root == nil {
		f.root = node
	}
	return node
}

func (f *filter) Or(items ...interface{}) QueryNode {
	components, children := f.processItems(items...)
	node := newCompositeNode(OpOr, components)
	node.children = children
	if f.root == nil {
		f.root = node
	}
	return node
}

func (f *filter) Not(items ...interface{}) QueryNode {
	components, children := f.processItems(items...)
	node := newCompositeNode(OpNot, components)
	node.children = children
	if f.root == nil {
		f.root = node
	}
	return node
}

func (f *filter) processItems(items ...interface{}) ([]Component, []QueryNode) {
	components := make([]Component, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case TypeSet:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}

	return components, children
}

func (f *filter) Evaluate(archetype Archetype, world *World) bool {
	if f.root == nil {
		return false
	}
	return f.root.Evaluate(archetype, world)
}

// Query is a filter bound to a world. The set of matching archetypes is cached
// and extended as the world creates new ones; since ids only grow, the cache
// stays in ascending id order.
type Query struct {
	world   *World
	node    QueryNode
	matched []*archetype
	scanned int
}

// Query selects entities whose signature contains every required type and
// none of the excluded ones.
func (w *World) Query(required, excluded TypeSet) *Query {
	return w.NewQuery(&filterNode{required: required, excluded: excluded})
}

// NewQuery binds an arbitrary node, such as one built with Factory.NewFilter.
func (w *World) NewQuery(node QueryNode) *Query {
	return &Query{world: w, node: node}
}

// refresh evaluates archetypes created since the last call.
func (q *Query) refresh() {
	as := q.world.archetypes.asSlice
	for ; q.scanned < len(as); q.scanned++ {
		if q.node.Evaluate(as[q.scanned], q.world) {
			q.matched = append(q.matched, as[q.scanned])
		}
	}
}

// Entities yields matching entities in ascending archetype id, then packed row
// order. The sequence can be ranged over again and restarts from the beginning.
func (q *Query) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		q.refresh()
		version := q.world.version
		for _, a := range q.matched {
			entities := a.Entities()
			for i := 0; i < len(entities); i++ {
				if !yield(entities[i]) {
					return
				}
				q.world.checkVersion(version)
			}
		}
	}
}

// Collect returns the matching entities as a new slice.
func (q *Query) Collect() []Entity {
	return iter_util.Collect(q.Entities())
}

// Count is the number of matching entities.
func (q *Query) Count() int {
	q.refresh()
	total := 0
	for _, a := range q.matched {
		total += a.Len()
	}
	return total
}

// Archetypes lists the ids of matching archetypes, empty ones included.
func (q *Query) Archetypes() []ArchetypeID {
	q.refresh()
	ids := make([]ArchetypeID, len(q.matched))
	for i, a := range q.matched {
		ids[i] = a.id
	}
	return ids
}

// Matches reports whether e is currently selected by the query.
func (q *Query) Matches(e Entity) bool {
	id, ok := q.world.ArchetypeOf(e)
	if !ok {
		return false
	}
	return q.node.Evaluate(q.world.archetypes.get(id), q.world)
}

// Cursor returns a stateful iterator over the query.
func (q *Query) Cursor() *Cursor {
	return newCursor(q)
}

func (w *World) checkVersion(version uint64) {
	if w.version != version {
		panic(StructuralChangeError{})
	}
}
