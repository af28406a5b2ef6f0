package depot

import "github.com/TheBitDrifter/table"

type factory struct{}

var Factory factory

// NewWorld returns a world assigning component ids through schema.
func (f factory) NewWorld(schema table.Schema) *World {
	return newWorld(schema)
}

func (f factory) NewFilter() Filter {
	return newFilter()
}

func (f factory) NewCursor(query *Query) *Cursor {
	return newCursor(query)
}

func (f factory) NewCommandBuffer() *CommandBuffer {
	return NewCommandBuffer()
}

func (f factory) NewScheduler() *Scheduler {
	return NewScheduler()
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
