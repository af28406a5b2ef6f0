package depot

import (
	"reflect"
	"sync"

	"github.com/TheBitDrifter/table"
)

// Component identifies a component type. Values come from FactoryNewComponent
// or TypeOf and can be used in queries, TypeSets and access declarations.
type Component interface {
	table.ElementType
	meta() *componentType
}

// componentType is the process-wide identity of one Go type used as a
// component. Worlds map it to their own dense ids through a table.Schema.
type componentType struct {
	table.ElementType
	seq       int
	rtype     reflect.Type
	newColumn func(capacity int) blobArray
}

func (c *componentType) meta() *componentType {
	return c
}

func (c *componentType) String() string {
	return c.rtype.String()
}

var componentTypes struct {
	mu     sync.Mutex
	byType sync.Map // reflect.Type -> *componentType
	count  int
}

func componentFor[T any]() *componentType {
	rtype := reflect.TypeFor[T]()
	if c, ok := componentTypes.byType.Load(rtype); ok {
		return c.(*componentType)
	}
	componentTypes.mu.Lock()
	defer componentTypes.mu.Unlock()
	if c, ok := componentTypes.byType.Load(rtype); ok {
		return c.(*componentType)
	}
	c := &componentType{
		ElementType: table.FactoryNewElementType[T](),
		seq:         componentTypes.count,
		rtype:       rtype,
		newColumn: func(capacity int) blobArray {
			return newBlob[T](capacity)
		},
	}
	componentTypes.count++
	componentTypes.byType.Store(rtype, c)
	return c
}

// TypeOf returns the Component identifying T.
func TypeOf[T any]() Component {
	return componentFor[T]()
}

// TypeSet is a set of component types used for query filters and scheduler
// access declarations. Duplicates are ignored.
type TypeSet []Component

// Types builds a TypeSet.
func Types(components ...Component) TypeSet {
	return TypeSet(components)
}

func (s TypeSet) contains(c Component) bool {
	m := c.meta()
	for _, other := range s {
		if other.meta() == m {
			return true
		}
	}
	return false
}

func (s TypeSet) overlaps(other TypeSet) bool {
	for _, c := range s {
		if other.contains(c) {
			return true
		}
	}
	return false
}

// ComponentValue is a component type paired with a value, used to spawn
// entities with a full signature at once and to queue inserts.
type ComponentValue interface {
	Component() Component
	push(col blobArray)
	set(col blobArray, row int)
}

type componentValue[T any] struct {
	c *componentType
	v T
}

// Value pairs v with its component type.
func Value[T any](v T) ComponentValue {
	return componentValue[T]{c: componentFor[T](), v: v}
}

func (cv componentValue[T]) Component() Component {
	return cv.c
}

func (cv componentValue[T]) push(col blobArray) {
	col.(*blob[T]).Push(cv.v)
}

func (cv componentValue[T]) set(col blobArray, row int) {
	*col.(*blob[T]).Get(row) = cv.v
}
