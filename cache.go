package depot

import (
	"iter"

	"github.com/rotisserie/eris"
)

var _ Cache[any] = &SimpleCache[any]{}

// ErrCacheFull is returned by Register once the cache holds its capacity.
var ErrCacheFull = eris.New("cache at maximum capacity")

func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[T]) GetItem(index int) *T {
	item := &c.items[index]
	return item
}

func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	item := &c.items[index]
	return item
}

// Register stores item under key and returns its index. Keys are unique.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, DuplicateSystemError{Name: key}
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, eris.Wrapf(ErrCacheFull, "cannot register %q (capacity %d)", key, c.maxCapacity)
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}

// Items yields every item in registration order.
func (c *SimpleCache[T]) Items() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range c.items {
			if !yield(i, &c.items[i]) {
				return
			}
		}
	}
}

func (c *SimpleCache[T]) Len() int {
	return len(c.items)
}

func (c *SimpleCache[T]) Clear() {
	c.items = c.items[:0]
	c.itemIndices = make(map[string]int)
}
