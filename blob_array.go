package depot

import (
	"reflect"

	"github.com/TheBitDrifter/depot/internal/assert"
)

// Dropper is implemented by component values that hold resources needing
// release when the value is destroyed or overwritten by a later insert. Drop
// is not called when a value moves between archetypes or is handed back to
// the caller by Remove.
type Dropper interface {
	Drop()
}

// blobArray is the type-erased face of a component column. Archetypes hold one
// per component type and only reach for the typed blob when a caller asks for
// values of a concrete type.
type blobArray interface {
	Len() int
	elemType() reflect.Type
	pushZero()
	// swapRemove moves the last row into row. The removed value is dropped
	// when drop is set.
	swapRemove(row int, drop bool)
	// transfer appends the value at row to dst, which must hold the same type.
	// The source row is left in place for the caller to swap-remove.
	transfer(dst blobArray, row int)
	// dropAt runs Drop on the value at row without removing it.
	dropAt(row int)
	reserve(n int)
	clear(drop bool)
}

var _ blobArray = &blob[struct{}]{}

// blob is the typed backing store of a blobArray.
type blob[T any] struct {
	data []T
}

func newBlob[T any](capacity int) *blob[T] {
	return &blob[T]{data: make([]T, 0, capacity)}
}

func (b *blob[T]) Len() int {
	return len(b.data)
}

func (b *blob[T]) elemType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Push appends v and returns its row.
func (b *blob[T]) Push(v T) int {
	b.data = append(b.data, v)
	return len(b.data) - 1
}

// Get returns a pointer to the value at row, valid until the column changes length.
func (b *blob[T]) Get(row int) *T {
	assert.InBounds(row, len(b.data))
	return &b.data[row]
}

// Slice exposes the packed column for row-indexed access.
func (b *blob[T]) Slice() []T {
	return b.data
}

// SwapRemove removes and returns the value at row without dropping it.
func (b *blob[T]) SwapRemove(row int) T {
	assert.InBounds(row, len(b.data))
	v := b.data[row]
	b.swapRemove(row, false)
	return v
}

func (b *blob[T]) pushZero() {
	var zero T
	b.data = append(b.data, zero)
}

func (b *blob[T]) swapRemove(row int, drop bool) {
	assert.InBounds(row, len(b.data))
	if drop {
		dropValue(&b.data[row])
	}
	last := len(b.data) - 1
	if row != last {
		b.data[row] = b.data[last]
	}
	var zero T
	b.data[last] = zero
	b.data = b.data[:last]
}

func (b *blob[T]) transfer(dst blobArray, row int) {
	assert.InBounds(row, len(b.data))
	typed, ok := dst.(*blob[T])
	assert.That(ok, "transfer of %s into column of %s", b.elemType(), dst.elemType())
	typed.data = append(typed.data, b.data[row])
}

func (b *blob[T]) dropAt(row int) {
	assert.InBounds(row, len(b.data))
	dropValue(&b.data[row])
}

func (b *blob[T]) reserve(n int) {
	if cap(b.data)-len(b.data) >= n {
		return
	}
	grown := make([]T, len(b.data), len(b.data)+n)
	copy(grown, b.data)
	b.data = grown
}

func (b *blob[T]) clear(drop bool) {
	if drop {
		for i := range b.data {
			dropValue(&b.data[i])
		}
	}
	clear(b.data)
	b.data = b.data[:0]
}

func dropValue[T any](v *T) {
	if d, ok := any(v).(Dropper); ok {
		d.Drop()
		return
	}
	if d, ok := any(*v).(Dropper); ok {
		// Pointer components start out nil when inserted by type only.
		if rv := reflect.ValueOf(d); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return
		}
		d.Drop()
	}
}
