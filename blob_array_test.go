package depot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handle counts how many times it has been released.
type handle struct {
	id    int
	drops *[]int
}

func (h *handle) Drop() {
	*h.drops = append(*h.drops, h.id)
}

// valueHandle implements Dropper on the value receiver.
type valueHandle struct {
	id    int
	drops *[]int
}

func (h valueHandle) Drop() {
	*h.drops = append(*h.drops, h.id)
}

func TestBlobSwapRemove(t *testing.T) {
	b := newBlob[int](0)
	for i := 0; i < 5; i++ {
		require.Equal(t, i, b.Push(i*10))
	}

	assert.Equal(t, 10, b.SwapRemove(1))
	assert.Equal(t, []int{0, 40, 20, 30}, b.Slice())

	assert.Equal(t, 30, b.SwapRemove(3))
	assert.Equal(t, []int{0, 40, 20}, b.Slice())
	assert.Equal(t, 3, b.Len())
}

func TestBlobOutOfBounds(t *testing.T) {
	b := newBlob[int](0)
	b.Push(1)
	assert.Panics(t, func() { b.Get(1) })
	assert.Panics(t, func() { b.Get(-1) })
	assert.Panics(t, func() { b.swapRemove(3, false) })
}

func TestBlobDrop(t *testing.T) {
	var drops []int
	b := newBlob[handle](0)
	for i := 0; i < 4; i++ {
		b.Push(handle{id: i, drops: &drops})
	}

	b.swapRemove(1, true)
	assert.Equal(t, []int{1}, drops)

	b.swapRemove(0, false)
	assert.Equal(t, []int{1}, drops, "swapRemove without drop must not release")

	// Rows are now h2, h3.
	b.dropAt(0)
	assert.Equal(t, []int{1, 2}, drops)

	b.clear(true)
	assert.Equal(t, []int{1, 2, 2, 3}, drops)
	assert.Equal(t, 0, b.Len())
}

func TestBlobDropValueReceiver(t *testing.T) {
	var drops []int
	b := newBlob[valueHandle](0)
	b.Push(valueHandle{id: 7, drops: &drops})
	b.clear(true)
	assert.Equal(t, []int{7}, drops)
}

func TestBlobDropNilPointer(t *testing.T) {
	b := newBlob[*handle](0)
	b.pushZero()
	assert.NotPanics(t, func() { b.clear(true) })
}

func TestBlobTransfer(t *testing.T) {
	src, dst := newBlob[Position](0), newBlob[Position](0)
	src.Push(Position{X: 1})
	src.Push(Position{X: 2})

	src.transfer(dst, 1)
	assert.Equal(t, []Position{{X: 2}}, dst.Slice())
	assert.Equal(t, 2, src.Len(), "transfer leaves the source row for the caller")

	other := newBlob[Velocity](0)
	assert.Panics(t, func() { src.transfer(other, 0) })
}

func TestBlobReserve(t *testing.T) {
	b := newBlob[int](0)
	b.Push(1)
	b.reserve(100)
	assert.GreaterOrEqual(t, cap(b.data)-b.Len(), 100)
	assert.Equal(t, []int{1}, b.Slice())
}
