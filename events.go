package depot

import (
	"fmt"
	"iter"
	"reflect"
)

type eventInstance[T any] struct {
	id    uint64
	value T
}

// Events is a double-buffered queue of T events. An event sent during one
// update stays readable through the next Update, then is discarded. Readers
// keep their own position, so several systems can consume the same events.
type Events[T any] struct {
	previous []eventInstance[T]
	current  []eventInstance[T]
	nextID   uint64
}

func NewEvents[T any]() *Events[T] {
	return &Events[T]{}
}

func (ev *Events[T]) Send(v T) {
	ev.current = append(ev.current, eventInstance[T]{id: ev.nextID, value: v})
	ev.nextID++
}

// Update rotates the buffers, dropping events sent two updates ago.
func (ev *Events[T]) Update() {
	clear(ev.previous)
	ev.previous, ev.current = ev.current, ev.previous[:0]
}

// Len is the number of events still readable.
func (ev *Events[T]) Len() int {
	return len(ev.previous) + len(ev.current)
}

// NewReader returns a reader that sees every event still buffered.
func (ev *Events[T]) NewReader() *EventReader[T] {
	return &EventReader[T]{events: ev, next: ev.oldestID()}
}

func (ev *Events[T]) oldestID() uint64 {
	if len(ev.previous) > 0 {
		return ev.previous[0].id
	}
	if len(ev.current) > 0 {
		return ev.current[0].id
	}
	return ev.nextID
}

// EventReader tracks how far one consumer has read.
type EventReader[T any] struct {
	events *Events[T]
	next   uint64
}

// Read yields the events this reader has not seen yet, oldest first.
func (r *EventReader[T]) Read() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, buf := range [2][]eventInstance[T]{r.events.previous, r.events.current} {
			for _, inst := range buf {
				if inst.id < r.next {
					continue
				}
				r.next = inst.id + 1
				if !yield(inst.value) {
					return
				}
			}
		}
	}
}

// RegisterEvents installs an Events[T] resource on the app's world and a
// PostUpdate system rotating it once per tick.
func RegisterEvents[T any](app *App) error {
	ev := NewEvents[T]()
	InsertResource(app.World, ev)
	name := fmt.Sprintf("events.update[%s]", reflect.TypeFor[T]())
	return app.AddSystem(PostUpdate, name, Access{}, func(ctx *SystemContext) error {
		ev.Update()
		return nil
	})
}

// EventsOf returns the Events[T] registered on w, or nil.
func EventsOf[T any](w *World) *Events[T] {
	p := Resource[*Events[T]](w)
	if p == nil {
		return nil
	}
	return *p
}
