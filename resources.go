package depot

import "reflect"

// resources holds one singleton value per Go type, outside entity storage.
type resources struct {
	byType map[reflect.Type]any
}

func newResources() resources {
	return resources{byType: make(map[reflect.Type]any)}
}

// InsertResource stores v as the world's T resource, replacing any previous one.
func InsertResource[T any](w *World, v T) {
	p := new(T)
	*p = v
	w.resources.byType[reflect.TypeFor[T]()] = p
}

// Resource returns the world's T resource, or nil.
func Resource[T any](w *World) *T {
	p, ok := w.resources.byType[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return p.(*T)
}

// RemoveResource deletes the T resource and returns it.
func RemoveResource[T any](w *World) (T, bool) {
	key := reflect.TypeFor[T]()
	p, ok := w.resources.byType[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(w.resources.byType, key)
	return *p.(*T), true
}

func HasResource[T any](w *World) bool {
	_, ok := w.resources.byType[reflect.TypeFor[T]()]
	return ok
}
