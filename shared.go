package depot

import "sync"

// SharedWorld guards a World with a read/write mutex for code that reaches it
// from several goroutines outside the scheduler. Every call holds the lock
// for its whole duration, so each operation is atomic with respect to the
// others.
type SharedWorld struct {
	mu    sync.RWMutex
	world *World
}

func NewSharedWorld(w *World) *SharedWorld {
	return &SharedWorld{world: w}
}

func (s *SharedWorld) Spawn() Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Spawn()
}

func (s *SharedWorld) SpawnWith(values ...ComponentValue) Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.SpawnWith(values...)
}

func (s *SharedWorld) Despawn(e Entity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Despawn(e)
}

func (s *SharedWorld) IsAlive(e Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.IsAlive(e)
}

func (s *SharedWorld) EntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.EntityCount()
}

// Read runs fn with shared access. fn must not change the world.
func (s *SharedWorld) Read(fn func(w *World)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.world)
}

// Write runs fn with exclusive access.
func (s *SharedWorld) Write(fn func(w *World)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.world)
}

// SharedInsert is Insert under the write lock.
func SharedInsert[T any](s *SharedWorld, e Entity, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Insert(s.world, e, v)
}

// SharedRemove is Remove under the write lock.
func SharedRemove[T any](s *SharedWorld, e Entity) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Remove[T](s.world, e)
}

// SharedGet copies the T component of e under the read lock.
func SharedGet[T any](s *SharedWorld, e Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Get[T](s.world, e)
}

// SharedUpdate applies fn to the T component of e under the write lock.
// Returns false when e is stale or lacks T.
func SharedUpdate[T any](s *SharedWorld, e Entity, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := GetMut[T](s.world, e)
	if p == nil {
		return false
	}
	fn(p)
	return true
}
