package depot

import (
	"context"
	"slices"
	"testing"

	"github.com/TheBitDrifter/depot/internal/interleave"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// worldState is a comparable summary of a world: live entities with their
// Health, sorted by index.
type worldState struct {
	Entity Entity
	Health int
	Has    bool
}

func snapshot(w *World) []worldState {
	var out []worldState
	for a := range w.Archetypes() {
		for _, e := range a.Entities() {
			h, ok := Get[Health](w, e)
			out = append(out, worldState{Entity: e, Health: h.Current, Has: ok})
		}
	}
	slices.SortFunc(out, func(a, b worldState) int { return int(a.Entity.Index) - int(b.Entity.Index) })
	return out
}

// checkInvariants verifies row alignment, index ownership and allocator
// bookkeeping after a replay.
func checkInvariants(w *World) error {
	seen := make(map[uint32]bool)
	total := 0
	for _, a := range w.archetypes.asSlice {
		a.checkAligned()
		for _, e := range a.Entities() {
			if seen[e.Index] {
				return eris.Errorf("entity index %d stored twice", e.Index)
			}
			seen[e.Index] = true
			if !w.IsAlive(e) {
				return eris.Errorf("archetype %d holds dead entity %s", a.id, e)
			}
			if id, _ := w.ArchetypeOf(e); id != a.id {
				return eris.Errorf("entity %s recorded in archetype %d, stored in %d", e, id, a.id)
			}
		}
		total += a.Len()
	}
	if total != w.EntityCount() {
		return eris.Errorf("%d stored entities, allocator counts %d", total, w.EntityCount())
	}
	return nil
}

// replaySequential runs the steps of threads in schedule order on one
// goroutine, the model each concurrent replay must agree with.
func replaySequential(schedule []int, threads []interleave.Thread) {
	next := make([]int, len(threads))
	for _, t := range schedule {
		threads[t][next[t]]()
		next[t]++
	}
}

func TestSharedWorldInterleavings(t *testing.T) {
	type fixture struct {
		shared  *SharedWorld
		threads []interleave.Thread
	}

	scenarios := []struct {
		name  string
		build func() fixture
	}{
		{
			name: "spawn and despawn on disjoint entities",
			build: func() fixture {
				s := NewSharedWorld(NewWorld())
				victim := s.SpawnWith(Value(Health{Current: 1}))
				var spawned Entity
				return fixture{s, []interleave.Thread{
					{
						func() { spawned = s.Spawn() },
						func() { SharedInsert(s, spawned, Health{Current: 5}) },
					},
					{
						func() { s.Despawn(victim) },
						func() { s.Spawn() },
					},
				}}
			},
		},
		{
			name: "insert, remove and read on one entity",
			build: func() fixture {
				s := NewSharedWorld(NewWorld())
				e := s.SpawnWith(Value(Position{}))
				return fixture{s, []interleave.Thread{
					{
						func() { SharedInsert(s, e, Health{Current: 2}) },
						func() { SharedUpdate(s, e, func(h *Health) { h.Current *= 10 }) },
					},
					{
						func() { SharedRemove[Health](s, e) },
						func() { SharedGet[Health](s, e) },
					},
					{
						func() { SharedInsert(s, e, Velocity{}) },
						func() { s.IsAlive(e) },
					},
				}}
			},
		},
		{
			name: "despawn racing insert on the same entity",
			build: func() fixture {
				s := NewSharedWorld(NewWorld())
				e := s.SpawnWith(Value(Health{Current: 1}))
				return fixture{s, []interleave.Thread{
					{
						func() { SharedInsert(s, e, Velocity{X: 1}) },
						func() { SharedUpdate(s, e, func(h *Health) { h.Current++ }) },
					},
					{
						func() { s.Despawn(e) },
						func() { s.Despawn(e) },
					},
				}}
			},
		},
		{
			name: "recycled index never aliases",
			build: func() fixture {
				s := NewSharedWorld(NewWorld())
				old := s.Spawn()
				return fixture{s, []interleave.Thread{
					{
						func() { s.Despawn(old) },
						func() { s.Spawn() },
					},
					{
						func() { SharedInsert(s, old, Health{Current: 9}) },
						func() { SharedInsert(s, old, Health{Current: 10}) },
					},
				}}
			},
		},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			var current fixture
			explored, err := interleave.Explore(context.Background(), interleave.Scenario{
				Setup: func() []interleave.Thread {
					current = sc.build()
					return current.threads
				},
				Check: func(schedule []int) error {
					var got []worldState
					current.shared.Read(func(w *World) {
						got = snapshot(w)
					})
					if err := checkInvariants(current.shared.world); err != nil {
						return err
					}
					model := sc.build()
					replaySequential(schedule, model.threads)
					if want := snapshot(model.shared.world); !slices.Equal(got, want) {
						return eris.Errorf("got %v, sequential model %v", got, want)
					}
					return nil
				},
			})
			require.NoError(t, err)
			assert.Greater(t, explored, 1)
		})
	}
}

func TestSharedWorldFree(t *testing.T) {
	s := NewSharedWorld(NewWorld())
	seed := make([]Entity, 8)
	for i := range seed {
		seed[i] = s.SpawnWith(Value(Health{Current: i}))
	}

	var threads []interleave.Thread
	for g := 0; g < 3; g++ {
		var steps interleave.Thread
		for i := 0; i < 50; i++ {
			e := seed[(g+i)%len(seed)]
			switch i % 5 {
			case 0:
				steps = append(steps, func() { s.Spawn() })
			case 1:
				steps = append(steps, func() { SharedInsert(s, e, Velocity{X: 1}) })
			case 2:
				steps = append(steps, func() { SharedGet[Health](s, e) })
			case 3:
				steps = append(steps, func() { SharedRemove[Velocity](s, e) })
			case 4:
				steps = append(steps, func() { s.IsAlive(e) })
			}
		}
		threads = append(threads, steps)
	}
	interleave.Free(threads...)

	s.Write(func(w *World) {
		require.NoError(t, checkInvariants(w))
	})
	assert.Equal(t, 8+3*10, s.EntityCount())
}
