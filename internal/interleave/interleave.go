// Package interleave enumerates the interleavings of a few short step lists
// and replays each one on real goroutines, one step at a time.
//
// A Thread is a list of steps run by one goroutine. A schedule is a sequence
// of thread indexes: schedule [0 1 0] runs the first step of thread 0, then
// the first step of thread 1, then the second step of thread 0. The steps of a
// thread always run in order, on the same goroutine.
package interleave

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultTimeout bounds a single schedule replay. A replay that cannot finish
// in time is reported as a deadlock.
const DefaultTimeout = 5 * time.Second

// ErrDeadlock is the cause of errors returned for replays that time out.
var ErrDeadlock = eris.New("schedule did not complete")

type Step func()

type Thread []Step

// Schedules yields every interleaving of threads with the given step counts.
// The yielded slice is reused; copy it to keep it.
func Schedules(counts ...int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		total := 0
		for _, c := range counts {
			total += c
		}
		remaining := append([]int(nil), counts...)
		schedule := make([]int, 0, total)

		var walk func() bool
		walk = func() bool {
			if len(schedule) == total {
				return yield(schedule)
			}
			for t := range remaining {
				if remaining[t] == 0 {
					continue
				}
				remaining[t]--
				schedule = append(schedule, t)
				if !walk() {
					return false
				}
				schedule = schedule[:len(schedule)-1]
				remaining[t]++
			}
			return true
		}
		walk()
	}
}

// Count is the number of interleavings of threads with the given step counts,
// the multinomial (sum counts)! / prod(counts!).
func Count(counts ...int) int {
	n, total := 1, 0
	for _, c := range counts {
		// Multiply in binomial(total+c, c) one factor at a time so every
		// intermediate value stays an integer.
		for i := 1; i <= c; i++ {
			total++
			n = n * total / i
		}
	}
	return n
}

// Run replays schedule over threads. Each thread runs on its own goroutine but
// only advances when the schedule hands it the turn, so the steps execute in
// exactly the scheduled order. A panicking step aborts the replay with an
// error; a replay still running when ctx ends returns ErrDeadlock.
func Run(ctx context.Context, schedule []int, threads ...Thread) error {
	if err := validate(schedule, threads); err != nil {
		return err
	}

	turns := make([]chan struct{}, len(threads))
	for i := range turns {
		turns[i] = make(chan struct{})
	}
	type result struct {
		thread int
		panic  any
	}
	done := make(chan result)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for t, thread := range threads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, step := range thread {
				select {
				case <-turns[t]:
				case <-ctx.Done():
					return
				}
				r := result{thread: t}
				func() {
					defer func() { r.panic = recover() }()
					step()
				}()
				select {
				case done <- r:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	var err error
	for i, t := range schedule {
		select {
		case turns[t] <- struct{}{}:
		case <-ctx.Done():
			err = eris.Wrapf(ErrDeadlock, "thread %d never took turn %d of %v", t, i, schedule)
		}
		if err != nil {
			break
		}
		select {
		case r := <-done:
			if r.panic != nil {
				err = eris.Errorf("thread %d panicked at turn %d of %v: %v", r.thread, i, schedule, r.panic)
			}
		case <-ctx.Done():
			err = eris.Wrapf(ErrDeadlock, "thread %d blocked at turn %d of %v", t, i, schedule)
		}
		if err != nil {
			break
		}
	}
	cancel()
	if eris.Is(err, ErrDeadlock) {
		// A step stuck inside the code under test cannot be interrupted;
		// its goroutine is abandoned.
		return err
	}
	wg.Wait()
	return err
}

func validate(schedule []int, threads []Thread) error {
	counts := make([]int, len(threads))
	for _, t := range schedule {
		if t < 0 || t >= len(threads) {
			return eris.Errorf("schedule %v names thread %d of %d", schedule, t, len(threads))
		}
		counts[t]++
	}
	for t, thread := range threads {
		if counts[t] != len(thread) {
			return eris.Errorf("schedule %v gives thread %d %d turns for %d steps", schedule, t, counts[t], len(thread))
		}
	}
	return nil
}

// Scenario builds fresh state and threads for one replay and checks the state
// once the replay finishes.
type Scenario struct {
	Setup   func() []Thread
	Check   func(schedule []int) error
	Timeout time.Duration
}

// Explore replays every interleaving of the scenario and returns the first
// failure, or the number of schedules explored.
func Explore(ctx context.Context, sc Scenario) (int, error) {
	timeout := sc.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	probe := sc.Setup()
	counts := make([]int, len(probe))
	for i, thread := range probe {
		counts[i] = len(thread)
	}

	explored := 0
	for schedule := range Schedules(counts...) {
		threads := sc.Setup()
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		err := Run(runCtx, schedule, threads...)
		cancel()
		if err != nil {
			return explored, err
		}
		if sc.Check != nil {
			if err := sc.Check(schedule); err != nil {
				return explored, eris.Wrapf(err, "schedule %s", Format(schedule))
			}
		}
		explored++
	}
	return explored, nil
}

// Free runs every thread concurrently with no turnstile, for the race
// detector to observe real overlap.
func Free(threads ...Thread) {
	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, thread := range threads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for _, step := range thread {
				step()
			}
		}()
	}
	close(start)
	wg.Wait()
}

// Format renders a schedule compactly, e.g. "0-1-0".
func Format(schedule []int) string {
	s := ""
	for i, t := range schedule {
		if i > 0 {
			s += "-"
		}
		s += fmt.Sprint(t)
	}
	return s
}
