package depot

import (
	"log/slog"
	"runtime"
)

// Config holds global configuration read by new worlds and schedulers.
var Config config = config{
	initialCapacity: 64,
}

type config struct {
	log             *slog.Logger
	initialCapacity int
	workers         int
}

// SetLogger sets the logger new worlds and schedulers write to. nil restores
// slog.Default.
func (c *config) SetLogger(l *slog.Logger) {
	c.log = l
}

// SetInitialCapacity sets how many entities each new archetype column and the
// entity allocator reserve up front.
func (c *config) SetInitialCapacity(n int) {
	if n < 0 {
		n = 0
	}
	c.initialCapacity = n
}

// SetParallel makes new schedulers run non-conflicting systems concurrently on
// up to workers goroutines. Zero keeps execution sequential and a negative
// value means runtime.GOMAXPROCS.
func (c *config) SetParallel(workers int) {
	c.workers = workers
}

func (c *config) logger() *slog.Logger {
	if c.log == nil {
		return slog.Default()
	}
	return c.log
}

func parallelWorkers(n int) int {
	if n < 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
