package depot

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/rotisserie/eris"
)

// maxSystems bounds the system name registry.
const maxSystems = 4096

// Access declares which component types a system reads and writes. The
// scheduler only ever looks at declarations; it never inspects what a system
// actually touches.
type Access struct {
	Reads  TypeSet
	Writes TypeSet
	// Exclusive systems need the whole world, including structural changes.
	// They conflict with every other system and run with the world unlocked.
	Exclusive bool
}

// Conflicts reports whether two systems may not run at the same time: either
// is exclusive, or one writes a type the other reads or writes.
func (a Access) Conflicts(other Access) bool {
	if a.Exclusive || other.Exclusive {
		return true
	}
	return a.Writes.overlaps(other.Writes) ||
		a.Writes.overlaps(other.Reads) ||
		a.Reads.overlaps(other.Writes)
}

// SystemFunc is the body of a system.
type SystemFunc func(ctx *SystemContext) error

// SystemContext is what a system sees while it runs.
type SystemContext struct {
	World *World
	// Commands is private to the system and flushed when its stage ends.
	Commands *CommandBuffer
	Stage    Stage
	Tick     uint64
	Logger   *slog.Logger
}

// SystemDescriptor names a system with its access declaration.
type SystemDescriptor struct {
	Name   string
	Access Access
	Run    SystemFunc
}

type systemState struct {
	SystemDescriptor
	stage    Stage
	set      int
	commands *CommandBuffer
}

// Scheduler runs systems stage by stage.
//
// By default systems in a stage run one after another in registration order,
// which makes a tick reproducible run to run. With parallel execution enabled,
// consecutive systems whose declared access does not conflict are grouped into
// batches that run concurrently while the world is locked; conflicting systems
// keep their registration order across batches.
type Scheduler struct {
	systems [stageCount][]*systemState
	batches [stageCount][][]*systemState
	names   Cache[*systemState]
	nextSet int
	workers int
	tick    uint64
	logger  *slog.Logger
}

// NewScheduler returns a scheduler using the parallelism set in Config.
func NewScheduler() *Scheduler {
	return &Scheduler{
		names:   FactoryNewCache[*systemState](maxSystems),
		workers: parallelWorkers(Config.workers),
		logger:  Config.logger(),
	}
}

// EnableParallel switches to batched concurrent execution on up to workers
// goroutines. Zero restores sequential execution; negative means GOMAXPROCS.
func (s *Scheduler) EnableParallel(workers int) {
	s.workers = parallelWorkers(workers)
}

func (s *Scheduler) Parallel() bool {
	return s.workers > 0
}

// Tick is the number of completed RunAll calls.
func (s *Scheduler) Tick() uint64 {
	return s.tick
}

// RegisterSystem appends a system to stage. Names must be unique across the
// scheduler.
func (s *Scheduler) RegisterSystem(stage Stage, name string, access Access, fn SystemFunc) error {
	desc := SystemDescriptor{Name: name, Access: access, Run: fn}
	if err := s.validate(stage, desc); err != nil {
		return err
	}
	if err := s.add(stage, desc, 0); err != nil {
		return err
	}
	s.rebuildBatches(stage)
	return nil
}

// RegisterParallelSet registers systems that must run together in one batch.
// The whole set is rejected, and nothing registered, when any two members
// declare conflicting access.
func (s *Scheduler) RegisterParallelSet(stage Stage, systems ...SystemDescriptor) error {
	for i, a := range systems {
		if err := s.validate(stage, a); err != nil {
			return err
		}
		for _, b := range systems[i+1:] {
			if a.Name == b.Name {
				return DuplicateSystemError{Name: a.Name}
			}
			if a.Access.Conflicts(b.Access) {
				return AccessConflictError{Stage: stage, First: a.Name, Second: b.Name}
			}
		}
	}
	s.nextSet++
	for _, desc := range systems {
		if err := s.add(stage, desc, s.nextSet); err != nil {
			return err
		}
	}
	s.rebuildBatches(stage)
	return nil
}

func (s *Scheduler) validate(stage Stage, desc SystemDescriptor) error {
	if !stage.Valid() {
		return eris.Errorf("cannot register system %q: unknown stage %d", desc.Name, int(stage))
	}
	if desc.Run == nil {
		return eris.Errorf("cannot register system %q: nil function", desc.Name)
	}
	if _, exists := s.names.GetIndex(desc.Name); exists {
		return DuplicateSystemError{Name: desc.Name}
	}
	return nil
}

func (s *Scheduler) add(stage Stage, desc SystemDescriptor, set int) error {
	state := &systemState{
		SystemDescriptor: desc,
		stage:            stage,
		set:              set,
		commands:         NewCommandBuffer(),
	}
	if _, err := s.names.Register(desc.Name, state); err != nil {
		return err
	}
	s.systems[stage] = append(s.systems[stage], state)
	return nil
}

// rebuildBatches splits a stage into runs of consecutive systems that do not
// conflict with each other. Members of a parallel set are placed as one unit.
func (s *Scheduler) rebuildBatches(stage Stage) {
	var batches [][]*systemState
	var batch []*systemState

	systems := s.systems[stage]
	for i := 0; i < len(systems); {
		unit := []*systemState{systems[i]}
		if set := systems[i].set; set != 0 {
			for j := i + 1; j < len(systems) && systems[j].set == set; j++ {
				unit = append(unit, systems[j])
			}
		}
		i += len(unit)

		if conflictsWithBatch(batch, unit) {
			batches = append(batches, batch)
			batch = nil
		}
		batch = append(batch, unit...)
	}
	if len(batch) > 0 {
		batches = append(batches, batch)
	}
	s.batches[stage] = batches
}

func conflictsWithBatch(batch, unit []*systemState) bool {
	for _, candidate := range unit {
		for _, existing := range batch {
			if candidate.Access.Conflicts(existing.Access) {
				return true
			}
		}
	}
	return false
}

// Systems lists the names registered in stage, in registration order.
func (s *Scheduler) Systems(stage Stage) []string {
	names := make([]string, 0, len(s.systems[stage]))
	for _, st := range s.names.Items() {
		if (*st).stage == stage {
			names = append(names, (*st).Name)
		}
	}
	return names
}

// StageOf reports the stage a system was registered in.
func (s *Scheduler) StageOf(name string) (Stage, bool) {
	index, ok := s.names.GetIndex(name)
	if !ok {
		return 0, false
	}
	return (*s.names.GetItem(index)).stage, true
}

// SystemCount is the number of registered systems across all stages.
func (s *Scheduler) SystemCount() int {
	return s.names.Len()
}

// Reset unregisters every system. Commands they had queued are discarded.
func (s *Scheduler) Reset() {
	for _, st := range s.names.Items() {
		(*st).commands.Clear()
	}
	s.names.Clear()
	for stage := range s.systems {
		s.systems[stage] = nil
		s.batches[stage] = nil
	}
	s.nextSet = 0
}

// Batches lists the parallel plan for stage by system name.
func (s *Scheduler) Batches(stage Stage) [][]string {
	plan := make([][]string, len(s.batches[stage]))
	for i, batch := range s.batches[stage] {
		for _, st := range batch {
			plan[i] = append(plan[i], st.Name)
		}
	}
	return plan
}

// RunAll runs every stage in order, then advances the tick counter. The first
// failing stage stops the tick.
func (s *Scheduler) RunAll(w *World) error {
	for _, stage := range Stages() {
		if err := s.RunStage(w, stage); err != nil {
			return err
		}
	}
	s.tick++
	return nil
}

// RunStage runs the systems of one stage and then flushes their command
// buffers in registration order. When a system fails the stage stops, the
// commands queued during the stage are discarded, and the failure is returned
// as a *SystemError.
func (s *Scheduler) RunStage(w *World, stage Stage) error {
	if !stage.Valid() {
		return eris.Errorf("unknown stage %d", int(stage))
	}
	var err error
	if s.Parallel() {
		for _, batch := range s.batches[stage] {
			if err = s.runBatch(w, batch); err != nil {
				break
			}
		}
	} else {
		for _, st := range s.systems[stage] {
			if err = s.runSystem(w, st); err != nil {
				break
			}
		}
	}
	if err != nil {
		for _, st := range s.systems[stage] {
			st.commands.Clear()
		}
		return err
	}

	for _, st := range s.systems[stage] {
		if err := st.commands.Flush(w); err != nil {
			return eris.Wrapf(err, "failed to flush commands of system %q", st.Name)
		}
	}
	return nil
}

func (s *Scheduler) runBatch(w *World, batch []*systemState) error {
	if len(batch) == 1 && batch[0].Access.Exclusive {
		return s.runSystem(w, batch[0])
	}

	s.logger.Debug("depot: running batch",
		slog.String("stage", batch[0].stage.String()),
		slog.Int("systems", len(batch)))

	w.Lock()
	defer w.Unlock()

	errs := make([]error, len(batch))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	wg.Add(len(batch))
	for i, st := range batch {
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = s.runSystem(w, st)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) runSystem(w *World, st *systemState) (err error) {
	ctx := &SystemContext{
		World:    w,
		Commands: st.commands,
		Stage:    st.stage,
		Tick:     s.tick,
		Logger:   s.logger.With(slog.String("system", st.Name)),
	}
	defer func() {
		if r := recover(); r != nil {
			err = &SystemError{Stage: st.stage, System: st.Name, Panic: r, Stack: debug.Stack()}
		}
		if err != nil {
			s.logger.Error("depot: system failed",
				slog.String("stage", st.stage.String()),
				slog.String("system", st.Name),
				slog.Any("error", err))
		}
	}()
	if runErr := st.Run(ctx); runErr != nil {
		return &SystemError{Stage: st.stage, System: st.Name, Err: runErr}
	}
	return nil
}
