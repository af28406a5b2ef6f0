package depot

import (
	"fmt"
	"log/slog"

	"github.com/rotisserie/eris"
)

// App ties a World to a Scheduler and advances both one tick at a time.
type App struct {
	World     *World
	Scheduler *Scheduler
	plugins   int
}

// NewApp returns an app with a fresh world, a scheduler configured from
// Config, and an Rng resource seeded with seed.
func NewApp(seed uint64) *App {
	app := &App{
		World:     NewWorld(),
		Scheduler: NewScheduler(),
	}
	InsertResource(app.World, NewRng(seed))
	return app
}

// AddSystem registers fn in stage.
func (app *App) AddSystem(stage Stage, name string, access Access, fn SystemFunc) error {
	return app.Scheduler.RegisterSystem(stage, name, access, fn)
}

// AddPlugin lets p install its resources and systems. A failing plugin may
// leave part of its systems registered.
func (app *App) AddPlugin(p Plugin) error {
	if err := p.Build(app); err != nil {
		return eris.Wrapf(err, "failed to build plugin %T", p)
	}
	app.plugins++
	app.World.logger.Debug("depot: plugin added", slog.String("plugin", fmt.Sprintf("%T", p)))
	return nil
}

// Step runs one tick.
func (app *App) Step() error {
	return app.Scheduler.RunAll(app.World)
}

// RunFixed runs steps ticks and stops at the first failure.
func (app *App) RunFixed(steps int) error {
	for i := 0; i < steps; i++ {
		if err := app.Step(); err != nil {
			return eris.Wrapf(err, "tick %d failed", app.Scheduler.Tick())
		}
	}
	return nil
}

// Rng returns the app's generator.
func (app *App) Rng() *Rng {
	if p := Resource[*Rng](app.World); p != nil {
		return *p
	}
	return nil
}
