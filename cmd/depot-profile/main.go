// Profiling:
// go build ./cmd/depot-profile
// ./depot-profile -mode mem
// go tool pprof -http=":8000" -nodefraction=0.001 ./depot-profile mem.pprof

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/TheBitDrifter/depot"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/profile"
)

type position struct {
	mgl64.Vec3
}

type velocity struct {
	mgl64.Vec3
}

type lifetime struct {
	Ticks int
}

func main() {
	mode := flag.String("mode", "cpu", "profile to record: cpu or mem")
	rounds := flag.Int("rounds", 20, "number of fresh apps to run")
	ticks := flag.Int("ticks", 500, "ticks per app")
	entities := flag.Int("entities", 1000, "entities spawned per tick")
	workers := flag.Int("workers", 0, "parallel scheduler workers, 0 for sequential")
	flag.Parse()

	var opt func(*profile.Profile)
	switch *mode {
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfileAllocs
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", *mode)
		os.Exit(2)
	}

	depot.Config.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	depot.Config.SetParallel(*workers)

	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	err := run(*rounds, *ticks, *entities)
	p.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(rounds, ticks, perTick int) error {
	pos := depot.FactoryNewComponent[position]()
	vel := depot.FactoryNewComponent[velocity]()
	life := depot.FactoryNewComponent[lifetime]()

	for range rounds {
		app := depot.NewApp(1)

		err := app.AddSystem(depot.PreUpdate, "spawn", depot.Access{Exclusive: true}, func(ctx *depot.SystemContext) error {
			rng := depot.Resource[*depot.Rng](ctx.World)
			for range perTick {
				v := mgl64.Vec3{(*rng).Range(-1, 1), (*rng).Range(-1, 1), 0}
				ctx.Commands.EnqueueSpawn(
					pos.Value(position{}),
					vel.Value(velocity{v}),
					life.Value(lifetime{Ticks: 1 + (*rng).IntN(8)}),
				)
			}
			return nil
		})
		if err != nil {
			return err
		}

		move := depot.NewQuery2[position, velocity](app.World)
		err = app.AddSystem(depot.Physics, "move", depot.Access{
			Reads:  depot.Types(vel),
			Writes: depot.Types(pos),
		}, func(ctx *depot.SystemContext) error {
			for move.Next() {
				p, v := move.Get()
				p.Vec3 = p.Add(v.Vec3)
			}
			return nil
		})
		if err != nil {
			return err
		}

		age := depot.NewQuery1[lifetime](app.World)
		err = app.AddSystem(depot.PostUpdate, "expire", depot.Access{
			Writes: depot.Types(life),
		}, func(ctx *depot.SystemContext) error {
			for e, l := range age.All() {
				l.Ticks--
				if l.Ticks <= 0 {
					ctx.Commands.EnqueueDespawn(e)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		if err := app.RunFixed(ticks); err != nil {
			return err
		}
	}
	return nil
}
