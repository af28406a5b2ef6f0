package depot_test

import (
	"fmt"

	"github.com/TheBitDrifter/depot"
)

// Position is a simple component for 2D coordinates
type Position struct {
	X float64
	Y float64
}

// Velocity is a simple component for 2D movement
type Velocity struct {
	X float64
	Y float64
}

// Name is a simple component for entity identification
type Name struct {
	Value string
}

// Example shows basic depot usage with entity creation and queries
func Example_basic() {
	world := depot.NewWorld()

	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()
	name := depot.FactoryNewComponent[Name]()

	world.SpawnBatch(5, position)
	world.SpawnBatch(3, position, velocity)

	// Create one named entity with its values in place
	world.SpawnWith(
		position.Value(Position{X: 10, Y: 20}),
		velocity.Value(Velocity{X: 1, Y: 2}),
		name.Value(Name{Value: "Player"}),
	)

	query := world.Query(depot.Types(position, velocity), nil)
	fmt.Printf("Found %d entities with position and velocity\n", query.Count())

	cursor := world.Query(depot.Types(name), nil).Cursor()
	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		nme := name.GetFromCursor(cursor)

		pos.X += vel.X
		pos.Y += vel.Y

		fmt.Printf("Updated %s to position (%.1f, %.1f)\n", nme.Value, pos.X, pos.Y)
	}

	// Output:
	// Found 4 entities with position and velocity
	// Updated Player to position (11.0, 22.0)
}

// Example_queries shows how to use different query operations
func Example_queries() {
	world := depot.NewWorld()

	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()
	name := depot.FactoryNewComponent[Name]()

	world.SpawnBatch(3, position)
	world.SpawnBatch(3, position, velocity)
	world.SpawnBatch(3, position, name)
	world.SpawnBatch(3, position, velocity, name)

	filter := depot.Factory.NewFilter()

	// AND query: entities with position AND velocity
	andQuery := world.NewQuery(filter.And(position, velocity))
	fmt.Printf("AND query matched %d entities\n", andQuery.Count())

	// OR query: entities with velocity OR name
	orQuery := world.NewQuery(filter.Or(velocity, name))
	fmt.Printf("OR query matched %d entities\n", orQuery.Count())

	// NOT query: entities with position but NOT velocity
	notQuery := world.Query(depot.Types(position), depot.Types(velocity))
	fmt.Printf("NOT query matched %d entities\n", notQuery.Count())

	// Output:
	// AND query matched 6 entities
	// OR query matched 9 entities
	// NOT query matched 6 entities
}

// Example_deferred shows structural changes queued while a query iterates
func Example_deferred() {
	world := depot.NewWorld()
	health := depot.FactoryNewComponent[int]()

	for i := 1; i <= 4; i++ {
		world.SpawnWith(health.Value(i * 10))
	}

	commands := depot.NewCommandBuffer()
	query := depot.NewQuery1[int](world)
	for e, hp := range query.All() {
		if *hp < 25 {
			commands.EnqueueDespawn(e)
		}
	}
	fmt.Println("queued:", commands.Len(), "alive:", world.EntityCount())

	if err := commands.Flush(world); err != nil {
		fmt.Println(err)
	}
	fmt.Println("alive after flush:", world.EntityCount())

	// Output:
	// queued: 2 alive: 4
	// alive after flush: 2
}

// Example_scheduler shows systems running stage by stage
func Example_scheduler() {
	app := depot.NewApp(1)
	e := app.World.SpawnWith(depot.Value(Position{}), depot.Value(Velocity{X: 1, Y: 0.5}))

	move := depot.NewQuery2[Position, Velocity](app.World)
	app.AddSystem(depot.Physics, "move", depot.Access{
		Reads:  depot.Types(depot.TypeOf[Velocity]()),
		Writes: depot.Types(depot.TypeOf[Position]()),
	}, func(ctx *depot.SystemContext) error {
		for move.Next() {
			pos, vel := move.Get()
			pos.X += vel.X
			pos.Y += vel.Y
		}
		return nil
	})

	if err := app.RunFixed(4); err != nil {
		fmt.Println(err)
	}
	pos, _ := depot.Get[Position](app.World, e)
	fmt.Printf("after %d ticks: (%.1f, %.1f)\n", app.Scheduler.Tick(), pos.X, pos.Y)

	// Output:
	// after 4 ticks: (4.0, 2.0)
}
