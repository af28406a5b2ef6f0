/*
Package depot provides the entity/component storage engine of an Entity-Component-System (ECS).

Depot keeps entities that carry the same set of component types together in one archetype,
one packed column per type, so systems walk contiguous memory. Iteration order is a pure
function of the operations applied to a world: archetypes are visited in ascending id order
and entities in packed row order, which makes ticks replayable run to run.

Core Concepts:

  - Entity: an index plus a generation. Despawning bumps the generation, so old handles
    report dead instead of aliasing a recycled index.
  - Component: any Go type. Values live in typed columns behind a type-erased blobArray.
  - Archetype: all entities with exactly one signature, row-aligned across columns.
  - Query: a required/excluded filter (or an And/Or/Not tree) yielding matches in a
    deterministic order.
  - CommandBuffer: structural changes queued while queries iterate, applied in order at flush.
  - Scheduler: systems registered into ordered stages, sequential by default, optionally
    batched in parallel from declared read/write access.

Basic Usage:

	world := depot.NewWorld()

	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()

	e := world.SpawnWith(position.Value(Position{}), velocity.Value(Velocity{X: 1}))

	query := world.Query(depot.Types(position, velocity), nil)
	cursor := query.Cursor()
	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
	}

	depot.Insert(world, e, Health{100})
	hp, ok := depot.Get[Health](world, e)

Spawn order is not preserved once an entity changes archetype. Attach a counter component
when spawn order matters.
*/
package depot
