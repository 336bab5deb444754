/*
Package crucible is an archetype-based Entity-Component System built on
chunked, column-major storage. Entities sharing the same component set are
packed together in fixed-size chunks so iteration walks contiguous, aligned
memory instead of chasing pointers.

Core Concepts:

  - EntityID: a packed 64-bit handle {index, generation, world}. A stale
    handle (reused index, old generation) is detected, never dereferenced.
  - Archetype: the set of entities sharing an identical component
    signature, stored as a linked list of chunks with precomputed column
    offsets.
  - Signature: a 256-bit bitset identifying a component set, compared in
    O(1) regardless of how many component types are registered.
  - Query: an include/exclude Signature pair matched against the
    archetype list, either re-evaluated each call or compiled to a fixed
    archetype set for repeated iteration.

All chunk storage is carved out of a single world's persistent arena
(package arena), tagged so memory use is attributable per concern rather
than opaque to a garbage collector.

Basic Usage:

	world, err := crucible.NewWorld(crucible.WorldCreateInfo{Name: "sim"})
	if err != nil {
		log.Fatal(err)
	}
	defer world.Release()

	posID, _ := crucible.RegisterComponentType[Position](world, "position")
	velID, _ := crucible.RegisterComponentType[Velocity](world, "velocity")

	e, err := world.CreateEntity()
	crucible.AddComponent(world, e, Position{})
	crucible.AddComponent(world, e, Velocity{X: 1})

	q := crucible.QueryOf([]crucible.ComponentTypeID{posID, velID}, nil)
	q.EachChunk(world, func(c *crucible.Chunk) bool {
		positions := crucible.ChunkColumn[Position](c, posID)
		velocities := crucible.ChunkColumn[Velocity](c, velID)
		for i := range positions {
			positions[i].X += velocities[i].X
			positions[i].Y += velocities[i].Y
		}
		return true
	})
*/
package crucible
