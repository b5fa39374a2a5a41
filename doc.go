// Package tessera is an entity component system for real-time simulations
// such as game loops and MUD servers. A World stores entities (opaque identifiers)
// and the components attached to them; a Query enumerates entities matching a
// declarative component filter; a Scheduler runs systems over the world in
// dependency order, one tick at a time.
//
// Component mutations and despawns issued while a tick is in flight are
// deferred: they enter a buffer and apply between systems, so iteration is
// always safe and a system never observes its own writes mid-body. Ephemeral components are the typed
// replacement for an event bus; they live in a separate partition that the
// scheduler clears at the end of every tick.
//
// Minimal usage:
//
//	world, _ := tessera.NewWorld()
//	player := world.SpawnEntity()
//	_ = tessera.AddComponent(world, player, Position{X: 0, Y: 0})
//
//	scheduler := tessera.NewScheduler()
//	_ = scheduler.AddSystem(MovementSystem{})
//	_ = scheduler.Build()
//	for range ticker.C {
//		if err := scheduler.Run(world); err != nil {
//			return err
//		}
//	}
package tessera
