package tessera

import (
	"testing"

	"pkg.mudtale.dev/tessera/assert"
	"pkg.mudtale.dev/tessera/filter"
)

// End-to-end tick scenarios: systems running under a built scheduler against
// a real world.

type movementSystem struct{}

func (movementSystem) Run(w *World) error {
	var err error
	NewQuery[Position]().With(filter.Component[Velocity]()).Each(w, func(e Entity, pos Position) bool {
		vel, _ := GetComponent[Velocity](w, e)
		_, err = ReplaceComponent(w, e, Position{X: pos.X + vel.X, Y: pos.Y + vel.Y})
		return err == nil
	})
	return err
}

func TestMovementTick(t *testing.T) {
	world := newTestWorld(t)

	e1 := world.SpawnEntity()
	assert.NilError(t, AddComponent(world, e1, Position{X: 0, Y: 0}))
	assert.NilError(t, AddComponent(world, e1, Velocity{X: 1, Y: 2}))

	e2 := world.SpawnEntity()
	assert.NilError(t, AddComponent(world, e2, Position{X: 5, Y: 5}))

	scheduler := NewScheduler()
	assert.NilError(t, scheduler.AddSystem(movementSystem{}))
	assert.NilError(t, scheduler.Build())
	assert.NilError(t, scheduler.Run(world))

	moved, _ := GetComponent[Position](world, e1)
	assert.Equal(t, Position{X: 1, Y: 2}, moved)

	unmoved, _ := GetComponent[Position](world, e2)
	assert.Equal(t, Position{X: 5, Y: 5}, unmoved, "entities without Velocity stay put")
}

type damageDealerSystem struct{ target Entity }

func (s damageDealerSystem) Run(w *World) error {
	return AddEphemeralComponent(w, s.target, DamageEvent{Amount: 30})
}

type damageApplierSystem struct{}

func (damageApplierSystem) Dependencies() []SystemRef {
	return []SystemRef{SystemOf[damageDealerSystem]()}
}

func (damageApplierSystem) Run(w *World) error {
	var err error
	NewQuery[DamageEvent]().With(filter.Component[Health]()).EachEphemeral(w, func(e Entity, d DamageEvent) bool {
		_, err = UpdateComponent(w, e, func(h Health) Health {
			h.Current -= d.Amount
			return h
		})
		return err == nil
	})
	return err
}

func TestDamageViaEphemeralComponent(t *testing.T) {
	world := newTestWorld(t)
	e := world.SpawnEntity()
	assert.NilError(t, AddComponent(world, e, Health{Current: 100, Max: 100}))

	scheduler := NewScheduler()
	assert.NilError(t, scheduler.AddSystem(damageApplierSystem{}))
	assert.NilError(t, scheduler.AddSystem(damageDealerSystem{target: e}))
	assert.NilError(t, scheduler.Build())
	assert.NilError(t, scheduler.Run(world))

	health, _ := GetComponent[Health](world, e)
	assert.Equal(t, Health{Current: 70, Max: 100}, health)
	assert.False(t, HasEphemeralComponent[DamageEvent](world, e), "ephemera must not outlive the tick")
}

type despawnSecondSystem struct {
	victim  Entity
	yielded *[]Entity
}

func (s despawnSecondSystem) Run(w *World) error {
	var err error
	NewQuery[Tag]().Each(w, func(e Entity, _ Tag) bool {
		*s.yielded = append(*s.yielded, e)
		if e == s.victim {
			err = w.DespawnEntity(e)
		}
		return err == nil
	})
	return err
}

func TestDespawnDuringIteration(t *testing.T) {
	world := newTestWorld(t)
	e1 := world.SpawnEntity()
	e2 := world.SpawnEntity()
	e3 := world.SpawnEntity()
	for _, e := range []Entity{e1, e2, e3} {
		assert.NilError(t, AddComponent(world, e, Tag{}))
	}

	var yielded []Entity
	scheduler := NewScheduler()
	assert.NilError(t, scheduler.AddSystem(despawnSecondSystem{victim: e2, yielded: &yielded}))
	assert.NilError(t, scheduler.Build())
	assert.NilError(t, scheduler.Run(world))

	// The despawn is deferred, so the full candidate set was yielded.
	assert.Len(t, yielded, 3)

	remaining := map[Entity]struct{}{}
	for _, e := range world.Entities() {
		remaining[e] = struct{}{}
	}
	assert.DeepEqual(t, map[Entity]struct{}{e1: {}, e3: {}}, remaining)
	assert.False(t, HasComponent[Tag](world, e2), "storages must not reference the despawned entity")
	assert.Equal(t, 2, NewQuery[Tag]().Count(world))
}

type ephemeralSpammerSystem struct{}

func (ephemeralSpammerSystem) Run(w *World) error {
	for _, e := range w.Entities() {
		if err := AddEphemeralComponent(w, e, Tag{}); err != nil {
			return err
		}
	}
	return nil
}

func TestEphemeralPurgeAfterEveryTick(t *testing.T) {
	world := newTestWorld(t)
	entities := []Entity{world.SpawnEntity(), world.SpawnEntity(), world.SpawnEntity()}

	scheduler := NewScheduler()
	assert.NilError(t, scheduler.AddSystem(ephemeralSpammerSystem{}))
	assert.NilError(t, scheduler.Build())

	for tick := 0; tick < 3; tick++ {
		assert.NilError(t, scheduler.Run(world))
		for _, e := range entities {
			assert.False(t, HasEphemeralComponent[Tag](world, e))
		}
	}
}

// phaseVisibilitySystem checks the intra-tick ordering guarantees: a write
// deferred from BeforeRun is visible in Run, and one deferred from Run is
// visible in AfterRun.
type phaseVisibilitySystem struct {
	target Entity
	t      *testing.T
}

func (s phaseVisibilitySystem) BeforeRun(w *World) error {
	return AddComponent(w, s.target, Position{X: 1})
}

func (s phaseVisibilitySystem) Run(w *World) error {
	got, ok := GetComponent[Position](w, s.target)
	assert.True(s.t, ok, "BeforeRun write must be visible in Run")
	assert.Equal(s.t, float32(1), got.X)
	_, err := ReplaceComponent(w, s.target, Position{X: 2})
	return err
}

func (s phaseVisibilitySystem) AfterRun(w *World) error {
	got, _ := GetComponent[Position](w, s.target)
	assert.Equal(s.t, float32(2), got.X, "Run write must be visible in AfterRun")
	return nil
}

func TestWritesBecomeVisibleAcrossPhases(t *testing.T) {
	world := newTestWorld(t)
	e := world.SpawnEntity()

	scheduler := NewScheduler()
	assert.NilError(t, scheduler.AddSystem(phaseVisibilitySystem{target: e, t: t}))
	assert.NilError(t, scheduler.Build())
	assert.NilError(t, scheduler.Run(world))
}

// selfInvisibilitySystem asserts I5 from inside a system body: its own
// enqueued write must not be readable later in the same body.
type selfInvisibilitySystem struct {
	target Entity
	t      *testing.T
}

func (s selfInvisibilitySystem) Run(w *World) error {
	if err := AddComponent(w, s.target, Velocity{X: 7}); err != nil {
		return err
	}
	assert.False(s.t, HasComponent[Velocity](w, s.target), "own deferred write leaked into the same body")
	return nil
}

func TestSystemNeverSeesItsOwnWrites(t *testing.T) {
	world := newTestWorld(t)
	e := world.SpawnEntity()

	scheduler := NewScheduler()
	assert.NilError(t, scheduler.AddSystem(selfInvisibilitySystem{target: e, t: t}))
	assert.NilError(t, scheduler.Build())
	assert.NilError(t, scheduler.Run(world))

	assert.True(t, HasComponent[Velocity](world, e), "write must commit at the flush")
}
