package tessera

import (
	"testing"

	"github.com/rs/zerolog"

	"pkg.mudtale.dev/tessera/assert"
	"pkg.mudtale.dev/tessera/gamestage"
)

type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type Velocity struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type Health struct {
	Current uint32 `json:"current"`
	Max     uint32 `json:"max"`
}

type Dead struct{}

type Tag struct{}

type DamageEvent struct {
	Amount uint32 `json:"amount"`
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	world, err := NewWorld(WithLogger(zerolog.Nop()))
	assert.NilError(t, err)
	return world
}

func TestDeferredWritesAreInvisibleUntilFlush(t *testing.T) {
	world := newTestWorld(t)
	e := world.SpawnEntity()
	assert.NilError(t, AddComponent(world, e, Health{Current: 100, Max: 100}))

	// Simulate a system body: the world is in the Run phase.
	world.stage.Store(gamestage.StageRun)
	_, err := ReplaceComponent(world, e, Health{Current: 70, Max: 100})
	assert.NilError(t, err)

	got, ok := GetComponent[Health](world, e)
	assert.True(t, ok)
	assert.Equal(t, uint32(100), got.Current, "uncommitted write must not be visible")

	world.flushDeferred()
	world.stage.Store(gamestage.StageIdle)

	got, ok = GetComponent[Health](world, e)
	assert.True(t, ok)
	assert.Equal(t, uint32(70), got.Current)
}

func TestDeferredOpsApplyInEnqueueOrder(t *testing.T) {
	world := newTestWorld(t)
	e := world.SpawnEntity()
	assert.NilError(t, AddComponent(world, e, Health{Current: 1, Max: 100}))

	world.stage.Store(gamestage.StageRun)
	for _, current := range []uint32{2, 3, 4} {
		_, err := ReplaceComponent(world, e, Health{Current: current, Max: 100})
		assert.NilError(t, err)
	}
	world.flushDeferred()
	world.stage.Store(gamestage.StageIdle)

	// All replaces apply; the last writer in order wins.
	got, _ := GetComponent[Health](world, e)
	assert.Equal(t, uint32(4), got.Current)
}

func TestStaleDeferredOpsAreDroppedSilently(t *testing.T) {
	world := newTestWorld(t)
	e := world.SpawnEntity()
	assert.NilError(t, AddComponent(world, e, Health{Current: 100, Max: 100}))

	world.stage.Store(gamestage.StageRun)
	assert.NilError(t, world.DespawnEntity(e))
	// The replace's precondition is invalidated by the earlier despawn; it
	// must be dropped without surfacing anywhere.
	_, err := ReplaceComponent(world, e, Health{Current: 50, Max: 100})
	assert.NilError(t, err)
	world.flushDeferred()
	world.stage.Store(gamestage.StageIdle)

	assert.False(t, world.IsAlive(e))
	assert.False(t, HasComponent[Health](world, e))
}

func TestDeferredDespawnKeepsEntityAliveUntilFlush(t *testing.T) {
	world := newTestWorld(t)
	e := world.SpawnEntity()

	world.stage.Store(gamestage.StageRun)
	assert.NilError(t, world.DespawnEntity(e))
	assert.True(t, world.IsAlive(e), "despawn must not take effect before the flush")

	world.flushDeferred()
	world.stage.Store(gamestage.StageIdle)
	assert.False(t, world.IsAlive(e))
}

func TestDespawnPurgesBothPartitions(t *testing.T) {
	world := newTestWorld(t)
	e := world.SpawnEntity()
	assert.NilError(t, AddComponent(world, e, Position{X: 1, Y: 2}))
	assert.NilError(t, AddEphemeralComponent(world, e, DamageEvent{Amount: 5}))

	assert.NilError(t, world.DespawnEntity(e))

	assert.False(t, HasComponent[Position](world, e))
	assert.False(t, HasEphemeralComponent[DamageEvent](world, e))
	assert.Equal(t, 0, world.EntityCount())
}

func TestDespawnDeadEntityReturnsEntityNotFound(t *testing.T) {
	world := newTestWorld(t)
	e := world.SpawnEntity()
	assert.NilError(t, world.DespawnEntity(e))
	assert.ErrorIs(t, world.DespawnEntity(e), ErrEntityNotFound)
}

func TestSpawnIsImmediateEvenDuringAPhase(t *testing.T) {
	world := newTestWorld(t)
	world.stage.Store(gamestage.StageRun)
	e := world.SpawnEntity()
	assert.True(t, world.IsAlive(e))
	world.stage.Store(gamestage.StageIdle)
}

func TestWorldOptionsOverrideConfig(t *testing.T) {
	world, err := NewWorld(WithLogger(zerolog.Nop()), WithNamespace("arena-7"))
	assert.NilError(t, err)
	assert.Equal(t, "arena-7", world.Namespace())
}
