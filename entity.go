package tessera

import (
	"strconv"
	"sync/atomic"

	"pkg.mudtale.dev/tessera/storage"
)

// Entity is an opaque identifier for a simulated object. Identifiers are
// process-unique, handed out in increasing order, and never reissued, even
// after the entity despawns, so an entity from one world is never mistaken
// for one of another. The zero value is a sentinel no world considers alive.
type Entity struct {
	id uint64
}

// IsNil reports whether e is the zero sentinel.
func (e Entity) IsNil() bool {
	return e.id == 0
}

// Less is the total order over identifiers. A later-spawned entity compares
// greater than an earlier one from the same world.
func (e Entity) Less(other Entity) bool {
	return e.id < other.id
}

func (e Entity) String() string {
	return "entity-" + strconv.FormatUint(e.id, 10)
}

// nextEntityID is shared across every world in the process. Its first Add
// returns 1, keeping id 0 free for the nil sentinel.
var nextEntityID atomic.Uint64

// entityAllocator mints identifiers and tracks liveness, both O(1).
// Identifiers are uint64 with no wraparound handling: at a million spawns per
// second a process would take ~584k years to exhaust the space.
type entityAllocator struct {
	alive *storage.Table[Entity, struct{}]
}

func newEntityAllocator() *entityAllocator {
	return &entityAllocator{
		alive: storage.NewTable[Entity, struct{}](),
	}
}

func (a *entityAllocator) spawn() Entity {
	e := Entity{id: nextEntityID.Add(1)}
	_ = a.alive.Insert(e, struct{}{})
	return e
}

func (a *entityAllocator) isAlive(e Entity) bool {
	return a.alive.Contains(e)
}

// kill removes e from the alive set, reporting false if e was not alive.
func (a *entityAllocator) kill(e Entity) bool {
	if !a.alive.Contains(e) {
		return false
	}
	_, _ = a.alive.Remove(e)
	return true
}

func (a *entityAllocator) entities() []Entity {
	keys := a.alive.Keys()
	out := make([]Entity, len(keys))
	copy(out, keys)
	return out
}

func (a *entityAllocator) count() int {
	return a.alive.Len()
}
