package tessera

import (
	"reflect"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pkg.mudtale.dev/tessera/gamestage"
	"pkg.mudtale.dev/tessera/statsd"
	"pkg.mudtale.dev/tessera/storage"
)

// anyTable is the type-erased face of a storage.Table[Entity, T]. The world
// keeps one per component type per partition and reaches typed values through
// the generic accessors in component.go.
type anyTable interface {
	Discard(Entity)
	Contains(Entity) bool
	Len() int
	Keys() []Entity
	Clear()
	GetAny(Entity) (any, bool)
}

// partition is one of the world's two storage halves (regular / ephemeral).
// Tables are created lazily on the first write of a given component type.
type partition struct {
	tables map[reflect.Type]anyTable
}

func newPartition() *partition {
	return &partition{tables: map[reflect.Type]anyTable{}}
}

func (p *partition) byType(t reflect.Type) (anyTable, bool) {
	tbl, ok := p.tables[t]
	return tbl, ok
}

func (p *partition) discardEntity(e Entity) {
	for _, tbl := range p.tables {
		tbl.Discard(e)
	}
}

func (p *partition) clearAll() {
	for _, tbl := range p.tables {
		tbl.Clear()
	}
}

// tableOf returns the table for T in p, creating it on first use.
func tableOf[T any](p *partition) *storage.Table[Entity, T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if tbl, ok := p.tables[t]; ok {
		return tbl.(*storage.Table[Entity, T])
	}
	tbl := storage.NewTable[Entity, T]()
	p.tables[t] = tbl
	return tbl
}

// lookupTable returns the table for T in p without creating it.
func lookupTable[T any](p *partition) (*storage.Table[Entity, T], bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	tbl, ok := p.tables[t]
	if !ok {
		return nil, false
	}
	return tbl.(*storage.Table[Entity, T]), true
}

// World is the single mutable object systems operate on. It composes the
// entity allocator, the regular and ephemeral storage partitions, the global
// resources, and the deferred mutation buffer.
//
// A world is owned by exactly one goroutine at a time. The deferred buffer is
// not a concurrency mechanism; it is a serialization barrier inside one
// goroutine.
type World struct {
	id        string
	namespace string
	logger    zerolog.Logger

	allocator  *entityAllocator
	components *partition
	ephemeral  *partition
	resources  map[reflect.Type]any

	stage    gamestage.Atomic
	deferred *commandBuffer

	// iterating is nonzero while a query iteration is on the stack; direct
	// mutations are rejected while it is.
	iterating int
}

// NewWorld creates an empty world. Configuration is read from the
// environment (see WorldConfig) and may be overridden with options.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load world config")
	}

	logger, err := cfg.logger()
	if err != nil {
		return nil, err
	}

	w := &World{
		id:        uuid.NewString(),
		namespace: cfg.TesseraNamespace,
		logger:    logger,

		allocator:  newEntityAllocator(),
		components: newPartition(),
		ephemeral:  newPartition(),
		resources:  map[reflect.Type]any{},

		stage:    gamestage.NewAtomic(),
		deferred: newCommandBuffer(),
	}

	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With().
		Str("world_id", w.id).
		Str("namespace", w.namespace).
		Logger()

	if cfg.TesseraStatsdAddress != "" {
		if err := statsd.Init(cfg.TesseraStatsdAddress, []string{"namespace:" + w.namespace}); err != nil {
			return nil, eris.Wrap(err, "unable to init statsd")
		}
	} else {
		log.Logger.Debug().Msg("statsd is disabled")
	}

	w.logger.Debug().Msg("world created")
	return w, nil
}

// Namespace returns the world's namespace, used to tag logs and metrics.
func (w *World) Namespace() string {
	return w.namespace
}

// Logger returns the world's logger.
func (w *World) Logger() zerolog.Logger {
	return w.logger
}

// SpawnEntity mints a fresh entity. The entity is immediately visible, even
// when called from inside a system phase.
func (w *World) SpawnEntity() Entity {
	return w.allocator.spawn()
}

// DespawnEntity marks e for destruction. Inside a system phase the despawn is
// deferred to the next flush; outside it applies immediately and returns
// ErrEntityNotFound if e is already dead. Once the despawn commits, every
// component of e in both partitions is dropped.
func (w *World) DespawnEntity(e Entity) error {
	if w.inSystemPhase() {
		w.deferred.push(command{
			kind:   opDespawn,
			entity: e,
			apply:  func(w *World) error { return w.applyDespawn(e) },
		})
		return nil
	}
	w.guardMutation("DespawnEntity")
	return w.applyDespawn(e)
}

func (w *World) applyDespawn(e Entity) error {
	if !w.allocator.kill(e) {
		return ErrEntityNotFound
	}
	w.components.discardEntity(e)
	w.ephemeral.discardEntity(e)
	return nil
}

// Entities returns all currently-alive entities. The order is unspecified but
// deterministic for a given operation history.
func (w *World) Entities() []Entity {
	return w.allocator.entities()
}

// EntityCount returns the number of alive entities.
func (w *World) EntityCount() int {
	return w.allocator.count()
}

// IsAlive reports whether e is alive: true from SpawnEntity until the flush
// that commits its despawn.
func (w *World) IsAlive(e Entity) bool {
	return w.allocator.isAlive(e)
}

func (w *World) inSystemPhase() bool {
	return w.stage.Load() != gamestage.StageIdle
}

// guardMutation rejects a direct mutation issued while a query iteration is
// on the stack. This is the runtime stand-in for a borrow check, so a
// violation panics rather than erroring.
func (w *World) guardMutation(op string) {
	if w.iterating > 0 {
		panic("tessera: " + op + " called during query iteration; defer the mutation or finish iterating first")
	}
}

// flushDeferred applies every buffered record in enqueue order. A record
// whose precondition no longer holds is dropped; the drop is visible only in
// the debug log.
func (w *World) flushDeferred() {
	for _, cmd := range w.deferred.take() {
		if err := cmd.apply(w); err != nil {
			w.logger.Debug().
				Str("op", cmd.kind.String()).
				Stringer("entity", cmd.entity).
				Str("component", cmd.component).
				Err(err).
				Msg("dropped stale deferred operation")
		}
	}
}

// clearEphemeral drops every ephemeral storage's contents. Called by the
// scheduler during tick cleanup.
func (w *World) clearEphemeral() {
	w.ephemeral.clearAll()
}

// typeNames returns the type names of the lazily-created tables in the
// partition, for logging.
func (p *partition) typeNames() []string {
	names := make([]string, 0, len(p.tables))
	for t := range p.tables {
		names = append(names, t.String())
	}
	return names
}
