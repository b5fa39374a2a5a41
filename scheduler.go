package tessera

import (
	"reflect"
	"time"

	"github.com/rotisserie/eris"

	"pkg.mudtale.dev/tessera/gamestage"
	"pkg.mudtale.dev/tessera/statsd"
)

type systemEntry struct {
	name string
	typ  reflect.Type
	sys  System
	deps []reflect.Type
}

// Scheduler owns an ordered collection of systems and drives the world
// through ticks. It is a builder-then-runner: add systems, call Build to
// resolve the dependency graph into a total order, then call Run once per
// tick. After a successful Build the scheduler is sealed.
type Scheduler struct {
	systems     []systemEntry
	typeToIndex map[reflect.Type]int
	order       []int
	built       bool

	tick          uint64
	currentSystem string
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		typeToIndex: map[reflect.Type]int{},
	}
}

// AddSystem appends a system. Returns ErrDuplicateSystem if a system of the
// same concrete type was already added, or ErrSchedulerSealed after a
// successful Build.
func (s *Scheduler) AddSystem(sys System) error {
	if s.built {
		return ErrSchedulerSealed
	}
	t := systemTypeOf(sys)
	name := t.String()
	if _, ok := s.typeToIndex[t]; ok {
		return eris.Wrapf(ErrDuplicateSystem, "system %q", name)
	}

	var deps []reflect.Type
	if dependent, ok := sys.(Dependent); ok {
		seen := map[reflect.Type]struct{}{}
		for _, ref := range dependent.Dependencies() {
			if _, dup := seen[ref.typ]; dup {
				continue
			}
			seen[ref.typ] = struct{}{}
			deps = append(deps, ref.typ)
		}
	}

	s.typeToIndex[t] = len(s.systems)
	s.systems = append(s.systems, systemEntry{
		name: name,
		typ:  t,
		sys:  sys,
		deps: deps,
	})
	return nil
}

// Build resolves dependencies into a total execution order and seals the
// scheduler. A dependency on a system that was never added is
// ErrMissingDependency; a cyclic graph is ErrDependencyCycle. On error the
// scheduler stays unsealed and may be corrected. Building an already-built
// scheduler is a no-op.
func (s *Scheduler) Build() error {
	if s.built {
		return nil
	}

	order, err := s.resolveOrder()
	if err != nil {
		return err
	}

	s.order = order
	s.built = true
	return nil
}

// resolveOrder runs Kahn's algorithm over the dependency graph. Ties are
// broken by insertion order, so schedules are reproducible across runs.
func (s *Scheduler) resolveOrder() ([]int, error) {
	n := len(s.systems)

	inDegree := make([]int, n)
	dependents := make([][]int, n)
	for i, entry := range s.systems {
		for _, dep := range entry.deps {
			j, ok := s.typeToIndex[dep]
			if !ok {
				return nil, eris.Wrapf(ErrMissingDependency,
					"system %q depends on unregistered system %q", entry.name, dep.String())
			}
			dependents[j] = append(dependents[j], i)
			inDegree[i]++
		}
	}

	order := make([]int, 0, n)
	placed := make([]bool, n)
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !placed[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, eris.Wrap(ErrDependencyCycle, "unable to order systems")
		}
		placed[next] = true
		order = append(order, next)
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
		}
	}

	return order, nil
}

// SystemCount returns the number of systems added so far.
func (s *Scheduler) SystemCount() int {
	return len(s.systems)
}

// IsBuilt reports whether Build has succeeded.
func (s *Scheduler) IsBuilt() bool {
	return s.built
}

// CurrentTick returns the number of completed ticks.
func (s *Scheduler) CurrentTick() uint64 {
	return s.tick
}

// SystemNames returns the system names in execution order once built, or in
// insertion order before that.
func (s *Scheduler) SystemNames() []string {
	names := make([]string, 0, len(s.systems))
	if s.built {
		for _, idx := range s.order {
			names = append(names, s.systems[idx].name)
		}
		return names
	}
	for _, entry := range s.systems {
		names = append(names, entry.name)
	}
	return names
}

// Run executes one tick: the BeforeRun sweep, the Run sweep, the AfterRun
// sweep, flushing the deferred buffer after every system, then cleanup,
// which clears the ephemeral partition, applies anything still pending, and
// resets the phase marker to Idle.
//
// A system returning an error aborts the tick: pending deferred records are
// discarded and the wrapped error is returned. Run must not be called before
// Build succeeds.
func (s *Scheduler) Run(w *World) error {
	if !s.built {
		return eris.New("scheduler must be built before running")
	}

	startTime := time.Now()
	logger := w.logger.With().Uint64("tick", s.tick).Logger()
	logger.Debug().Msg("tick started")

	// The defers below log which system was live if a system panics, and
	// guarantee the world leaves the tick in the Idle phase either way.
	defer func() {
		s.currentSystem = ""
		w.stage.Store(gamestage.StageIdle)
	}()
	defer s.handleTickPanic(w)

	phases := []struct {
		stage  gamestage.Stage
		invoke func(System, *World) (bool, error)
	}{
		{gamestage.StageBeforeRun, func(sys System, w *World) (bool, error) {
			br, ok := sys.(BeforeRunner)
			if !ok {
				return false, nil
			}
			return true, br.BeforeRun(w)
		}},
		{gamestage.StageRun, func(sys System, w *World) (bool, error) {
			return true, sys.Run(w)
		}},
		{gamestage.StageAfterRun, func(sys System, w *World) (bool, error) {
			ar, ok := sys.(AfterRunner)
			if !ok {
				return false, nil
			}
			return true, ar.AfterRun(w)
		}},
	}

	for _, phase := range phases {
		w.stage.Store(phase.stage)
		for _, idx := range s.order {
			entry := s.systems[idx]
			s.currentSystem = entry.name

			systemStartTime := time.Now()
			ran, err := phase.invoke(entry.sys, w)
			if err != nil {
				w.deferred.discard()
				return eris.Wrapf(err, "system %s generated an error", entry.name)
			}
			if !ran {
				continue
			}
			w.flushDeferred()
			statsd.EmitTickStat(systemStartTime, entry.name)
		}
	}

	// Cleanup: drop every ephemeral component, then apply any despawns still
	// pending before the world goes back to Idle.
	s.currentSystem = ""
	w.clearEphemeral()
	w.flushDeferred()

	s.tick++
	logger.Debug().Dur("duration", time.Since(startTime)).Msg("tick completed")
	statsd.EmitTickStat(startTime, "full_tick")
	return nil
}

// handleTickPanic annotates a panicking tick with the tick number and the
// system that was executing, then re-panics.
func (s *Scheduler) handleTickPanic(w *World) {
	if r := recover(); r != nil {
		name := s.currentSystem
		if name == "" {
			name = "no_system"
		}
		w.logger.Error().
			Uint64("tick", s.tick).
			Str("system", name).
			Msg("tick panicked")
		panic(r)
	}
}
