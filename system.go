package tessera

import (
	"reflect"
)

// System is a unit of simulation logic driven by the scheduler. Run is the
// core phase; the optional capabilities below are detected by interface
// assertion. Systems are identified by their concrete type: the scheduler
// accepts at most one instance of each.
//
// Component mutations and despawns issued from any phase go through the
// deferred buffer, so a system never observes its own writes mid-body; they
// become visible to the next system after the flush. SpawnEntity and resource
// writes apply immediately.
type System interface {
	Run(w *World) error
}

// BeforeRunner is implemented by systems that want a preparation pass before
// any system's Run executes.
type BeforeRunner interface {
	BeforeRun(w *World) error
}

// AfterRunner is implemented by systems that want a pass after every system's
// Run has executed and flushed.
type AfterRunner interface {
	AfterRun(w *World) error
}

// Dependent is implemented by systems that must execute after other systems
// within each phase of the same tick.
type Dependent interface {
	Dependencies() []SystemRef
}

// SystemRef names a system type in a dependency declaration.
type SystemRef struct {
	typ reflect.Type
}

// SystemOf mints the SystemRef for system type S.
//
//	func (MovementSystem) Dependencies() []tessera.SystemRef {
//		return []tessera.SystemRef{tessera.SystemOf[InputSystem]()}
//	}
func SystemOf[S System]() SystemRef {
	t := reflect.TypeOf((*S)(nil)).Elem()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return SystemRef{typ: t}
}

func (r SystemRef) Name() string {
	if r.typ == nil {
		return ""
	}
	return r.typ.String()
}

// systemTypeOf normalizes a system value to its concrete type, so that
// MovementSystem{} and &MovementSystem{} identify the same system.
func systemTypeOf(sys System) reflect.Type {
	t := reflect.TypeOf(sys)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
