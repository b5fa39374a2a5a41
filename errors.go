package tessera

import (
	"github.com/rotisserie/eris"
)

var (
	// ErrEntityNotFound is returned when an operation targets an entity that is
	// not alive at the point of the operation.
	ErrEntityNotFound = eris.New("entity not found")

	// ErrComponentAlreadyExists is returned when adding a component of a type
	// the entity already carries in that partition.
	ErrComponentAlreadyExists = eris.New("component already exists on entity")

	// ErrComponentNotFound is returned when replacing or removing a
	// component the entity does not carry in that partition.
	ErrComponentNotFound = eris.New("component not found on entity")

	// ErrDuplicateSystem is returned when a system of the same concrete type
	// has already been added to the scheduler.
	ErrDuplicateSystem = eris.New("system already registered")

	// ErrMissingDependency is returned by Build when a declared dependency
	// names a system that was never added.
	ErrMissingDependency = eris.New("system dependency not registered")

	// ErrDependencyCycle is returned by Build when the dependency graph is not
	// a DAG.
	ErrDependencyCycle = eris.New("circular dependency detected between systems")

	// ErrSchedulerSealed is returned when adding a system after a successful
	// Build.
	ErrSchedulerSealed = eris.New("scheduler has been built and is sealed")
)
