package tessera

import (
	"reflect"
)

// Resources are world-global singleton values keyed by type: tick timers,
// random sources, input state. They live outside both entity partitions,
// survive tick cleanup, and are never touched by despawns. Resource writes
// always apply immediately, including inside system phases; the deferred
// protocol covers entity components only.

// InsertResource stores a resource of type T, replacing any previous value.
func InsertResource[T any](w *World, resource T) {
	w.resources[reflect.TypeOf((*T)(nil)).Elem()] = resource
}

// GetResource returns the resource of type T.
func GetResource[T any](w *World) (T, bool) {
	v, ok := w.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// RemoveResource deletes the resource of type T and returns it.
func RemoveResource[T any](w *World) (T, bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	v, ok := w.resources[t]
	if !ok {
		var zero T
		return zero, false
	}
	delete(w.resources, t)
	return v.(T), true
}

// HasResource reports whether a resource of type T is present.
func HasResource[T any](w *World) bool {
	_, ok := w.resources[reflect.TypeOf((*T)(nil)).Elem()]
	return ok
}

// UpdateResource applies fn to the resource of type T and stores the result,
// returning the new value. Reports false if the resource is absent.
func UpdateResource[T any](w *World, fn func(T) T) (T, bool) {
	current, ok := GetResource[T](w)
	if !ok {
		var zero T
		return zero, false
	}
	next := fn(current)
	InsertResource(w, next)
	return next, true
}
