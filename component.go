package tessera

import (
	"reflect"
)

// Generic component operations over the regular partition. Outside any system
// phase these apply immediately and surface errors synchronously. Inside a
// phase the write half is enqueued into the deferred buffer, the returned
// error is always nil, and the returned values reflect committed state only
// (a system never observes its own uncommitted writes).

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// addInto is the application path for an add, shared by the immediate route
// and the deferred records.
func addInto[T any](w *World, p *partition, e Entity, component T) error {
	if !w.allocator.isAlive(e) {
		return ErrEntityNotFound
	}
	tbl := tableOf[T](p)
	if tbl.Contains(e) {
		return ErrComponentAlreadyExists
	}
	return tbl.Insert(e, component)
}

func replaceInto[T any](w *World, p *partition, e Entity, component T) (T, error) {
	var zero T
	if !w.allocator.isAlive(e) {
		return zero, ErrEntityNotFound
	}
	tbl, ok := lookupTable[T](p)
	if !ok || !tbl.Contains(e) {
		return zero, ErrComponentNotFound
	}
	return tbl.Replace(e, component)
}

func removeFrom[T any](w *World, p *partition, e Entity) (T, error) {
	var zero T
	if !w.allocator.isAlive(e) {
		return zero, ErrEntityNotFound
	}
	tbl, ok := lookupTable[T](p)
	if !ok || !tbl.Contains(e) {
		return zero, ErrComponentNotFound
	}
	return tbl.Remove(e)
}

func getFrom[T any](w *World, p *partition, e Entity) (T, bool) {
	var zero T
	if !w.allocator.isAlive(e) {
		return zero, false
	}
	tbl, ok := lookupTable[T](p)
	if !ok {
		return zero, false
	}
	return tbl.Get(e)
}

// AddComponent attaches a component of type T to e. Fails with
// ErrComponentAlreadyExists if e already carries a T, or ErrEntityNotFound if
// e is not alive.
func AddComponent[T any](w *World, e Entity, component T) error {
	if w.inSystemPhase() {
		w.deferred.push(command{
			kind:      opAddComponent,
			entity:    e,
			component: typeName[T](),
			apply:     func(w *World) error { return addInto(w, w.components, e, component) },
		})
		return nil
	}
	w.guardMutation("AddComponent")
	return addInto(w, w.components, e, component)
}

// ReplaceComponent overwrites e's component of type T and returns the prior
// committed value. Fails with ErrComponentNotFound if e does not carry a T,
// or ErrEntityNotFound if e is not alive.
func ReplaceComponent[T any](w *World, e Entity, component T) (T, error) {
	if w.inSystemPhase() {
		prior, _ := getFrom[T](w, w.components, e)
		w.deferred.push(command{
			kind:      opReplaceComponent,
			entity:    e,
			component: typeName[T](),
			apply: func(w *World) error {
				_, err := replaceInto(w, w.components, e, component)
				return err
			},
		})
		return prior, nil
	}
	w.guardMutation("ReplaceComponent")
	return replaceInto(w, w.components, e, component)
}

// RemoveComponent detaches e's component of type T and returns it. Error
// conditions mirror ReplaceComponent. During a system phase the removal is
// deferred and the currently-visible value is returned.
func RemoveComponent[T any](w *World, e Entity) (T, error) {
	if w.inSystemPhase() {
		visible, _ := getFrom[T](w, w.components, e)
		w.deferred.push(command{
			kind:      opRemoveComponent,
			entity:    e,
			component: typeName[T](),
			apply: func(w *World) error {
				_, err := removeFrom[T](w, w.components, e)
				return err
			},
		})
		return visible, nil
	}
	w.guardMutation("RemoveComponent")
	return removeFrom[T](w, w.components, e)
}

// UpdateComponent applies fn to e's committed component of type T and writes
// the result back, returning the new value. The write follows the same
// immediate-vs-deferred rule as ReplaceComponent.
func UpdateComponent[T any](w *World, e Entity, fn func(T) T) (T, error) {
	var zero T
	if !w.allocator.isAlive(e) {
		return zero, ErrEntityNotFound
	}
	current, ok := getFrom[T](w, w.components, e)
	if !ok {
		return zero, ErrComponentNotFound
	}
	next := fn(current)
	if _, err := ReplaceComponent(w, e, next); err != nil {
		return zero, err
	}
	return next, nil
}

// GetComponent returns e's committed component of type T.
func GetComponent[T any](w *World, e Entity) (T, bool) {
	return getFrom[T](w, w.components, e)
}

// HasComponent reports whether e carries a committed component of type T.
func HasComponent[T any](w *World, e Entity) bool {
	_, ok := getFrom[T](w, w.components, e)
	return ok
}
