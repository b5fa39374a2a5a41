package tessera

// Ephemeral components mirror the regular operations but live in the
// ephemeral partition, which the scheduler clears during tick cleanup. A type
// may appear in both partitions on the same entity; the partitions do not
// interfere. Ephemeral components are the sanctioned replacement for an event
// bus: a system publishes by adding one, downstream systems observe it within
// the same tick, and cleanup guarantees nothing leaks into the next tick.

// AddEphemeralComponent attaches an ephemeral component of type T to e.
func AddEphemeralComponent[T any](w *World, e Entity, component T) error {
	if w.inSystemPhase() {
		w.deferred.push(command{
			kind:      opAddEphemeral,
			entity:    e,
			component: typeName[T](),
			apply:     func(w *World) error { return addInto(w, w.ephemeral, e, component) },
		})
		return nil
	}
	w.guardMutation("AddEphemeralComponent")
	return addInto(w, w.ephemeral, e, component)
}

// ReplaceEphemeralComponent overwrites e's ephemeral component of type T and
// returns the prior committed value.
func ReplaceEphemeralComponent[T any](w *World, e Entity, component T) (T, error) {
	if w.inSystemPhase() {
		prior, _ := getFrom[T](w, w.ephemeral, e)
		w.deferred.push(command{
			kind:      opReplaceEphemeral,
			entity:    e,
			component: typeName[T](),
			apply: func(w *World) error {
				_, err := replaceInto(w, w.ephemeral, e, component)
				return err
			},
		})
		return prior, nil
	}
	w.guardMutation("ReplaceEphemeralComponent")
	return replaceInto(w, w.ephemeral, e, component)
}

// RemoveEphemeralComponent detaches e's ephemeral component of type T before
// cleanup would.
func RemoveEphemeralComponent[T any](w *World, e Entity) (T, error) {
	if w.inSystemPhase() {
		visible, _ := getFrom[T](w, w.ephemeral, e)
		w.deferred.push(command{
			kind:      opRemoveEphemeral,
			entity:    e,
			component: typeName[T](),
			apply: func(w *World) error {
				_, err := removeFrom[T](w, w.ephemeral, e)
				return err
			},
		})
		return visible, nil
	}
	w.guardMutation("RemoveEphemeralComponent")
	return removeFrom[T](w, w.ephemeral, e)
}

// UpdateEphemeralComponent applies fn to e's committed ephemeral component of
// type T and writes the result back.
func UpdateEphemeralComponent[T any](w *World, e Entity, fn func(T) T) (T, error) {
	var zero T
	if !w.allocator.isAlive(e) {
		return zero, ErrEntityNotFound
	}
	current, ok := getFrom[T](w, w.ephemeral, e)
	if !ok {
		return zero, ErrComponentNotFound
	}
	next := fn(current)
	if _, err := ReplaceEphemeralComponent(w, e, next); err != nil {
		return zero, err
	}
	return next, nil
}

// GetEphemeralComponent returns e's committed ephemeral component of type T.
func GetEphemeralComponent[T any](w *World, e Entity) (T, bool) {
	return getFrom[T](w, w.ephemeral, e)
}

// HasEphemeralComponent reports whether e carries a committed ephemeral
// component of type T.
func HasEphemeralComponent[T any](w *World, e Entity) bool {
	_, ok := getFrom[T](w, w.ephemeral, e)
	return ok
}
