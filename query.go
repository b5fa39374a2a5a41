package tessera

import (
	"sort"

	"pkg.mudtale.dev/tessera/filter"
)

// Query is a declarative filter over the world: entities carrying the primary
// component P, narrowed by positive and negative constraints on other
// component types. Queries are pure values: building one performs no work;
// evaluation happens on iteration.
//
//	q := tessera.NewQuery[Position]().
//		With(filter.Component[Velocity]()).
//		Without(filter.Component[Dead]())
//	q.Each(world, func(e tessera.Entity, pos Position) bool {
//		// ...
//		return true
//	})
//
// Constraints added with With/Without test the regular partition;
// WithEphemeral/WithoutEphemeral test the ephemeral partition. Each iterates
// P's regular storage, EachEphemeral its ephemeral storage.
type Query[P any] struct {
	with       []filter.Ref
	without    []filter.Ref
	withEph    []filter.Ref
	withoutEph []filter.Ref
}

// NewQuery creates a query whose primary component type is P.
func NewQuery[P any]() *Query[P] {
	return &Query[P]{}
}

// With requires entities to also carry each referenced component type in the
// regular partition. Duplicates are deduplicated.
func (q *Query[P]) With(refs ...filter.Ref) *Query[P] {
	q.with = filter.Dedupe(append(q.with, refs...))
	return q
}

// Without excludes entities carrying any referenced component type in the
// regular partition.
func (q *Query[P]) Without(refs ...filter.Ref) *Query[P] {
	q.without = filter.Dedupe(append(q.without, refs...))
	return q
}

// WithEphemeral requires entities to also carry each referenced component
// type in the ephemeral partition.
func (q *Query[P]) WithEphemeral(refs ...filter.Ref) *Query[P] {
	q.withEph = filter.Dedupe(append(q.withEph, refs...))
	return q
}

// WithoutEphemeral excludes entities carrying any referenced component type
// in the ephemeral partition.
func (q *Query[P]) WithoutEphemeral(refs ...filter.Ref) *Query[P] {
	q.withoutEph = filter.Dedupe(append(q.withoutEph, refs...))
	return q
}

// Each invokes fn for every matching entity with P taken from the regular
// partition, in that storage's iteration order, each entity exactly once.
// Return false from fn to stop early.
//
// Iteration reads committed state only; mutations deferred into the buffer
// are safe mid-iteration, direct mutations are not and panic.
func (q *Query[P]) Each(w *World, fn func(Entity, P) bool) {
	q.each(w, w.components, fn)
}

// EachEphemeral is Each with P taken from the ephemeral partition. The
// regular-partition constraints still apply.
func (q *Query[P]) EachEphemeral(w *World, fn func(Entity, P) bool) {
	q.each(w, w.ephemeral, fn)
}

func (q *Query[P]) each(w *World, primary *partition, fn func(Entity, P) bool) {
	pt, ok := lookupTable[P](primary)
	if !ok || pt.Len() == 0 {
		return
	}

	// Positive constraints: a missing table means no entity can match.
	positives := make([]anyTable, 0, len(q.with)+len(q.withEph))
	for _, r := range q.with {
		tbl, ok := w.components.byType(r.Type())
		if !ok {
			return
		}
		positives = append(positives, tbl)
	}
	for _, r := range q.withEph {
		tbl, ok := w.ephemeral.byType(r.Type())
		if !ok {
			return
		}
		positives = append(positives, tbl)
	}
	// Check the smallest set first so mismatches short-circuit cheaply.
	sort.Slice(positives, func(i, j int) bool {
		return positives[i].Len() < positives[j].Len()
	})

	// Negative constraints: a missing table excludes nothing.
	negatives := make([]anyTable, 0, len(q.without)+len(q.withoutEph))
	for _, r := range q.without {
		if tbl, ok := w.components.byType(r.Type()); ok {
			negatives = append(negatives, tbl)
		}
	}
	for _, r := range q.withoutEph {
		if tbl, ok := w.ephemeral.byType(r.Type()); ok {
			negatives = append(negatives, tbl)
		}
	}

	w.iterating++
	defer func() { w.iterating-- }()

	keys := pt.Keys()
candidates:
	for _, e := range keys {
		for _, tbl := range positives {
			if !tbl.Contains(e) {
				continue candidates
			}
		}
		for _, tbl := range negatives {
			if tbl.Contains(e) {
				continue candidates
			}
		}
		value, _ := pt.Get(e)
		if !fn(e, value) {
			return
		}
	}
}

// Count returns the exact number of entities matching the query against the
// regular partition.
func (q *Query[P]) Count(w *World) int {
	n := 0
	q.Each(w, func(Entity, P) bool {
		n++
		return true
	})
	return n
}

// Len returns the query's size hint: the cardinality of P's regular storage.
// It never understates the true match count.
func (q *Query[P]) Len(w *World) int {
	tbl, ok := lookupTable[P](w.components)
	if !ok {
		return 0
	}
	return tbl.Len()
}

// First returns the first matching entity in iteration order.
func (q *Query[P]) First(w *World) (Entity, P, bool) {
	var (
		foundEntity Entity
		foundValue  P
		found       bool
	)
	q.Each(w, func(e Entity, v P) bool {
		foundEntity, foundValue, found = e, v, true
		return false
	})
	return foundEntity, foundValue, found
}
