// Package filter provides the component type references used to build query
// constraints. A Ref is the static type identity token of a component type;
// two Refs are equal iff they name the same Go type.
package filter

import (
	"reflect"
)

// Ref identifies a component type. Obtain one with Component.
type Ref struct {
	typ reflect.Type
}

// Component mints the Ref for component type T.
func Component[T any]() Ref {
	return Ref{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// Type returns the underlying type token.
func (r Ref) Type() reflect.Type {
	return r.typ
}

// Name returns the component type's name, used for logging.
func (r Ref) Name() string {
	if r.typ == nil {
		return ""
	}
	return r.typ.String()
}

// Dedupe returns refs with duplicates removed, preserving first-seen order.
func Dedupe(refs []Ref) []Ref {
	seen := make(map[reflect.Type]struct{}, len(refs))
	out := make([]Ref, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.typ]; ok {
			continue
		}
		seen[r.typ] = struct{}{}
		out = append(out, r)
	}
	return out
}
