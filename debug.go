package tessera

import (
	"sort"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// EntityState is one entity's slice of a state dump: every component value it
// carries, keyed by type name, per partition.
type EntityState struct {
	ID         string                     `json:"id"`
	Components map[string]json.RawMessage `json:"components"`
	Ephemeral  map[string]json.RawMessage `json:"ephemeral,omitempty"`
}

// DumpState serializes a point-in-time snapshot of every alive entity and its
// component values to JSON. The dump is write-only debugging output (the
// world cannot be reconstructed from it) and requires component values to be
// JSON-serializable, which the core otherwise never demands.
func DumpState(w *World) ([]byte, error) {
	entities := w.Entities()
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Less(entities[j])
	})

	states := make([]EntityState, 0, len(entities))
	for _, e := range entities {
		regular, err := dumpPartition(w.components, e)
		if err != nil {
			return nil, err
		}
		ephemeral, err := dumpPartition(w.ephemeral, e)
		if err != nil {
			return nil, err
		}
		states = append(states, EntityState{
			ID:         e.String(),
			Components: regular,
			Ephemeral:  ephemeral,
		})
	}

	encoded, err := json.Marshal(states)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode world state")
	}
	return encoded, nil
}

func dumpPartition(p *partition, e Entity) (map[string]json.RawMessage, error) {
	names := make([]string, 0, len(p.tables))
	byName := make(map[string]anyTable, len(p.tables))
	for t, tbl := range p.tables {
		names = append(names, t.String())
		byName[t.String()] = tbl
	}
	sort.Strings(names)

	out := map[string]json.RawMessage{}
	for _, name := range names {
		value, ok := byName[name].GetAny(e)
		if !ok {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, eris.Wrapf(err, "component %s must be json serializable", name)
		}
		out[name] = encoded
	}
	return out, nil
}
