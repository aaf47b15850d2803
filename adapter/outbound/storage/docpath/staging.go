package docpath

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bantuankita/bantuankita/domain/model"
)

// Change is one resolved location of a multi-path update. Value has already
// been reduced to plain JSON types; nil deletes.
type Change struct {
	Path     string
	Location Location
	Value    any
}

// PrepareChanges resolves every path and normalizes its value. Changes are
// ordered so a record is always staged before its own fields.
func PrepareChanges(values map[string]any) ([]Change, error) {
	changes := make([]Change, 0, len(values))
	for path, v := range values {
		loc, err := Resolve(path)
		if err != nil {
			return nil, err
		}
		normalized, err := Normalize(v)
		if err != nil {
			return nil, err
		}
		if loc.Key == "" && normalized != nil {
			if _, ok := normalized.(map[string]any); !ok {
				return nil, fmt.Errorf("%w: collection %q needs an object", model.ErrUnsupportedPath, loc.Collection)
			}
		}
		changes = append(changes, Change{Path: Join(splitOrEmpty(path)...), Location: loc, Value: normalized})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// Collections lists the distinct collections touched by changes
func Collections(changes []Change) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range changes {
		if !seen[c.Location.Collection] {
			seen[c.Location.Collection] = true
			out = append(out, c.Location.Collection)
		}
	}
	return out
}

// RecordWrite replaces (or deletes, when Value is nil) one whole record
type RecordWrite struct {
	Collection string
	Key        string
	Value      any
}

// Plan is the record-level outcome of a multi-path update
type Plan struct {
	Dropped []string // collections cleared before Records are written
	Records []RecordWrite
}

// LoadFunc fetches the current body of a record; found is false when absent
type LoadFunc func(collection, key string) (record map[string]any, found bool, err error)

type recordRef struct{ collection, key string }

// Stage folds changes into whole-record writes for engines that keep one JSON
// body per record. Field-level changes read the current record through load.
func Stage(changes []Change, load LoadFunc) (*Plan, error) {
	dropped := make(map[string]bool)
	staged := make(map[recordRef]any)
	var order []recordRef

	stage := func(ref recordRef, v any) {
		if _, ok := staged[ref]; !ok {
			order = append(order, ref)
		}
		staged[ref] = v
	}

	for _, c := range changes {
		loc := c.Location
		switch {
		case loc.Key == "":
			dropped[loc.Collection] = true
			for ref := range staged {
				if ref.collection == loc.Collection {
					staged[ref] = nil
				}
			}
			if m, ok := c.Value.(map[string]any); ok {
				for k, v := range m {
					stage(recordRef{loc.Collection, k}, v)
				}
			}

		case len(loc.Field) == 0:
			stage(recordRef{loc.Collection, loc.Key}, c.Value)

		default:
			ref := recordRef{loc.Collection, loc.Key}
			var current map[string]any
			if v, ok := staged[ref]; ok {
				current, _ = v.(map[string]any)
			} else if !dropped[loc.Collection] {
				record, found, err := load(loc.Collection, loc.Key)
				if err != nil {
					return nil, err
				}
				if found {
					current = record
				}
			}

			tree := TreeOf(current)
			tree.Put(loc.Field, c.Value)
			if len(tree) == 0 {
				stage(ref, nil)
			} else {
				stage(ref, map[string]any(tree))
			}
		}
	}

	plan := &Plan{}
	for c := range dropped {
		plan.Dropped = append(plan.Dropped, c)
	}
	sort.Strings(plan.Dropped)
	for _, ref := range order {
		v := staged[ref]
		if v == nil && dropped[ref.collection] {
			continue
		}
		plan.Records = append(plan.Records, RecordWrite{Collection: ref.collection, Key: ref.key, Value: v})
	}
	return plan, nil
}

// RecordTree is a record body that can be edited by field path
type RecordTree map[string]any

func TreeOf(record map[string]any) RecordTree {
	if record == nil {
		return RecordTree{}
	}
	return RecordTree(record)
}

// Put sets the value at field; nil deletes it and prunes emptied parents
func (t RecordTree) Put(field []string, value any) {
	if len(field) == 0 {
		return
	}
	node := map[string]any(t)
	parents := make([]map[string]any, 0, len(field))
	for _, s := range field[:len(field)-1] {
		parents = append(parents, node)
		child, ok := node[s].(map[string]any)
		if !ok {
			if value == nil {
				return
			}
			child = make(map[string]any)
			node[s] = child
		}
		node = child
	}

	last := field[len(field)-1]
	if value != nil {
		node[last] = value
		return
	}
	delete(node, last)
	for i := len(parents) - 1; i >= 0 && len(node) == 0; i-- {
		delete(parents[i], field[i])
		node = parents[i]
	}
}

// Decode unmarshals the value at field into dest
func (t RecordTree) Decode(field []string, dest any) (bool, error) {
	var node any = map[string]any(t)
	for _, s := range field {
		m, ok := node.(map[string]any)
		if !ok {
			return false, nil
		}
		if node, ok = m[s]; !ok {
			return false, nil
		}
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

// Normalize converts v into the generic form produced by encoding/json
// (maps, slices, float64, string, bool, nil).
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

func splitOrEmpty(path string) []string {
	segments, _ := Split(path)
	return segments
}
