package memory

import (
	"encoding/json"
)

// Tree is a JSON document tree addressed by path segments. It is not safe
// for concurrent use; callers hold their own lock.
type Tree struct {
	root map[string]any
}

func NewTree() *Tree {
	return &Tree{root: make(map[string]any)}
}

// TreeFromJSON rebuilds a tree from its serialized form
func TreeFromJSON(data []byte) (*Tree, error) {
	t := NewTree()
	if len(data) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(data, &t.root); err != nil {
		return nil, err
	}
	if t.root == nil {
		t.root = make(map[string]any)
	}
	return t, nil
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.root)
}

// Lookup returns the node at segments
func (t *Tree) Lookup(segments []string) (any, bool) {
	var node any = t.root
	for _, s := range segments {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[s]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Decode unmarshals the node at segments into dest
func (t *Tree) Decode(segments []string, dest any) (bool, error) {
	node, ok := t.Lookup(segments)
	if !ok {
		return false, nil
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

// Put stores an already normalized value; nil deletes
func (t *Tree) Put(segments []string, value any) {
	if value == nil {
		t.Delete(segments)
		return
	}
	if len(segments) == 0 {
		if m, ok := value.(map[string]any); ok {
			t.root = m
		}
		return
	}

	node := t.root
	for _, s := range segments[:len(segments)-1] {
		child, ok := node[s].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[s] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}

// Delete removes the node at segments and prunes parents left empty
func (t *Tree) Delete(segments []string) {
	if len(segments) == 0 {
		t.root = make(map[string]any)
		return
	}

	parents := make([]map[string]any, 0, len(segments))
	node := t.root
	for _, s := range segments[:len(segments)-1] {
		parents = append(parents, node)
		child, ok := node[s].(map[string]any)
		if !ok {
			return
		}
		node = child
	}
	delete(node, segments[len(segments)-1])

	for i := len(parents) - 1; i >= 0 && len(node) == 0; i-- {
		delete(parents[i], segments[i])
		node = parents[i]
	}
}
