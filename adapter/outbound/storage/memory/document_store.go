package memory

import (
	"context"
	"sync"

	"github.com/bantuankita/bantuankita/adapter/outbound/storage/docpath"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

// DocumentStore keeps the whole document tree in process memory
type DocumentStore struct {
	tree  *Tree
	ids   *docpath.PushIDGenerator
	mutex sync.RWMutex
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		tree: NewTree(),
		ids:  docpath.NewPushIDGenerator(),
	}
}

var _ outbound.DocumentStore = (*DocumentStore)(nil)

func (s *DocumentStore) Get(ctx context.Context, path string, dest any) (bool, error) {
	segments, err := docpath.Split(path)
	if err != nil {
		return false, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.tree.Decode(segments, dest)
}

func (s *DocumentStore) Set(ctx context.Context, path string, value any) error {
	return s.UpdatePaths(ctx, map[string]any{path: value})
}

func (s *DocumentStore) Update(ctx context.Context, path string, fields map[string]any) error {
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		values[docpath.Join(path, k)] = v
	}
	return s.UpdatePaths(ctx, values)
}

func (s *DocumentStore) Remove(ctx context.Context, path string) error {
	return s.UpdatePaths(ctx, map[string]any{path: nil})
}

func (s *DocumentStore) Push(ctx context.Context, path string, value any) (string, error) {
	id := s.ids.Next()
	if err := s.Set(ctx, docpath.Join(path, id), value); err != nil {
		return "", err
	}
	return id, nil
}

// UpdatePaths validates and encodes every value before touching the tree,
// so either all writes land or none do.
func (s *DocumentStore) UpdatePaths(ctx context.Context, values map[string]any) error {
	writes, err := PrepareWrites(values)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	ApplyWrites(s.tree, writes)
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *DocumentStore) Close() error {
	return nil
}

// Write is one normalized location update
type Write struct {
	Segments []string
	Value    any
}

// PrepareWrites splits paths and normalizes values ahead of a multi-path update
func PrepareWrites(values map[string]any) ([]Write, error) {
	writes := make([]Write, 0, len(values))
	for path, v := range values {
		segments, err := docpath.Split(path)
		if err != nil {
			return nil, err
		}
		normalized, err := docpath.Normalize(v)
		if err != nil {
			return nil, err
		}
		writes = append(writes, Write{Segments: segments, Value: normalized})
	}
	return writes, nil
}

func ApplyWrites(tree *Tree, writes []Write) {
	for _, w := range writes {
		tree.Put(w.Segments, w.Value)
	}
}
