// Package file keeps the document tree in a sealed file on local disk.
package file

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bantuankita/bantuankita/adapter/outbound/storage/docpath"
	"github.com/bantuankita/bantuankita/adapter/outbound/storage/memory"
	"github.com/bantuankita/bantuankita/adapter/outbound/storage/sealed"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

// DocumentStore is an in-memory tree persisted to an encrypted file after
// every write. Reload picks up changes made to the file by another process.
type DocumentStore struct {
	filePath string
	box      *sealed.Box
	logger   outbound.Logger
	tree     *memory.Tree
	ids      *docpath.PushIDGenerator
	lastSum  [32]byte
	mu       sync.RWMutex
}

func NewDocumentStore(
	filePath string,
	crypto outbound.CryptoService,
	machineID outbound.MachineIDService,
	logger outbound.Logger,
) (*DocumentStore, error) {
	box, err := sealed.NewBox(crypto, machineID)
	if err != nil {
		return nil, err
	}

	s := &DocumentStore{
		filePath: filePath,
		box:      box,
		logger:   logger,
		tree:     memory.NewTree(),
		ids:      docpath.NewPushIDGenerator(),
	}

	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

var _ outbound.DocumentStore = (*DocumentStore)(nil)

// Reload replaces the in-memory tree with the file contents. A missing file
// leaves an empty tree; our own last write is skipped.
func (s *DocumentStore) Reload(ctx context.Context) error {
	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("Document file not found, starting empty", "path", s.filePath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", model.ErrStoreUnavailable, s.filePath, err)
	}

	sum := sha256.Sum256(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if sum == s.lastSum {
		return nil
	}

	var data []byte
	if err := s.box.Open(raw, &data); err != nil {
		return fmt.Errorf("open document file: %w", err)
	}

	tree, err := memory.TreeFromJSON(data)
	if err != nil {
		return fmt.Errorf("%w: %v", sealed.ErrCorrupted, err)
	}

	s.tree = tree
	s.lastSum = sum
	s.logger.Info("Document file loaded", "path", s.filePath)
	return nil
}

func (s *DocumentStore) Path() string {
	return s.filePath
}

func (s *DocumentStore) Get(ctx context.Context, path string, dest any) (bool, error) {
	segments, err := docpath.Split(path)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
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

// UpdatePaths applies the writes to a copy of the tree and only swaps it in
// once the file has been written.
func (s *DocumentStore) UpdatePaths(ctx context.Context, values map[string]any) error {
	writes, err := memory.PrepareWrites(values)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.tree.MarshalJSON()
	if err != nil {
		return err
	}
	next, err := memory.TreeFromJSON(current)
	if err != nil {
		return err
	}
	memory.ApplyWrites(next, writes)

	if err := s.persist(next); err != nil {
		return err
	}
	s.tree = next
	return nil
}

func (s *DocumentStore) persist(tree *memory.Tree) error {
	data, err := tree.MarshalJSON()
	if err != nil {
		return err
	}

	sealedData, err := s.box.Seal(data)
	if err != nil {
		return fmt.Errorf("seal document file: %w", err)
	}

	if err := sealed.WriteFile(s.filePath, sealedData); err != nil {
		return fmt.Errorf("%w: write %s: %v", model.ErrStoreUnavailable, s.filePath, err)
	}

	s.lastSum = sha256.Sum256(sealedData)
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *DocumentStore) Close() error {
	return nil
}
