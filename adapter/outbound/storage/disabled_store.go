package storage

import (
	"context"
	"fmt"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

// disabledStore stands in when no engine could be configured. Every call
// fails with ErrStoreUnavailable so reads degrade and writes report failure.
type disabledStore struct {
	reason string
}

func NewDisabledStore(reason string) outbound.DocumentStore {
	return &disabledStore{reason: reason}
}

func (s *disabledStore) err() error {
	return fmt.Errorf("%w: %s", model.ErrStoreUnavailable, s.reason)
}

func (s *disabledStore) Get(ctx context.Context, path string, dest any) (bool, error) {
	return false, s.err()
}

func (s *disabledStore) Set(ctx context.Context, path string, value any) error {
	return s.err()
}

func (s *disabledStore) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.err()
}

func (s *disabledStore) Remove(ctx context.Context, path string) error {
	return s.err()
}

func (s *disabledStore) Push(ctx context.Context, path string, value any) (string, error) {
	return "", s.err()
}

func (s *disabledStore) UpdatePaths(ctx context.Context, values map[string]any) error {
	return s.err()
}

func (s *disabledStore) Ping(ctx context.Context) error {
	return s.err()
}

func (s *disabledStore) Close() error {
	return nil
}
