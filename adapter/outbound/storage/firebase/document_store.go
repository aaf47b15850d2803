// Package firebase talks to a Firebase Realtime Database.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/bantuankita/bantuankita/adapter/outbound/storage/docpath"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

// Config selects the database. CredentialsFile may be empty when the
// emulator (FIREBASE_DATABASE_EMULATOR_HOST) or ambient credentials are used.
type Config struct {
	DatabaseURL     string
	ProjectID       string
	CredentialsFile string
}

type DocumentStore struct {
	client *db.Client
}

func NewDocumentStore(ctx context.Context, cfg Config) (*DocumentStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: firebase database url not configured", model.ErrStoreUnavailable)
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		DatabaseURL: cfg.DatabaseURL,
		ProjectID:   cfg.ProjectID,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: init firebase app: %v", model.ErrStoreUnavailable, err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: init realtime database: %v", model.ErrStoreUnavailable, err)
	}

	return &DocumentStore{client: client}, nil
}

var _ outbound.DocumentStore = (*DocumentStore)(nil)

func (s *DocumentStore) ref(path string) (*db.Ref, error) {
	segments, err := docpath.Split(path)
	if err != nil {
		return nil, err
	}
	return s.client.NewRef("/" + docpath.Join(segments...)), nil
}

func (s *DocumentStore) Get(ctx context.Context, path string, dest any) (bool, error) {
	ref, err := s.ref(path)
	if err != nil {
		return false, err
	}

	var raw json.RawMessage
	if err := ref.Get(ctx, &raw); err != nil {
		return false, unavailable(err)
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (s *DocumentStore) Set(ctx context.Context, path string, value any) error {
	ref, err := s.ref(path)
	if err != nil {
		return err
	}
	if value == nil {
		return s.remove(ctx, ref)
	}
	if err := ref.Set(ctx, value); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *DocumentStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	ref, err := s.ref(path)
	if err != nil {
		return err
	}
	for k := range fields {
		if strings.ContainsAny(k, ".#$[]") {
			return fmt.Errorf("%w: field %q", model.ErrUnsupportedPath, k)
		}
	}
	if err := ref.Update(ctx, fields); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *DocumentStore) Remove(ctx context.Context, path string) error {
	ref, err := s.ref(path)
	if err != nil {
		return err
	}
	return s.remove(ctx, ref)
}

func (s *DocumentStore) remove(ctx context.Context, ref *db.Ref) error {
	if err := ref.Delete(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

// Push lets the database assign the key
func (s *DocumentStore) Push(ctx context.Context, path string, value any) (string, error) {
	ref, err := s.ref(path)
	if err != nil {
		return "", err
	}
	child, err := ref.Push(ctx, value)
	if err != nil {
		return "", unavailable(err)
	}
	return child.Key, nil
}

// UpdatePaths sends one multi-location update against the root; the
// database applies it atomically and treats null values as deletes.
func (s *DocumentStore) UpdatePaths(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	update := make(map[string]any, len(values))
	for path, v := range values {
		segments, err := docpath.Split(path)
		if err != nil {
			return err
		}
		if len(segments) == 0 {
			return fmt.Errorf("%w: root path", model.ErrUnsupportedPath)
		}
		update[docpath.Join(segments...)] = v
	}

	if err := s.client.NewRef("/").Update(ctx, update); err != nil {
		return unavailable(err)
	}
	return nil
}

// Ping does a shallow read of the offers collection
func (s *DocumentStore) Ping(ctx context.Context) error {
	var v any
	if err := s.client.NewRef("/"+outbound.OffersPath).GetShallow(ctx, &v); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *DocumentStore) Close() error {
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}
