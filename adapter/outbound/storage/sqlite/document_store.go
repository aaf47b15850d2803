// Package sqlite keeps one JSON body per record in a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/bantuankita/bantuankita/adapter/outbound/storage/docpath"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents(
  collection TEXT NOT NULL,
  doc_key TEXT NOT NULL,
  body TEXT NOT NULL,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (collection, doc_key)
);`

type document struct {
	Key  string `db:"doc_key"`
	Body string `db:"body"`
}

type DocumentStore struct {
	db  *sqlx.DB
	ids *docpath.PushIDGenerator
}

// NewDocumentStore opens dsn (a file path or ":memory:") and creates the schema
func NewDocumentStore(dsn string) (*DocumentStore, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", model.ErrStoreUnavailable, err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping sqlite: %v", model.ErrStoreUnavailable, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DocumentStore{db: db, ids: docpath.NewPushIDGenerator()}, nil
}

var _ outbound.DocumentStore = (*DocumentStore)(nil)

func (s *DocumentStore) Get(ctx context.Context, path string, dest any) (bool, error) {
	loc, err := docpath.Resolve(path)
	if err != nil {
		return false, err
	}

	if loc.Key == "" {
		rows := []document{}
		if err := s.db.SelectContext(ctx, &rows,
			`SELECT doc_key, body FROM documents WHERE collection = ?`, loc.Collection); err != nil {
			return false, unavailable(err)
		}
		if len(rows) == 0 {
			return false, nil
		}
		records := make(map[string]json.RawMessage, len(rows))
		for _, r := range rows {
			records[r.Key] = json.RawMessage(r.Body)
		}
		raw, err := json.Marshal(records)
		if err != nil {
			return false, err
		}
		return true, json.Unmarshal(raw, dest)
	}

	var body string
	err = s.db.GetContext(ctx, &body,
		`SELECT body FROM documents WHERE collection = ? AND doc_key = ?`, loc.Collection, loc.Key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err)
	}

	if len(loc.Field) == 0 {
		return true, json.Unmarshal([]byte(body), dest)
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		return false, nil
	}
	return docpath.TreeOf(record).Decode(loc.Field, dest)
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

// UpdatePaths stages and writes every change inside one transaction
func (s *DocumentStore) UpdatePaths(ctx context.Context, values map[string]any) error {
	changes, err := docpath.PrepareChanges(values)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable(err)
	}
	defer tx.Rollback()

	plan, err := docpath.Stage(changes, func(collection, key string) (map[string]any, bool, error) {
		var body string
		err := tx.GetContext(ctx, &body,
			`SELECT body FROM documents WHERE collection = ? AND doc_key = ?`, collection, key)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(body), &record); err != nil {
			return nil, false, nil
		}
		return record, true, nil
	})
	if err != nil {
		return unavailable(err)
	}

	for _, c := range plan.Dropped {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ?`, c); err != nil {
			return unavailable(err)
		}
	}

	for _, r := range plan.Records {
		if r.Value == nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = ? AND doc_key = ?`, r.Collection, r.Key); err != nil {
				return unavailable(err)
			}
			continue
		}

		body, err := json.Marshal(r.Value)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents(collection, doc_key, body, updated_at)
			VALUES(?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(collection, doc_key) DO UPDATE
			SET body = excluded.body, updated_at = CURRENT_TIMESTAMP
		`, r.Collection, r.Key, string(body)); err != nil {
			return unavailable(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *DocumentStore) Close() error {
	return s.db.Close()
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}
