// Package redis stores each collection as a Redis hash of JSON records.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bantuankita/bantuankita/adapter/outbound/storage/docpath"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const DefaultPrefix = "bantuankita:"

type DocumentStore struct {
	client *redis.Client
	prefix string
	ids    *docpath.PushIDGenerator
}

// NewDocumentStore connects to redisURL and checks the connection
func NewDocumentStore(redisURL, prefix string) (*DocumentStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: connect to redis: %v", model.ErrStoreUnavailable, err)
	}

	return NewDocumentStoreWithClient(client, prefix), nil
}

// NewDocumentStoreWithClient wraps an existing client
func NewDocumentStoreWithClient(client *redis.Client, prefix string) *DocumentStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &DocumentStore{
		client: client,
		prefix: prefix,
		ids:    docpath.NewPushIDGenerator(),
	}
}

var _ outbound.DocumentStore = (*DocumentStore)(nil)

func (s *DocumentStore) key(collection string) string {
	return s.prefix + collection
}

func (s *DocumentStore) Get(ctx context.Context, path string, dest any) (bool, error) {
	loc, err := docpath.Resolve(path)
	if err != nil {
		return false, err
	}

	if loc.Key == "" {
		fields, err := s.client.HGetAll(ctx, s.key(loc.Collection)).Result()
		if err != nil {
			return false, unavailable(err)
		}
		if len(fields) == 0 {
			return false, nil
		}
		records := make(map[string]json.RawMessage, len(fields))
		for k, body := range fields {
			records[k] = json.RawMessage(body)
		}
		raw, err := json.Marshal(records)
		if err != nil {
			return false, err
		}
		return true, json.Unmarshal(raw, dest)
	}

	raw, err := s.client.HGet(ctx, s.key(loc.Collection), loc.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err)
	}

	if len(loc.Field) == 0 {
		return true, json.Unmarshal(raw, dest)
	}

	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
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

// UpdatePaths watches every touched hash, stages the writes against the
// current records and commits them in a single MULTI/EXEC.
func (s *DocumentStore) UpdatePaths(ctx context.Context, values map[string]any) error {
	changes, err := docpath.PrepareChanges(values)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}

	collections := docpath.Collections(changes)
	keys := make([]string, len(collections))
	for i, c := range collections {
		keys[i] = s.key(c)
	}

	txf := func(tx *redis.Tx) error {
		plan, err := docpath.Stage(changes, func(collection, key string) (map[string]any, bool, error) {
			raw, err := tx.HGet(ctx, s.key(collection), key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil, false, nil
			}
			if err != nil {
				return nil, false, err
			}
			var record map[string]any
			if err := json.Unmarshal(raw, &record); err != nil {
				return nil, false, nil
			}
			return record, true, nil
		})
		if err != nil {
			return err
		}

		bodies := make([][]byte, len(plan.Records))
		for i, r := range plan.Records {
			if r.Value == nil {
				continue
			}
			if bodies[i], err = json.Marshal(r.Value); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, c := range plan.Dropped {
				pipe.Del(ctx, s.key(c))
			}
			for i, r := range plan.Records {
				if r.Value == nil {
					pipe.HDel(ctx, s.key(r.Collection), r.Key)
				} else {
					pipe.HSet(ctx, s.key(r.Collection), r.Key, bodies[i])
				}
			}
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txf, keys...); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("concurrent update of %v: %w", collections, err)
		}
		return unavailable(err)
	}
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *DocumentStore) Close() error {
	return s.client.Close()
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}
