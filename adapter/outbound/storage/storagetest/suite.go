// Package storagetest holds behaviour checks shared by every document store engine.
package storagetest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type record struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Count  int    `json:"count,omitempty"`
}

// Run exercises store semantics against a fresh store from newStore per subtest
func Run(t *testing.T, newStore func(t *testing.T) outbound.DocumentStore) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		var r record
		found, err := s.Get(context.Background(), "offers/nope", &r)
		require.NoError(t, err)
		assert.False(t, found)

		var all map[string]record
		found, err = s.Get(context.Background(), "offers", &all)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "offers/a", record{Name: "Budi", Status: "pending"}))

		var r record
		found, err := s.Get(ctx, "offers/a", &r)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, record{Name: "Budi", Status: "pending"}, r)

		var status string
		found, err = s.Get(ctx, "offers/a/status", &status)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "pending", status)
	})

	t.Run("UpdateMergesFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "offers/a", record{Name: "Budi", Status: "pending"}))
		require.NoError(t, s.Update(ctx, "offers/a", map[string]any{"status": "approved", "count": 2}))

		var r record
		_, err := s.Get(ctx, "offers/a", &r)
		require.NoError(t, err)
		assert.Equal(t, record{Name: "Budi", Status: "approved", Count: 2}, r)
	})

	t.Run("Remove", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "offers/a", record{Name: "Budi"}))
		require.NoError(t, s.Remove(ctx, "offers/a"))
		require.NoError(t, s.Remove(ctx, "offers/a"))

		var r record
		found, err := s.Get(ctx, "offers/a", &r)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("PushOrdersKeys", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var ids []string
		for _, name := range []string{"a", "b", "c"} {
			id, err := s.Push(ctx, "offers", record{Name: name})
			require.NoError(t, err)
			require.NotEmpty(t, id)
			ids = append(ids, id)
		}
		assert.True(t, sort.StringsAreSorted(ids), "push ids should sort chronologically: %v", ids)

		var all map[string]record
		found, err := s.Get(ctx, "offers", &all)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, all, 3)
		assert.Equal(t, "b", all[ids[1]].Name)
	})

	t.Run("UpdatePathsIsMultiLocation", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "offers/owner", record{Name: "Budi", Status: "approved"}))
		require.NoError(t, s.Set(ctx, "removalRequests/r1", record{Name: "Budi", Status: "pending"}))

		require.NoError(t, s.UpdatePaths(ctx, map[string]any{
			"offers/owner":              nil,
			"removalRequests/r1/status": "approved",
			"removalRequests/r1/count":  1,
		}))

		var offer record
		found, err := s.Get(ctx, "offers/owner", &offer)
		require.NoError(t, err)
		assert.False(t, found)

		var req record
		found, err = s.Get(ctx, "removalRequests/r1", &req)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, record{Name: "Budi", Status: "approved", Count: 1}, req)
	})

	t.Run("DeletingLastFieldDropsRecord", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "offers/a", map[string]any{"status": "pending"}))
		require.NoError(t, s.UpdatePaths(ctx, map[string]any{"offers/a/status": nil}))

		var r record
		found, err := s.Get(ctx, "offers/a", &r)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("SetCollectionReplacesRecords", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "offers/old", record{Name: "old"}))
		require.NoError(t, s.Set(ctx, "offers", map[string]record{"new": {Name: "new"}}))

		var all map[string]record
		_, err := s.Get(ctx, "offers", &all)
		require.NoError(t, err)
		assert.Equal(t, map[string]record{"new": {Name: "new"}}, all)
	})

	t.Run("RejectsForbiddenKeys", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var r record
		_, err := s.Get(ctx, "offers/a.b", &r)
		assert.ErrorIs(t, err, model.ErrUnsupportedPath)
		assert.ErrorIs(t, s.Set(ctx, "offers/$x", record{}), model.ErrUnsupportedPath)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
