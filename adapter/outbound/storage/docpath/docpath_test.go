package docpath

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantuankita/bantuankita/domain/model"
)

func TestResolve(t *testing.T) {
	loc, err := Resolve("/offers/abc/status")
	require.NoError(t, err)
	assert.Equal(t, Location{Collection: "offers", Key: "abc", Field: []string{"status"}}, loc)

	loc, err = Resolve("offers")
	require.NoError(t, err)
	assert.Equal(t, Location{Collection: "offers"}, loc)

	_, err = Resolve("/")
	assert.ErrorIs(t, err, model.ErrUnsupportedPath)

	_, err = Resolve("offers/a.b")
	assert.ErrorIs(t, err, model.ErrUnsupportedPath)
}

func TestPushIDs_AreOrdered(t *testing.T) {
	g := NewPushIDGenerator()
	fixed := time.UnixMilli(1_700_000_000_000)
	g.now = func() time.Time { return fixed }

	ids := make([]string, 0, 200)
	for i := 0; i < 100; i++ {
		ids = append(ids, g.Next())
	}
	fixed = fixed.Add(time.Millisecond)
	for i := 0; i < 100; i++ {
		ids = append(ids, g.Next())
	}

	assert.True(t, sort.StringsAreSorted(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.Len(t, id, 20)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNormalize(t *testing.T) {
	type record struct {
		Status model.OfferStatus `json:"status"`
		Count  int               `json:"count"`
		When   time.Time         `json:"when"`
	}
	when := time.Date(2024, 3, 1, 3, 4, 5, 0, time.UTC)

	v, err := Normalize(record{Status: model.OfferApproved, Count: 3, When: when})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"status": "approved",
		"count":  float64(3),
		"when":   "2024-03-01T03:04:05Z",
	}, v)

	v, err = Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Normalize(make(chan int))
	assert.Error(t, err)
}
