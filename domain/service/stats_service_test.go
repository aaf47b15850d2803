package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantuankita/bantuankita/domain/model"
)

type pingStore struct {
	err error
}

func (s pingStore) Get(ctx context.Context, path string, dest any) (bool, error)         { return false, nil }
func (s pingStore) Set(ctx context.Context, path string, value any) error                { return nil }
func (s pingStore) Update(ctx context.Context, path string, fields map[string]any) error { return nil }
func (s pingStore) Remove(ctx context.Context, path string) error                        { return nil }
func (s pingStore) Push(ctx context.Context, path string, value any) (string, error)     { return "", nil }
func (s pingStore) UpdatePaths(ctx context.Context, values map[string]any) error         { return nil }
func (s pingStore) Ping(ctx context.Context) error                                       { return s.err }
func (s pingStore) Close() error                                                         { return nil }

func TestStatsService_CurrentStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	offers := newFakeOfferRepository()
	removals := newFakeRemovalRepository(offers)

	o, err := offers.Create(ctx, validDraft())
	require.NoError(t, err)
	_, err = offers.Create(ctx, validDraft())
	require.NoError(t, err)
	_, err = offers.SetStatus(ctx, o.ID, model.OfferApproved)
	require.NoError(t, err)
	removals.requests["r1"] = &model.RemovalRequest{ID: "r1", Status: model.RemovalRequestPending}
	removals.requests["r2"] = &model.RemovalRequest{ID: "r2", Status: model.RemovalRequestRejected}

	svc := NewStatsService(ctx, offers, removals, pingStore{}, nopLogger{}, time.Hour)
	defer svc.Cleanup()

	svc.RecordEvent(model.NewEvent(model.EventOfferSubmitted, "a", model.SourceAPI, nil))
	svc.RecordEvent(model.NewEvent(model.EventOfferApproved, "a", model.SourceTelegram, nil))

	snap, err := svc.GetCurrentStats(ctx)
	require.NoError(t, err)

	assert.True(t, snap.StoreOnline)
	assert.Equal(t, model.OfferStats{Total: 2, Pending: 1, Approved: 1}, snap.Offers)
	assert.Equal(t, 2, snap.Removals.Total)
	assert.Equal(t, 1, snap.Removals.Pending)
	assert.Equal(t, 1, snap.Removals.Rejected)
	assert.Equal(t, 1, snap.Events[string(model.EventOfferApproved)])
	require.Len(t, snap.Recent, 2)
	assert.Equal(t, model.EventOfferApproved, snap.Recent[0].Type)
	assert.Greater(t, snap.Goroutines, 0)

	history, err := svc.GetStatsHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStatsService_StoreDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	offers := newFakeOfferRepository()
	offers.err = model.ErrStoreUnavailable

	svc := NewStatsService(ctx, offers, newFakeRemovalRepository(offers), pingStore{err: errors.New("down")}, nopLogger{}, time.Hour)
	defer svc.Cleanup()

	snap, err := svc.GetCurrentStats(ctx)
	require.NoError(t, err)
	assert.False(t, snap.StoreOnline)
	assert.Equal(t, model.OfferStats{}, snap.Offers)
}

func TestStatsService_HistoryLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	offers := newFakeOfferRepository()
	svc := NewStatsService(ctx, offers, newFakeRemovalRepository(offers), pingStore{}, nopLogger{}, time.Hour)
	defer svc.Cleanup()

	for i := 0; i < 5; i++ {
		_, err := svc.GetCurrentStats(ctx)
		require.NoError(t, err)
	}

	history, err := svc.GetStatsHistory(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestStatsService_RecentEventsCapped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	offers := newFakeOfferRepository()
	svc := NewStatsService(ctx, offers, newFakeRemovalRepository(offers), pingStore{}, nopLogger{}, time.Hour)
	defer svc.Cleanup()

	for i := 0; i < maxRecentEvents+10; i++ {
		svc.RecordEvent(model.NewEvent(model.EventOfferSubmitted, "x", model.SourceAPI, nil))
	}

	snap, err := svc.GetCurrentStats(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Recent, maxRecentEvents)
	assert.Equal(t, maxRecentEvents+10, snap.Events[string(model.EventOfferSubmitted)])
}

func TestFanOut_SkipsNil(t *testing.T) {
	a, b := &recordingPublisher{}, &recordingPublisher{}
	p := FanOut(a, nil, b)

	p.Publish(model.NewEvent(model.EventOfferDeleted, "x", model.SourceAPI, nil))

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}
