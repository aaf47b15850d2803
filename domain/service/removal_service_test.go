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

func setupRemovalService() (*removalService, *fakeOfferRepository, *fakeRemovalRepository, *recordingNotifier) {
	offers := newFakeOfferRepository()
	removals := newFakeRemovalRepository(offers)
	notifier := &recordingNotifier{chatID: 42}
	svc := NewRemovalService(removals, notifier, &recordingPublisher{}, nopLogger{}).(*removalService)
	return svc, offers, removals, notifier
}

func removalDraft() model.RemovalDraft {
	return model.RemovalDraft{Name: "budi", PhoneNumber: " 081234567890 ", Reason: "Sudah tidak tersedia"}
}

func TestRemovalService_Request(t *testing.T) {
	svc, offers, _, notifier := setupRemovalService()
	ctx := context.Background()

	offer, err := offers.Create(ctx, validDraft())
	require.NoError(t, err)

	req, err := svc.Request(ctx, removalDraft())

	require.NoError(t, err)
	assert.Equal(t, offer.ID, req.UserID)
	assert.Equal(t, model.RemovalRequestPending, req.Status)
	assert.Equal(t, "081234567890", req.PhoneNumber)
	require.Len(t, notifier.removals, 1)
	assert.Equal(t, req.ID, notifier.removals[0].ID)
}

func TestRemovalService_Request_MissingFields(t *testing.T) {
	svc, _, _, _ := setupRemovalService()

	_, err := svc.Request(context.Background(), model.RemovalDraft{Name: "Budi"})

	assert.ErrorIs(t, err, model.ErrMissingFields)
}

func TestRemovalService_Request_NoMatch(t *testing.T) {
	svc, offers, _, _ := setupRemovalService()
	ctx := context.Background()

	_, err := offers.Create(ctx, validDraft())
	require.NoError(t, err)

	draft := removalDraft()
	draft.PhoneNumber = "089999999999"
	_, err = svc.Request(ctx, draft)

	assert.ErrorIs(t, err, model.ErrNoMatchingOffer)
}

func TestRemovalService_Request_DuplicatePending(t *testing.T) {
	svc, offers, removals, _ := setupRemovalService()
	ctx := context.Background()

	_, err := offers.Create(ctx, validDraft())
	require.NoError(t, err)

	_, err = svc.Request(ctx, removalDraft())
	require.NoError(t, err)

	_, err = svc.Request(ctx, removalDraft())
	assert.ErrorIs(t, err, model.ErrPendingRemovalExists)
	assert.Len(t, removals.requests, 1)
}

func TestRemovalService_Request_NotifyFailureIgnored(t *testing.T) {
	svc, offers, _, notifier := setupRemovalService()
	notifier.failWith = errors.New("boom")
	ctx := context.Background()

	_, err := offers.Create(ctx, validDraft())
	require.NoError(t, err)

	req, err := svc.Request(ctx, removalDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
}

func TestRemovalService_Approve_DeletesOffer(t *testing.T) {
	svc, offers, _, _ := setupRemovalService()
	ctx := context.Background()

	offer, err := offers.Create(ctx, validDraft())
	require.NoError(t, err)
	req, err := svc.Request(ctx, removalDraft())
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, req.ID, model.SourceAPI)

	require.NoError(t, err)
	assert.Equal(t, model.RemovalRequestApproved, approved.Status)
	assert.NotNil(t, approved.ProcessedAt)
	_, err = offers.Get(ctx, offer.ID)
	assert.ErrorIs(t, err, model.ErrOfferNotFound)

	_, err = svc.Approve(ctx, req.ID, model.SourceAPI)
	var conflict *model.StatusConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestRemovalService_Approve_FailureKeepsPending(t *testing.T) {
	svc, offers, removals, _ := setupRemovalService()
	ctx := context.Background()

	offer, err := offers.Create(ctx, validDraft())
	require.NoError(t, err)
	req, err := svc.Request(ctx, removalDraft())
	require.NoError(t, err)

	removals.approveErr = model.ErrStoreUnavailable
	_, err = svc.Approve(ctx, req.ID, model.SourceAPI)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)

	current, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RemovalRequestPending, current.Status)
	_, err = offers.Get(ctx, offer.ID)
	assert.NoError(t, err)
}

func TestRemovalService_Reject_KeepsOffer(t *testing.T) {
	svc, offers, _, _ := setupRemovalService()
	ctx := context.Background()

	offer, err := offers.Create(ctx, validDraft())
	require.NoError(t, err)
	req, err := svc.Request(ctx, removalDraft())
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, req.ID, model.SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, model.RemovalRequestRejected, rejected.Status)

	_, err = offers.Get(ctx, offer.ID)
	assert.NoError(t, err)

	_, err = svc.Reject(ctx, "missing", model.SourceAPI)
	assert.ErrorIs(t, err, model.ErrRemovalRequestNotFound)
}

func TestRemovalService_Reconcile(t *testing.T) {
	svc, offers, removals, _ := setupRemovalService()
	ctx := context.Background()

	removals.requests["orphan"] = &model.RemovalRequest{
		ID: "orphan", UserID: "gone", Status: model.RemovalRequestPending, RequestedAt: time.Now(),
	}
	offer, err := offers.Create(ctx, validDraft())
	require.NoError(t, err)
	removals.requests["live"] = &model.RemovalRequest{
		ID: "live", UserID: offer.ID, Status: model.RemovalRequestPending, RequestedAt: time.Now(),
	}

	count, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, model.RemovalRequestApproved, removals.requests["orphan"].Status)
	assert.Equal(t, model.RemovalRequestPending, removals.requests["live"].Status)

	count, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
