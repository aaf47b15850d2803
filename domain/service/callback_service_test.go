package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantuankita/bantuankita/domain/model"
)

type callbackFixture struct {
	svc      *callbackService
	offers   *fakeOfferRepository
	removals *fakeRemovalRepository
	notifier *recordingNotifier
}

func setupCallbackService() *callbackFixture {
	offers := newFakeOfferRepository()
	removals := newFakeRemovalRepository(offers)
	notifier := &recordingNotifier{chatID: 42}
	events := &recordingPublisher{}

	offerSvc := NewOfferService(offers, notifier, events, nopLogger{})
	removalSvc := NewRemovalService(removals, notifier, events, nopLogger{})
	svc := NewCallbackService(offerSvc, removalSvc, notifier, nopLogger{}).(*callbackService)

	return &callbackFixture{svc: svc, offers: offers, removals: removals, notifier: notifier}
}

func callback(data string) *model.CallbackQuery {
	return &model.CallbackQuery{
		ID:          "cb-1",
		Data:        data,
		ChatID:      42,
		MessageID:   7,
		MessageText: "Penawaran Bantuan Baru",
		From:        "admin",
	}
}

func TestCallbackService_NilIsNoop(t *testing.T) {
	f := setupCallbackService()

	assert.NoError(t, f.svc.HandleCallback(context.Background(), nil))
	assert.Empty(t, f.notifier.answers)
}

func TestCallbackService_RemovalApprove(t *testing.T) {
	f := setupCallbackService()
	ctx := context.Background()

	f.offers.put(&model.Offer{ID: "abc123owner", Name: "Budi", Status: model.OfferApproved, CreatedAt: time.Now()})
	f.removals.requests["abc123"] = &model.RemovalRequest{
		ID: "abc123", UserID: "abc123owner", Status: model.RemovalRequestPending, RequestedAt: time.Now(),
	}

	err := f.svc.HandleCallback(ctx, callback("removal_approve_abc123"))
	require.NoError(t, err)

	_, err = f.offers.Get(ctx, "abc123owner")
	assert.ErrorIs(t, err, model.ErrOfferNotFound)
	assert.Equal(t, model.RemovalRequestApproved, f.removals.requests["abc123"].Status)

	require.Len(t, f.notifier.answers, 1)
	assert.Equal(t, answerCall{ID: "cb-1", Text: ackRemovalApproved}, f.notifier.answers[0])
	require.Len(t, f.notifier.edits, 1)
	assert.Equal(t, int64(42), f.notifier.edits[0].ChatID)
	assert.Equal(t, 7, f.notifier.edits[0].MessageID)
	assert.Contains(t, f.notifier.edits[0].Text, "PENGHAPUSAN DISETUJUI")
	assert.Contains(t, f.notifier.edits[0].Text, "Penawaran Bantuan Baru")
}

func TestCallbackService_RemovalIDWithUnderscores(t *testing.T) {
	f := setupCallbackService()

	f.offers.put(&model.Offer{ID: "owner", Status: model.OfferApproved, CreatedAt: time.Now()})
	f.removals.requests["a_b_c"] = &model.RemovalRequest{
		ID: "a_b_c", UserID: "owner", Status: model.RemovalRequestPending, RequestedAt: time.Now(),
	}

	require.NoError(t, f.svc.HandleCallback(context.Background(), callback("removal_reject_a_b_c")))

	assert.Equal(t, model.RemovalRequestRejected, f.removals.requests["a_b_c"].Status)
	assert.Equal(t, ackRemovalRejected, f.notifier.answers[0].Text)
}

func TestCallbackService_RemovalNotFound(t *testing.T) {
	f := setupCallbackService()

	require.NoError(t, f.svc.HandleCallback(context.Background(), callback("removal_approve_nope")))

	assert.Equal(t, ackRemovalNotFound, f.notifier.answers[0].Text)
	assert.Empty(t, f.notifier.edits)
}

func TestCallbackService_RemovalAlreadyProcessed(t *testing.T) {
	f := setupCallbackService()
	f.removals.requests["r1"] = &model.RemovalRequest{ID: "r1", UserID: "x", Status: model.RemovalRequestRejected}

	require.NoError(t, f.svc.HandleCallback(context.Background(), callback("removal_approve_r1")))

	assert.Equal(t, "Removal request is already rejected", f.notifier.answers[0].Text)
	assert.Empty(t, f.notifier.edits)
}

func TestCallbackService_RemovalStoreFailure(t *testing.T) {
	f := setupCallbackService()
	f.offers.put(&model.Offer{ID: "owner", Status: model.OfferApproved})
	f.removals.requests["r1"] = &model.RemovalRequest{ID: "r1", UserID: "owner", Status: model.RemovalRequestPending}
	f.removals.approveErr = model.ErrStoreUnavailable

	err := f.svc.HandleCallback(context.Background(), callback("removal_approve_r1"))

	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.Equal(t, model.RemovalRequestPending, f.removals.requests["r1"].Status)
	assert.Equal(t, answerCall{ID: "cb-1", Text: ackRemovalFailed, Alert: true}, f.notifier.answers[0])
}

func TestCallbackService_OfferApprove(t *testing.T) {
	f := setupCallbackService()
	ctx := context.Background()

	offer, err := f.offers.Create(ctx, validDraft())
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleCallback(ctx, callback("approve_"+offer.ID)))

	stored, err := f.offers.Get(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferApproved, stored.Status)
	assert.Equal(t, ackOfferApproved, f.notifier.answers[0].Text)
	require.Len(t, f.notifier.edits, 1)
	assert.Contains(t, f.notifier.edits[0].Text, "DISETUJUI")

	// tapping again reports the current status
	require.NoError(t, f.svc.HandleCallback(ctx, callback("reject_"+offer.ID)))
	assert.Equal(t, "Offer is already approved", f.notifier.answers[1].Text)

	stored, err = f.offers.Get(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferApproved, stored.Status)
}

func TestCallbackService_OfferReject(t *testing.T) {
	f := setupCallbackService()
	ctx := context.Background()

	offer, err := f.offers.Create(ctx, validDraft())
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleCallback(ctx, callback("reject_"+offer.ID)))

	stored, err := f.offers.Get(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferRejected, stored.Status)
	assert.Contains(t, f.notifier.edits[0].Text, "DITOLAK")
}

func TestCallbackService_OfferNotFound(t *testing.T) {
	f := setupCallbackService()

	require.NoError(t, f.svc.HandleCallback(context.Background(), callback("approve_missing")))

	assert.Equal(t, ackOfferNotFound, f.notifier.answers[0].Text)
}

func TestCallbackService_Unrecognized(t *testing.T) {
	f := setupCallbackService()

	for _, data := range []string{"", "hello", "approve_", "removal_maybe_x", "removal_approve_"} {
		require.NoError(t, f.svc.HandleCallback(context.Background(), callback(data)))
	}

	require.Len(t, f.notifier.answers, 5)
	for _, a := range f.notifier.answers {
		assert.Equal(t, ackInvalidAction, a.Text)
		assert.True(t, a.Alert)
	}
}

func TestCallbackService_ForeignChatRejected(t *testing.T) {
	f := setupCallbackService()
	ctx := context.Background()

	offer, err := f.offers.Create(ctx, validDraft())
	require.NoError(t, err)

	cb := callback("approve_" + offer.ID)
	cb.ChatID = 999
	require.NoError(t, f.svc.HandleCallback(ctx, cb))

	stored, err := f.offers.Get(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferPending, stored.Status)
	assert.Equal(t, ackUnauthorizedChat, f.notifier.answers[0].Text)
}

func TestCallbackService_CallbackWithoutChatRejected(t *testing.T) {
	f := setupCallbackService()
	ctx := context.Background()

	offer, err := f.offers.Create(ctx, validDraft())
	require.NoError(t, err)
	f.removals.requests["r1"] = &model.RemovalRequest{
		ID: "r1", UserID: offer.ID, Status: model.RemovalRequestPending, RequestedAt: time.Now(),
	}

	require.NoError(t, f.svc.HandleCallback(ctx, &model.CallbackQuery{ID: "x", Data: "approve_" + offer.ID}))
	require.NoError(t, f.svc.HandleCallback(ctx, &model.CallbackQuery{ID: "y", Data: "removal_approve_r1"}))

	stored, err := f.offers.Get(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferPending, stored.Status)
	assert.Equal(t, model.RemovalRequestPending, f.removals.requests["r1"].Status)

	require.Len(t, f.notifier.answers, 2)
	for _, a := range f.notifier.answers {
		assert.Equal(t, ackUnauthorizedChat, a.Text)
		assert.True(t, a.Alert)
	}
	assert.Empty(t, f.notifier.edits)
}

func TestCallbackService_EditFailureDoesNotRollBack(t *testing.T) {
	f := setupCallbackService()
	ctx := context.Background()

	offer, err := f.offers.Create(ctx, validDraft())
	require.NoError(t, err)

	f.notifier.disabled = true
	require.NoError(t, f.svc.HandleCallback(ctx, callback("approve_"+offer.ID)))

	stored, err := f.offers.Get(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferApproved, stored.Status)
}
