package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bantuankita/bantuankita/adapter/outbound/storage/docpath"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type removalRecord struct {
	UserID      string                     `json:"userId"`
	Name        string                     `json:"name"`
	PhoneNumber string                     `json:"phoneNumber"`
	Reason      string                     `json:"reason"`
	Status      model.RemovalRequestStatus `json:"status"`
	RequestedAt time.Time                  `json:"requestedAt"`
	ProcessedAt *time.Time                 `json:"processedAt,omitempty"`
}

func newRemovalRecord(req *model.RemovalRequest) removalRecord {
	return removalRecord{
		UserID:      req.UserID,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Reason:      req.Reason,
		Status:      req.Status,
		RequestedAt: req.RequestedAt,
		ProcessedAt: req.ProcessedAt,
	}
}

func (r removalRecord) toRequest(id string) *model.RemovalRequest {
	return &model.RemovalRequest{
		ID:          id,
		UserID:      r.UserID,
		Name:        r.Name,
		PhoneNumber: r.PhoneNumber,
		Reason:      r.Reason,
		Status:      r.Status,
		RequestedAt: r.RequestedAt,
		ProcessedAt: r.ProcessedAt,
	}
}

type removalRepository struct {
	store  outbound.DocumentStore
	offers outbound.OfferRepository
	now    func() time.Time
}

// NewRemovalRequestRepository shares store with the offer repository so that
// approval can delete the offer in the same write.
func NewRemovalRequestRepository(store outbound.DocumentStore, offers outbound.OfferRepository) outbound.RemovalRequestRepository {
	return &removalRepository{store: store, offers: offers, now: time.Now}
}

func removalPath(id string, field ...string) string {
	return docpath.Join(append([]string{outbound.RemovalRequestsPath, id}, field...)...)
}

func (r *removalRepository) FindOfferByNameAndPhone(ctx context.Context, name, phone string) (*model.Offer, error) {
	offers, err := r.offers.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range offers {
		if model.MatchesOwner(o, name, phone) {
			return o, nil
		}
	}
	return nil, model.ErrNoMatchingOffer
}

func (r *removalRepository) HasPendingForUser(ctx context.Context, userID string) (bool, error) {
	requests, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	for _, req := range requests {
		if req.UserID == userID && req.Status == model.RemovalRequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *removalRepository) Create(ctx context.Context, userID string, draft model.RemovalDraft) (*model.RemovalRequest, error) {
	req := model.NewRemovalRequest(userID, draft, r.now())

	id, err := r.store.Push(ctx, outbound.RemovalRequestsPath, newRemovalRecord(req))
	if err != nil {
		return nil, fmt.Errorf("create removal request: %w", err)
	}
	req.ID = id
	return req, nil
}

func (r *removalRepository) Get(ctx context.Context, id string) (*model.RemovalRequest, error) {
	if !validKey(id) {
		return nil, model.ErrRemovalRequestNotFound
	}

	var rec removalRecord
	found, err := r.store.Get(ctx, removalPath(id), &rec)
	if err != nil {
		return nil, fmt.Errorf("get removal request %s: %w", id, err)
	}
	if !found {
		return nil, model.ErrRemovalRequestNotFound
	}
	return rec.toRequest(id), nil
}

func (r *removalRepository) List(ctx context.Context) ([]*model.RemovalRequest, error) {
	records := make(map[string]removalRecord)
	if _, err := r.store.Get(ctx, outbound.RemovalRequestsPath, &records); err != nil {
		return nil, fmt.Errorf("list removal requests: %w", err)
	}

	requests := make([]*model.RemovalRequest, 0, len(records))
	for id, rec := range records {
		requests = append(requests, rec.toRequest(id))
	}
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].RequestedAt.Equal(requests[j].RequestedAt) {
			return requests[i].RequestedAt.After(requests[j].RequestedAt)
		}
		return requests[i].ID > requests[j].ID
	})
	return requests, nil
}

// Approve removes offers/<userId> and closes the request in one multi-path write.
// A request without a usable userId has no offer to remove, so only the
// request is closed.
func (r *removalRepository) Approve(ctx context.Context, id string) (*model.RemovalRequest, error) {
	req, err := r.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := r.now()
	values := map[string]any{
		removalPath(id, "status"):      model.RemovalRequestApproved,
		removalPath(id, "processedAt"): now,
	}
	if validKey(req.UserID) {
		values[offerPath(req.UserID)] = nil
	}
	err = r.store.UpdatePaths(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("approve removal request %s: %w", id, err)
	}

	req.Status = model.RemovalRequestApproved
	req.ProcessedAt = &now
	return req, nil
}

func (r *removalRepository) Reject(ctx context.Context, id string) (*model.RemovalRequest, error) {
	req, err := r.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := r.now()
	err = r.store.Update(ctx, removalPath(id), map[string]any{
		"status":      model.RemovalRequestRejected,
		"processedAt": now,
	})
	if err != nil {
		return nil, fmt.Errorf("reject removal request %s: %w", id, err)
	}

	req.Status = model.RemovalRequestRejected
	req.ProcessedAt = &now
	return req, nil
}

func (r *removalRepository) Reconcile(ctx context.Context) (int, error) {
	requests, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, req := range requests {
		if req.Status != model.RemovalRequestPending {
			continue
		}

		if validKey(req.UserID) {
			_, err := r.offers.Get(ctx, req.UserID)
			if err == nil {
				continue
			}
			if !errors.Is(err, model.ErrOfferNotFound) {
				return count, err
			}
		}

		if err := r.store.Update(ctx, removalPath(req.ID), map[string]any{
			"status":      model.RemovalRequestApproved,
			"processedAt": r.now(),
		}); err != nil {
			return count, fmt.Errorf("reconcile removal request %s: %w", req.ID, err)
		}
		count++
	}
	return count, nil
}

func (r *removalRepository) pending(ctx context.Context, id string) (*model.RemovalRequest, error) {
	req, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanBeReviewed() {
		return nil, &model.StatusConflictError{Status: string(req.Status)}
	}
	return req, nil
}
