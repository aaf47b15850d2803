// Package repository maps offers and removal requests onto a document store.
package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bantuankita/bantuankita/adapter/outbound/storage/docpath"
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

// offerRecord is the stored shape of an offer; the id is the record key
type offerRecord struct {
	Name         string            `json:"name"`
	Skill        string            `json:"skill"`
	City         string            `json:"city"`
	PhoneNumber  string            `json:"phoneNumber"`
	PaymentRange string            `json:"paymentRange,omitempty"`
	Description  string            `json:"description"`
	Status       model.OfferStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	ApprovedAt   *time.Time        `json:"approvedAt,omitempty"`
	RejectedAt   *time.Time        `json:"rejectedAt,omitempty"`
}

func newOfferRecord(o *model.Offer) offerRecord {
	return offerRecord{
		Name:         o.Name,
		Skill:        o.Skill,
		City:         o.City,
		PhoneNumber:  o.PhoneNumber,
		PaymentRange: o.PaymentRange,
		Description:  o.Description,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
		ApprovedAt:   o.ApprovedAt,
		RejectedAt:   o.RejectedAt,
	}
}

func (r offerRecord) toOffer(id string) *model.Offer {
	return &model.Offer{
		ID:           id,
		Name:         r.Name,
		Skill:        r.Skill,
		City:         r.City,
		PhoneNumber:  r.PhoneNumber,
		PaymentRange: r.PaymentRange,
		Description:  r.Description,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		ApprovedAt:   r.ApprovedAt,
		RejectedAt:   r.RejectedAt,
	}
}

type offerRepository struct {
	store outbound.DocumentStore
	now   func() time.Time
}

func NewOfferRepository(store outbound.DocumentStore) outbound.OfferRepository {
	return &offerRepository{store: store, now: time.Now}
}

// validKey rejects ids that would address something other than a single record
func validKey(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/.#$[]")
}

func offerPath(id string) string {
	return docpath.Join(outbound.OffersPath, id)
}

func (r *offerRepository) Create(ctx context.Context, draft model.OfferDraft) (*model.Offer, error) {
	offer := model.NewOffer(draft, r.now())

	id, err := r.store.Push(ctx, outbound.OffersPath, newOfferRecord(offer))
	if err != nil {
		return nil, err
	}
	offer.ID = id
	return offer, nil
}

func (r *offerRepository) Get(ctx context.Context, id string) (*model.Offer, error) {
	if !validKey(id) {
		return nil, model.ErrOfferNotFound
	}

	var rec offerRecord
	found, err := r.store.Get(ctx, offerPath(id), &rec)
	if err != nil {
		return nil, fmt.Errorf("get offer %s: %w", id, err)
	}
	if !found {
		return nil, model.ErrOfferNotFound
	}
	return rec.toOffer(id), nil
}

func (r *offerRepository) ListAll(ctx context.Context) ([]*model.Offer, error) {
	records := make(map[string]offerRecord)
	if _, err := r.store.Get(ctx, outbound.OffersPath, &records); err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}

	offers := make([]*model.Offer, 0, len(records))
	for id, rec := range records {
		offers = append(offers, rec.toOffer(id))
	}
	sortOffersNewestFirst(offers)
	return offers, nil
}

func (r *offerRepository) ListApproved(ctx context.Context) ([]*model.Offer, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	approved := make([]*model.Offer, 0, len(all))
	for _, o := range all {
		if o.Status == model.OfferApproved {
			approved = append(approved, o)
		}
	}
	return approved, nil
}

func (r *offerRepository) ListApprovedPaged(ctx context.Context, page, limit int, filters model.OfferFilters) (*model.OfferPage, error) {
	approved, err := r.ListApproved(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*model.Offer, 0, len(approved))
	for _, o := range approved {
		if filters.Matches(o) {
			matched = append(matched, o)
		}
	}

	start, end, pagination := model.Paginate(len(matched), page, limit)
	return &model.OfferPage{Offers: matched[start:end], Pagination: pagination}, nil
}

func (r *offerRepository) SetStatus(ctx context.Context, id string, status model.OfferStatus) (*model.Offer, error) {
	if !status.IsValid() || status == model.OfferPending {
		return nil, fmt.Errorf("invalid target status %q", status)
	}

	offer, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !offer.CanBeReviewed() {
		return nil, &model.StatusConflictError{Status: string(offer.Status)}
	}

	now := r.now()
	fields := map[string]any{"status": status}
	if status == model.OfferApproved {
		fields["approvedAt"] = now
		offer.ApprovedAt = &now
	} else {
		fields["rejectedAt"] = now
		offer.RejectedAt = &now
	}

	if err := r.store.Update(ctx, offerPath(id), fields); err != nil {
		return nil, fmt.Errorf("set offer %s status: %w", id, err)
	}
	offer.Status = status
	return offer, nil
}

func (r *offerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.store.Remove(ctx, offerPath(id)); err != nil {
		return fmt.Errorf("delete offer %s: %w", id, err)
	}
	return nil
}

func (r *offerRepository) Stats(ctx context.Context) (*model.OfferStats, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.OfferStats{Total: len(all)}
	for _, o := range all {
		switch o.Status {
		case model.OfferPending:
			stats.Pending++
		case model.OfferApproved:
			stats.Approved++
		case model.OfferRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// push ids grow with time, so they break createdAt ties in the same order
func sortOffersNewestFirst(offers []*model.Offer) {
	sort.Slice(offers, func(i, j int) bool {
		if !offers[i].CreatedAt.Equal(offers[j].CreatedAt) {
			return offers[i].CreatedAt.After(offers[j].CreatedAt)
		}
		return offers[i].ID > offers[j].ID
	})
}
