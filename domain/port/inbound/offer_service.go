package inbound

import (
	"context"

	"github.com/bantuankita/bantuankita/domain/model"
)

// OfferService handles offer submission and moderation
type OfferService interface {
	// Submit validates and stores a new pending offer, then notifies the admin chat
	Submit(ctx context.Context, draft model.OfferDraft) (*model.Offer, error)

	// ListPublic returns one page of approved offers. Store failures degrade to an empty page.
	ListPublic(ctx context.Context, page, limit int, filters model.OfferFilters) *model.OfferPage

	ListAll(ctx context.Context) ([]*model.Offer, error)
	Get(ctx context.Context, id string) (*model.Offer, error)

	// Approve and Reject only act on pending offers
	Approve(ctx context.Context, id, source string) (*model.Offer, error)
	Reject(ctx context.Context, id, source string) (*model.Offer, error)

	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.OfferStats, error)

	// Seed stores sample approved offers
	Seed(ctx context.Context) (int, error)
}
