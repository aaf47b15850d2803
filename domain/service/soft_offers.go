package service

import (
	"context"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

// SoftOffers serves the public directory. Store failures are logged and
// collapse to an empty page, never an error.
type SoftOffers struct {
	repo   outbound.OfferRepository
	logger outbound.Logger
}

func NewSoftOffers(repo outbound.OfferRepository, logger outbound.Logger) *SoftOffers {
	return &SoftOffers{repo: repo, logger: logger}
}

// ListApprovedPaged returns an empty page with zeroed totals on failure
func (s *SoftOffers) ListApprovedPaged(ctx context.Context, page, limit int, filters model.OfferFilters) *model.OfferPage {
	result, err := s.repo.ListApprovedPaged(ctx, page, limit, filters)
	if err != nil {
		s.logger.Error("Failed to list approved offers page", "page", page, "limit", limit, "error", err)
		_, _, p := model.Paginate(0, page, limit)
		return &model.OfferPage{Offers: []*model.Offer{}, Pagination: p}
	}
	return result
}
