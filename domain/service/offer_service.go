package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/inbound"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type offerService struct {
	offers    outbound.OfferRepository
	soft      *SoftOffers
	notifier  outbound.ChatNotifier
	events    outbound.EventPublisher
	validator *OfferValidator
	logger    outbound.Logger
}

func NewOfferService(
	offers outbound.OfferRepository,
	notifier outbound.ChatNotifier,
	events outbound.EventPublisher,
	logger outbound.Logger,
) inbound.OfferService {
	return &offerService{
		offers:    offers,
		soft:      NewSoftOffers(offers, logger),
		notifier:  notifier,
		events:    events,
		validator: NewOfferValidator(),
		logger:    logger,
	}
}

func (s *offerService) Submit(ctx context.Context, draft model.OfferDraft) (*model.Offer, error) {
	draft = draft.Clean()
	if !draft.HasRequiredFields() {
		return nil, model.ErrMissingFields
	}

	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}

	offer, err := s.offers.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	s.logger.Info("Offer submitted", "id", offer.ID, "skill", offer.Skill, "city", offer.City)
	publish(s.events, model.EventOfferSubmitted, offer.ID, model.SourceAPI, offer)

	// the submission stands even when the admin chat cannot be reached
	if err := s.notifier.NotifyNewOffer(ctx, offer); err != nil {
		s.logNotifyError("offer", offer.ID, err)
	}

	return offer, nil
}

func (s *offerService) ListPublic(ctx context.Context, page, limit int, filters model.OfferFilters) *model.OfferPage {
	return s.soft.ListApprovedPaged(ctx, page, limit, filters)
}

func (s *offerService) ListAll(ctx context.Context) ([]*model.Offer, error) {
	return s.offers.ListAll(ctx)
}

func (s *offerService) Get(ctx context.Context, id string) (*model.Offer, error) {
	return s.offers.Get(ctx, id)
}

func (s *offerService) Approve(ctx context.Context, id, source string) (*model.Offer, error) {
	return s.review(ctx, id, model.OfferApproved, source)
}

func (s *offerService) Reject(ctx context.Context, id, source string) (*model.Offer, error) {
	return s.review(ctx, id, model.OfferRejected, source)
}

func (s *offerService) review(ctx context.Context, id string, status model.OfferStatus, source string) (*model.Offer, error) {
	offer, err := s.offers.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	eventType := model.EventOfferApproved
	if status == model.OfferRejected {
		eventType = model.EventOfferRejected
	}

	s.logger.Info("Offer reviewed", "id", id, "status", status, "source", source)
	publish(s.events, eventType, id, source, offer)
	return offer, nil
}

func (s *offerService) Delete(ctx context.Context, id string) error {
	if err := s.offers.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Offer deleted", "id", id)
	publish(s.events, model.EventOfferDeleted, id, model.SourceAPI, nil)
	return nil
}

func (s *offerService) Stats(ctx context.Context) (*model.OfferStats, error) {
	return s.offers.Stats(ctx)
}

func (s *offerService) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, draft := range sampleOffers {
		offer, err := s.offers.Create(ctx, draft)
		if err != nil {
			return created, fmt.Errorf("seed offer %q: %w", draft.Name, err)
		}
		if _, err := s.offers.SetStatus(ctx, offer.ID, model.OfferApproved); err != nil {
			return created, fmt.Errorf("approve seeded offer %s: %w", offer.ID, err)
		}
		created++
	}

	s.logger.Info("Sample offers seeded", "count", created)
	return created, nil
}

func (s *offerService) logNotifyError(kind, id string, err error) {
	if errors.Is(err, model.ErrNotifierDisabled) {
		s.logger.Warn("Chat notifier not configured, skipping notification", "kind", kind, "id", id)
		return
	}
	s.logger.Error("Failed to send notification", "kind", kind, "id", id, "error", err)
}

var sampleOffers = []model.OfferDraft{
	{
		Name:         "Budi Santoso",
		Skill:        "Pembuatan Website",
		City:         "Jakarta",
		PhoneNumber:  "081234567890",
		PaymentRange: "IDR 150.000-300.000/jam",
		Description:  "Full-stack developer dengan pengalaman 5 tahun di React, Node.js, dan database. Bisa membantu membuat website, aplikasi web, dan pengembangan API.",
	},
	{
		Name:         "Sari Dewi",
		Skill:        "Desain Grafis",
		City:         "Bandung",
		PhoneNumber:  "082345678901",
		PaymentRange: "IDR 100.000-250.000/jam",
		Description:  "Desainer grafis kreatif yang mengkhususkan diri dalam branding, desain logo, dan materi pemasaran digital. Mahir menggunakan Adobe Creative Suite.",
	},
	{
		Name:         "Ahmad Rizki",
		Skill:        "Les Privat Matematika",
		City:         "Surabaya",
		PhoneNumber:  "083456789012",
		PaymentRange: "IDR 75.000-125.000/jam",
		Description:  "Guru matematika berpengalaman 8 tahun. Mengajar SD, SMP, dan SMA. Metode pembelajaran yang mudah dipahami dan menyenangkan.",
	},
}
