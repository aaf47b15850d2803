package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/inbound"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type removalService struct {
	removals outbound.RemovalRequestRepository
	notifier outbound.ChatNotifier
	events   outbound.EventPublisher
	logger   outbound.Logger
}

func NewRemovalService(
	removals outbound.RemovalRequestRepository,
	notifier outbound.ChatNotifier,
	events outbound.EventPublisher,
	logger outbound.Logger,
) inbound.RemovalService {
	return &removalService{
		removals: removals,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

func (s *removalService) Request(ctx context.Context, draft model.RemovalDraft) (*model.RemovalRequest, error) {
	draft = draft.Clean()
	if !draft.HasRequiredFields() {
		return nil, model.ErrMissingFields
	}

	offer, err := s.removals.FindOfferByNameAndPhone(ctx, draft.Name, draft.PhoneNumber)
	if err != nil {
		return nil, err
	}

	// best effort: two concurrent requests may both pass this check
	pending, err := s.removals.HasPendingForUser(ctx, offer.ID)
	if err != nil {
		return nil, fmt.Errorf("check pending removal: %w", err)
	}
	if pending {
		return nil, model.ErrPendingRemovalExists
	}

	req, err := s.removals.Create(ctx, offer.ID, draft)
	if err != nil {
		return nil, fmt.Errorf("create removal request: %w", err)
	}

	s.logger.Info("Removal requested", "id", req.ID, "offerId", offer.ID)
	publish(s.events, model.EventRemovalRequested, req.ID, model.SourceAPI, req)

	if err := s.notifier.NotifyRemovalRequest(ctx, req); err != nil {
		if errors.Is(err, model.ErrNotifierDisabled) {
			s.logger.Warn("Chat notifier not configured, skipping notification", "kind", "removal", "id", req.ID)
		} else {
			s.logger.Error("Failed to send notification", "kind", "removal", "id", req.ID, "error", err)
		}
	}

	return req, nil
}

func (s *removalService) List(ctx context.Context) ([]*model.RemovalRequest, error) {
	return s.removals.List(ctx)
}

func (s *removalService) Get(ctx context.Context, id string) (*model.RemovalRequest, error) {
	return s.removals.Get(ctx, id)
}

func (s *removalService) Approve(ctx context.Context, id, source string) (*model.RemovalRequest, error) {
	req, err := s.removals.Approve(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Removal approved, offer deleted", "id", id, "offerId", req.UserID, "source", source)
	publish(s.events, model.EventRemovalApproved, id, source, req)
	return req, nil
}

func (s *removalService) Reject(ctx context.Context, id, source string) (*model.RemovalRequest, error) {
	req, err := s.removals.Reject(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Removal rejected", "id", id, "source", source)
	publish(s.events, model.EventRemovalRejected, id, source, req)
	return req, nil
}

func (s *removalService) Reconcile(ctx context.Context) (int, error) {
	count, err := s.removals.Reconcile(ctx)
	if err != nil {
		return count, fmt.Errorf("reconcile removal requests: %w", err)
	}

	if count > 0 {
		s.logger.Info("Reconciled removal requests", "count", count)
		publish(s.events, model.EventRemovalReconciled, "", model.SourceSystem, map[string]int{"count": count})
	}
	return count, nil
}
