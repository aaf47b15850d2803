package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/inbound"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const (
	ackOfferApproved    = "Bantuan disetujui!"
	ackOfferRejected    = "Bantuan ditolak!"
	ackOfferNotFound    = "Bantuan tidak ditemukan"
	ackOfferFailed      = "Gagal memproses bantuan"
	ackRemovalApproved  = "Permintaan penghapusan disetujui"
	ackRemovalRejected  = "Permintaan penghapusan ditolak"
	ackRemovalNotFound  = "Permintaan penghapusan tidak ditemukan"
	ackRemovalFailed    = "Gagal memproses permintaan penghapusan"
	ackInvalidAction    = "Aksi tidak valid"
	ackUnauthorizedChat = "Aksi tidak diizinkan dari chat ini"
)

type callbackService struct {
	offers   inbound.OfferService
	removals inbound.RemovalService
	notifier outbound.ChatNotifier
	logger   outbound.Logger
}

func NewCallbackService(
	offers inbound.OfferService,
	removals inbound.RemovalService,
	notifier outbound.ChatNotifier,
	logger outbound.Logger,
) inbound.CallbackService {
	return &callbackService{
		offers:   offers,
		removals: removals,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *callbackService) HandleCallback(ctx context.Context, cb *model.CallbackQuery) error {
	if cb == nil {
		return nil
	}

	// callbacks without a message carry no chat and cannot come from the admin chat
	if admin := s.notifier.AdminChatID(); admin != 0 && cb.ChatID != admin {
		s.logger.Warn("Callback from unexpected chat ignored", "chatId", cb.ChatID, "from", cb.From)
		s.answer(ctx, cb, ackUnauthorizedChat, true)
		return nil
	}

	action := model.ParseCallbackData(cb.Data)
	s.logger.Debug("Callback received", "kind", action.Kind.String(), "target", action.TargetID, "from", cb.From)

	switch action.Kind {
	case model.CallbackRemovalAction:
		return s.handleRemoval(ctx, cb, action)
	case model.CallbackOfferAction:
		return s.handleOffer(ctx, cb, action)
	default:
		s.logger.Warn("Unrecognized callback data", "data", cb.Data)
		s.answer(ctx, cb, ackInvalidAction, true)
		return nil
	}
}

func (s *callbackService) handleOffer(ctx context.Context, cb *model.CallbackQuery, action model.CallbackAction) error {
	offer, err := s.offers.Get(ctx, action.TargetID)
	if err != nil {
		if errors.Is(err, model.ErrOfferNotFound) {
			s.answer(ctx, cb, ackOfferNotFound, false)
			return nil
		}
		s.answer(ctx, cb, ackOfferFailed, true)
		return fmt.Errorf("load offer %s: %w", action.TargetID, err)
	}

	if !offer.CanBeReviewed() {
		s.answer(ctx, cb, fmt.Sprintf("Offer is already %s", offer.Status), false)
		return nil
	}

	banner, ack := "✅ *DISETUJUI*", ackOfferApproved
	if action.Decision == model.DecisionApprove {
		_, err = s.offers.Approve(ctx, offer.ID, model.SourceTelegram)
	} else {
		banner, ack = "❌ *DITOLAK*", ackOfferRejected
		_, err = s.offers.Reject(ctx, offer.ID, model.SourceTelegram)
	}

	if err != nil {
		var conflict *model.StatusConflictError
		if errors.As(err, &conflict) {
			s.answer(ctx, cb, fmt.Sprintf("Offer is %s", conflict.Error()), false)
			return nil
		}
		s.answer(ctx, cb, ackOfferFailed, true)
		return fmt.Errorf("review offer %s: %w", offer.ID, err)
	}

	s.edit(ctx, cb, banner)
	s.answer(ctx, cb, ack, false)
	return nil
}

func (s *callbackService) handleRemoval(ctx context.Context, cb *model.CallbackQuery, action model.CallbackAction) error {
	var err error
	banner, ack := "✅ *PENGHAPUSAN DISETUJUI*", ackRemovalApproved
	if action.Decision == model.DecisionApprove {
		_, err = s.removals.Approve(ctx, action.TargetID, model.SourceTelegram)
	} else {
		banner, ack = "❌ *PENGHAPUSAN DITOLAK*", ackRemovalRejected
		_, err = s.removals.Reject(ctx, action.TargetID, model.SourceTelegram)
	}

	if err != nil {
		var conflict *model.StatusConflictError
		switch {
		case errors.Is(err, model.ErrRemovalRequestNotFound):
			s.answer(ctx, cb, ackRemovalNotFound, false)
			return nil
		case errors.As(err, &conflict):
			s.answer(ctx, cb, fmt.Sprintf("Removal request is %s", conflict.Error()), false)
			return nil
		default:
			s.answer(ctx, cb, ackRemovalFailed, true)
			return fmt.Errorf("review removal request %s: %w", action.TargetID, err)
		}
	}

	s.edit(ctx, cb, banner)
	s.answer(ctx, cb, ack, false)
	return nil
}

// edit prefixes the original message with a status banner. Failures are logged only.
func (s *callbackService) edit(ctx context.Context, cb *model.CallbackQuery, banner string) {
	if cb.MessageID == 0 {
		return
	}

	chatID := cb.ChatID
	if chatID == 0 {
		chatID = s.notifier.AdminChatID()
	}

	text := banner
	if cb.MessageText != "" {
		text = banner + "\n\n" + cb.MessageText
	}

	if err := s.notifier.EditMessage(ctx, chatID, cb.MessageID, text); err != nil {
		s.logger.Error("Failed to edit callback message", "messageId", cb.MessageID, "error", err)
	}
}

func (s *callbackService) answer(ctx context.Context, cb *model.CallbackQuery, text string, alert bool) {
	if cb.ID == "" {
		return
	}
	if err := s.notifier.AnswerCallback(ctx, cb.ID, text, alert); err != nil {
		s.logger.Error("Failed to answer callback", "callbackId", cb.ID, "error", err)
	}
}
