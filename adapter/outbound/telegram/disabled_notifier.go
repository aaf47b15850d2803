package telegram

import (
	"context"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type disabledNotifier struct {
	logger outbound.Logger
}

// NewDisabledNotifier returns a notifier that drops every message
func NewDisabledNotifier(logger outbound.Logger) outbound.ChatNotifier {
	return &disabledNotifier{logger: logger}
}

func (d *disabledNotifier) NotifyNewOffer(_ context.Context, offer *model.Offer) error {
	d.logger.Warn("Telegram disabled, offer notification skipped", "offerId", offer.ID)
	return model.ErrNotifierDisabled
}

func (d *disabledNotifier) NotifyRemovalRequest(_ context.Context, req *model.RemovalRequest) error {
	d.logger.Warn("Telegram disabled, removal notification skipped", "requestId", req.ID)
	return model.ErrNotifierDisabled
}

func (d *disabledNotifier) EditMessage(context.Context, int64, int, string) error {
	return model.ErrNotifierDisabled
}

func (d *disabledNotifier) AnswerCallback(context.Context, string, string, bool) error {
	return model.ErrNotifierDisabled
}

func (d *disabledNotifier) SetWebhook(context.Context, string) error {
	return model.ErrNotifierDisabled
}

func (d *disabledNotifier) WebhookInfo(context.Context) (*outbound.WebhookStatus, error) {
	return nil, model.ErrNotifierDisabled
}

func (d *disabledNotifier) AdminChatID() int64 { return 0 }
func (d *disabledNotifier) Enabled() bool      { return false }
