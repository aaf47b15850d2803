package outbound

import (
	"context"

	"github.com/bantuankita/bantuankita/domain/model"
)

// WebhookStatus mirrors what the chat platform reports about the webhook
type WebhookStatus struct {
	URL                  string `json:"url"`
	PendingUpdateCount   int    `json:"pendingUpdateCount"`
	LastErrorDate        int    `json:"lastErrorDate,omitempty"`
	LastErrorMessage     string `json:"lastErrorMessage,omitempty"`
	HasCustomCertificate bool   `json:"hasCustomCertificate"`
}

// ChatNotifier relays moderation messages to the admin chat.
// A notifier without credentials returns model.ErrNotifierDisabled.
type ChatNotifier interface {
	NotifyNewOffer(ctx context.Context, offer *model.Offer) error
	NotifyRemovalRequest(ctx context.Context, req *model.RemovalRequest) error
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error
	SetWebhook(ctx context.Context, url string) error
	WebhookInfo(ctx context.Context) (*WebhookStatus, error)

	// AdminChatID is zero when no admin chat is configured
	AdminChatID() int64
	Enabled() bool
}

// EventPublisher fans moderation events out to live subscribers
type EventPublisher interface {
	Publish(event model.Event)
}
