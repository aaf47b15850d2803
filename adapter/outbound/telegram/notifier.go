// Package telegram relays moderation messages through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const DefaultTimeout = 10 * time.Second

// AllowedUpdates are the update kinds the webhook subscribes to
var AllowedUpdates = []string{"callback_query", "message"}

// Config holds the Bot API credentials
type Config struct {
	Token       string
	AdminChatID int64
	Endpoint    string // defaults to tgbotapi.APIEndpoint
	Timeout     time.Duration
}

type notifier struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
	logger      outbound.Logger
}

// NewNotifier validates the token with getMe. Missing credentials yield a
// disabled notifier rather than an error.
func NewNotifier(cfg Config, logger outbound.Logger) (outbound.ChatNotifier, error) {
	if cfg.Token == "" || cfg.AdminChatID == 0 {
		logger.Warn("Telegram credentials not configured, notifications disabled")
		return NewDisabledNotifier(logger), nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}

	logger.Info("Telegram notifier ready", "bot", bot.Self.UserName, "adminChatId", cfg.AdminChatID)
	return &notifier{bot: bot, adminChatID: cfg.AdminChatID, logger: logger}, nil
}

func (n *notifier) NotifyNewOffer(ctx context.Context, offer *model.Offer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.adminChatID, FormatOffer(offer))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Setujui", model.OfferCallbackData(model.DecisionApprove, offer.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Tolak", model.OfferCallbackData(model.DecisionReject, offer.ID)),
		),
	)

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send offer notification: %w", err)
	}
	n.logger.Debug("Offer notification sent", "offerId", offer.ID)
	return nil
}

func (n *notifier) NotifyRemovalRequest(ctx context.Context, req *model.RemovalRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.adminChatID, FormatRemovalRequest(req))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Setujui Penghapusan", model.RemovalCallbackData(model.DecisionApprove, req.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Tolak", model.RemovalCallbackData(model.DecisionReject, req.ID)),
		),
	)

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send removal notification: %w", err)
	}
	n.logger.Debug("Removal notification sent", "requestId", req.ID)
	return nil
}

// EditMessage replaces the text of a message and drops its inline keyboard
func (n *notifier) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Request(edit); err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

func (n *notifier) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	answer := tgbotapi.NewCallback(callbackID, text)
	if showAlert {
		answer = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}

	if _, err := n.bot.Request(answer); err != nil {
		return fmt.Errorf("answer callback %s: %w", callbackID, err)
	}
	return nil
}

func (n *notifier) SetWebhook(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	wh.AllowedUpdates = AllowedUpdates
	wh.DropPendingUpdates = true

	if _, err := n.bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	n.logger.Info("Telegram webhook set", "url", url)
	return nil
}

func (n *notifier) WebhookInfo(ctx context.Context) (*outbound.WebhookStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := n.bot.GetWebhookInfo()
	if err != nil {
		return nil, fmt.Errorf("get webhook info: %w", err)
	}

	return &outbound.WebhookStatus{
		URL:                  info.URL,
		PendingUpdateCount:   info.PendingUpdateCount,
		LastErrorDate:        info.LastErrorDate,
		LastErrorMessage:     info.LastErrorMessage,
		HasCustomCertificate: info.HasCustomCertificate,
	}, nil
}

func (n *notifier) AdminChatID() int64 { return n.adminChatID }
func (n *notifier) Enabled() bool      { return true }

// wib is Western Indonesian Time; a fixed zone avoids depending on tzdata
var wib = time.FixedZone("WIB", 7*60*60)

func formatTime(t time.Time) string {
	return t.In(wib).Format("02/01/2006 15.04.05") + " WIB"
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// FormatOffer renders the admin notification for a new offer
func FormatOffer(offer *model.Offer) string {
	var b strings.Builder
	b.WriteString("🆕 *Penawaran Bantuan Baru*\n\n")
	fmt.Fprintf(&b, "👤 *Nama:* %s\n", escape(offer.Name))
	fmt.Fprintf(&b, "🛠 *Keahlian:* %s\n", escape(offer.Skill))
	fmt.Fprintf(&b, "📍 *Lokasi:* %s\n", escape(offer.City))
	if offer.PaymentRange != "" {
		fmt.Fprintf(&b, "💰 *Tarif:* %s\n", escape(offer.PaymentRange))
	}
	fmt.Fprintf(&b, "\n📝 *Deskripsi:*\n%s\n\n", escape(offer.Description))
	fmt.Fprintf(&b, "⏰ *Dikirim:* %s\n", formatTime(offer.CreatedAt))
	fmt.Fprintf(&b, "🆔 *ID:* %s", escape(offer.ID))
	return b.String()
}

// FormatRemovalRequest renders the admin notification for a removal request
func FormatRemovalRequest(req *model.RemovalRequest) string {
	var b strings.Builder
	b.WriteString("🗑 *Permintaan Penghapusan Bantuan*\n\n")
	fmt.Fprintf(&b, "👤 *Nama:* %s\n", escape(req.Name))
	fmt.Fprintf(&b, "📱 *No. HP:* %s\n", escape(req.PhoneNumber))
	fmt.Fprintf(&b, "\n📝 *Alasan:*\n%s\n\n", escape(req.Reason))
	fmt.Fprintf(&b, "⏰ *Diajukan:* %s\n", formatTime(req.RequestedAt))
	fmt.Fprintf(&b, "🆔 *ID Permintaan:* %s\n", escape(req.ID))
	fmt.Fprintf(&b, "🔗 *ID Bantuan:* %s", escape(req.UserID))
	return b.String()
}
