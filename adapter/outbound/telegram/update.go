package telegram

import (
	"encoding/json"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bantuankita/bantuankita/domain/model"
)

// maxUpdateSize bounds a webhook body; Telegram updates are a few KB at most
const maxUpdateSize = 1 << 20

// DecodeUpdate reads one webhook update from r
func DecodeUpdate(r io.Reader) (*tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.NewDecoder(io.LimitReader(r, maxUpdateSize)).Decode(&update); err != nil {
		return nil, fmt.Errorf("decode telegram update: %w", err)
	}
	return &update, nil
}

// CallbackFromUpdate extracts the callback query of an update, or nil when
// the update carries none. The original message text is escaped so it can be
// re-sent as Markdown when the message is edited.
func CallbackFromUpdate(update *tgbotapi.Update) *model.CallbackQuery {
	if update == nil || update.CallbackQuery == nil {
		return nil
	}

	q := update.CallbackQuery
	cb := &model.CallbackQuery{
		ID:   q.ID,
		Data: q.Data,
	}
	if q.From != nil {
		cb.From = q.From.UserName
		if cb.From == "" {
			cb.From = q.From.FirstName
		}
	}
	if q.Message != nil {
		cb.MessageID = q.Message.MessageID
		cb.MessageText = escape(q.Message.Text)
		if q.Message.Chat != nil {
			cb.ChatID = q.Message.Chat.ID
		}
	}
	return cb
}
