package inbound

import (
	"context"

	"github.com/bantuankita/bantuankita/domain/model"
)

// CallbackService dispatches inline-button callbacks from the admin chat
type CallbackService interface {
	HandleCallback(ctx context.Context, cb *model.CallbackQuery) error
}
