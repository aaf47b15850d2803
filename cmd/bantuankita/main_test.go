package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type webhookRecorder struct {
	outbound.ChatNotifier
	calls []string
}

func (r *webhookRecorder) SetWebhook(ctx context.Context, url string) error {
	r.calls = append(r.calls, url)
	return nil
}

func TestRegisterWebhook(t *testing.T) {
	rec := &webhookRecorder{}
	ctx := context.Background()

	assert.Error(t, registerWebhook(ctx, rec, ""))
	assert.Error(t, registerWebhook(ctx, rec, "   "))
	assert.Empty(t, rec.calls)

	assert.NoError(t, registerWebhook(ctx, rec, "https://bantuan.example.org/api/telegram-webhook"))
	assert.Equal(t, []string{"https://bantuan.example.org/api/telegram-webhook"}, rec.calls)
}
