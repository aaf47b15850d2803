package inbound

import (
	"context"

	"github.com/bantuankita/bantuankita/domain/model"
)

// RemovalService handles requests from users to delete their own offer
type RemovalService interface {
	// Request matches the draft to an offer by owner name and phone, then
	// files a pending request and notifies the admin chat.
	Request(ctx context.Context, draft model.RemovalDraft) (*model.RemovalRequest, error)

	List(ctx context.Context) ([]*model.RemovalRequest, error)
	Get(ctx context.Context, id string) (*model.RemovalRequest, error)
	Approve(ctx context.Context, id, source string) (*model.RemovalRequest, error)
	Reject(ctx context.Context, id, source string) (*model.RemovalRequest, error)
	Reconcile(ctx context.Context) (int, error)
}
