package outbound

import (
	"context"

	"github.com/bantuankita/bantuankita/domain/model"
)

// OfferRepository stores help offers. Absence is reported as model.ErrOfferNotFound.
type OfferRepository interface {
	// Create stores a pending offer and returns it with its assigned id
	Create(ctx context.Context, draft model.OfferDraft) (*model.Offer, error)
	Get(ctx context.Context, id string) (*model.Offer, error)

	// ListAll returns every offer, newest first
	ListAll(ctx context.Context) ([]*model.Offer, error)

	// ListApproved returns approved offers, newest first
	ListApproved(ctx context.Context) ([]*model.Offer, error)

	// ListApprovedPaged filters the approved set then slices one page out of it
	ListApprovedPaged(ctx context.Context, page, limit int, filters model.OfferFilters) (*model.OfferPage, error)

	// SetStatus moves a pending offer to approved or rejected and stamps the
	// matching timestamp. A non-pending offer yields *model.StatusConflictError.
	SetStatus(ctx context.Context, id string, status model.OfferStatus) (*model.Offer, error)

	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.OfferStats, error)
}

// RemovalRequestRepository stores removal requests
type RemovalRequestRepository interface {
	// FindOfferByNameAndPhone scans every offer for the owner's name and phone
	FindOfferByNameAndPhone(ctx context.Context, name, phone string) (*model.Offer, error)

	HasPendingForUser(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, userID string, draft model.RemovalDraft) (*model.RemovalRequest, error)
	Get(ctx context.Context, id string) (*model.RemovalRequest, error)

	// List returns every removal request, newest first
	List(ctx context.Context) ([]*model.RemovalRequest, error)

	// Approve deletes the referenced offer and marks the request approved in
	// one atomic write. An already missing offer does not block approval.
	Approve(ctx context.Context, id string) (*model.RemovalRequest, error)

	Reject(ctx context.Context, id string) (*model.RemovalRequest, error)

	// Reconcile approves pending requests whose offer no longer exists
	Reconcile(ctx context.Context) (int, error)
}

// UserRepository persists the admin user database
type UserRepository interface {
	Load() (*model.UserDatabase, error)
	Save(db *model.UserDatabase) error
	Exists() bool
}
