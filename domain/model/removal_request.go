package model

import (
	"strings"
	"time"
)

// RemovalRequestStatus represents the status of a removal request
type RemovalRequestStatus string

const (
	// RemovalRequestPending indicates the request is awaiting review
	RemovalRequestPending RemovalRequestStatus = "pending"

	// RemovalRequestApproved indicates the offer was deleted
	RemovalRequestApproved RemovalRequestStatus = "approved"

	// RemovalRequestRejected indicates the request was turned down
	RemovalRequestRejected RemovalRequestStatus = "rejected"
)

// RemovalRequest is a user's request to delete their own offer
type RemovalRequest struct {
	ID          string               `json:"id"`                    // Store-assigned key
	UserID      string               `json:"userId"`                // Key of the offer to delete
	Name        string               `json:"name"`                  // Requester name
	PhoneNumber string               `json:"phoneNumber"`           // Requester phone
	Reason      string               `json:"reason"`                // Free-text reason
	Status      RemovalRequestStatus `json:"status"`                // Current status
	RequestedAt time.Time            `json:"requestedAt"`           // Submission timestamp
	ProcessedAt *time.Time           `json:"processedAt,omitempty"` // Set when approved or rejected
}

// RemovalDraft carries the fields a public removal submission provides
type RemovalDraft struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Reason      string `json:"reason"`
}

// Clean returns a copy of the draft with surrounding whitespace removed
func (d RemovalDraft) Clean() RemovalDraft {
	return RemovalDraft{
		Name:        strings.TrimSpace(d.Name),
		PhoneNumber: strings.TrimSpace(d.PhoneNumber),
		Reason:      strings.TrimSpace(d.Reason),
	}
}

// HasRequiredFields reports whether name, phone and reason are all present
func (d RemovalDraft) HasRequiredFields() bool {
	c := d.Clean()
	return c.Name != "" && c.PhoneNumber != "" && c.Reason != ""
}

// NewRemovalRequest builds a pending request targeting the offer userID
func NewRemovalRequest(userID string, draft RemovalDraft, now time.Time) *RemovalRequest {
	d := draft.Clean()
	return &RemovalRequest{
		UserID:      userID,
		Name:        d.Name,
		PhoneNumber: d.PhoneNumber,
		Reason:      d.Reason,
		Status:      RemovalRequestPending,
		RequestedAt: now,
	}
}

// CanBeReviewed returns true if the request can still be approved or rejected
func (r *RemovalRequest) CanBeReviewed() bool {
	return r.Status == RemovalRequestPending
}

// MatchesOwner reports whether an offer belongs to the given name and phone.
// Names compare case-insensitively after trimming; phones compare exactly after trimming.
func MatchesOwner(o *Offer, name, phone string) bool {
	return strings.EqualFold(strings.TrimSpace(o.Name), strings.TrimSpace(name)) &&
		strings.TrimSpace(o.PhoneNumber) == strings.TrimSpace(phone)
}
