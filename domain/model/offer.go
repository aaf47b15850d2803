package model

import (
	"strings"
	"time"
)

// OfferStatus represents the moderation status of an offer
type OfferStatus string

const (
	// OfferPending indicates the offer is awaiting admin review
	OfferPending OfferStatus = "pending"

	// OfferApproved indicates the offer is publicly listed
	OfferApproved OfferStatus = "approved"

	// OfferRejected indicates the offer was turned down by an admin
	OfferRejected OfferStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses
func (s OfferStatus) IsValid() bool {
	return s == OfferPending || s == OfferApproved || s == OfferRejected
}

// Offer is a help/service offer submitted by a member of the public
type Offer struct {
	ID           string      `json:"id"`                     // Store-assigned key
	Name         string      `json:"name"`                   // Submitter name
	Skill        string      `json:"skill"`                  // Skill or service label
	City         string      `json:"city"`                   // City of the submitter
	PhoneNumber  string      `json:"phoneNumber"`            // WhatsApp number
	PaymentRange string      `json:"paymentRange,omitempty"` // Free-form rate, optional
	Description  string      `json:"description"`            // Free-text description
	Status       OfferStatus `json:"status"`                 // Moderation status
	CreatedAt    time.Time   `json:"createdAt"`              // Submission timestamp
	ApprovedAt   *time.Time  `json:"approvedAt,omitempty"`   // Set when approved
	RejectedAt   *time.Time  `json:"rejectedAt,omitempty"`   // Set when rejected
}

// OfferDraft carries the fields a public submission provides
type OfferDraft struct {
	Name         string `json:"name"`
	Skill        string `json:"skill"`
	City         string `json:"city"`
	PhoneNumber  string `json:"phoneNumber"`
	PaymentRange string `json:"paymentRange,omitempty"`
	Description  string `json:"description"`
}

// Clean returns a copy of the draft with surrounding whitespace removed
func (d OfferDraft) Clean() OfferDraft {
	return OfferDraft{
		Name:         strings.TrimSpace(d.Name),
		Skill:        strings.TrimSpace(d.Skill),
		City:         strings.TrimSpace(d.City),
		PhoneNumber:  strings.TrimSpace(d.PhoneNumber),
		PaymentRange: strings.TrimSpace(d.PaymentRange),
		Description:  strings.TrimSpace(d.Description),
	}
}

// HasRequiredFields reports whether every mandatory field is present
func (d OfferDraft) HasRequiredFields() bool {
	c := d.Clean()
	return c.Name != "" && c.Skill != "" && c.City != "" && c.PhoneNumber != "" && c.Description != ""
}

// NewOffer builds a pending offer from a cleaned draft
func NewOffer(draft OfferDraft, now time.Time) *Offer {
	d := draft.Clean()
	return &Offer{
		Name:         d.Name,
		Skill:        d.Skill,
		City:         d.City,
		PhoneNumber:  d.PhoneNumber,
		PaymentRange: d.PaymentRange,
		Description:  d.Description,
		Status:       OfferPending,
		CreatedAt:    now,
	}
}

// CanBeReviewed returns true while the offer is still waiting for a decision
func (o *Offer) CanBeReviewed() bool {
	return o.Status == OfferPending
}

// OfferFilters narrows the public listing; empty fields are ignored
type OfferFilters struct {
	Skill string `json:"skill,omitempty"`
	City  string `json:"city,omitempty"`
}

// Matches applies case-insensitive substring filters, ANDed together
func (f OfferFilters) Matches(o *Offer) bool {
	if skill := strings.TrimSpace(f.Skill); skill != "" {
		if !strings.Contains(strings.ToLower(o.Skill), strings.ToLower(skill)) {
			return false
		}
	}
	if city := strings.TrimSpace(f.City); city != "" {
		if !strings.Contains(strings.ToLower(o.City), strings.ToLower(city)) {
			return false
		}
	}
	return true
}

// OfferPage is one page of the public listing
type OfferPage struct {
	Offers     []*Offer   `json:"offers"`
	Pagination Pagination `json:"pagination"`
}

// OfferStats counts offers per status
type OfferStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// PublicOffer is the shape exposed on the public listing. The record id is
// withheld; visitors reach the submitter through the WhatsApp link.
type PublicOffer struct {
	Name         string    `json:"name"`
	Skill        string    `json:"skill"`
	City         string    `json:"city"`
	PhoneNumber  string    `json:"phoneNumber"`
	PaymentRange string    `json:"paymentRange,omitempty"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	WhatsAppURL  string    `json:"whatsappUrl"`
}

// ToPublic converts an offer to its public listing format
func (o *Offer) ToPublic() *PublicOffer {
	return &PublicOffer{
		Name:         o.Name,
		Skill:        o.Skill,
		City:         o.City,
		PhoneNumber:  o.PhoneNumber,
		PaymentRange: o.PaymentRange,
		Description:  o.Description,
		CreatedAt:    o.CreatedAt,
		WhatsAppURL:  WhatsAppURL(o.PhoneNumber, o.Name, o.Skill),
	}
}
