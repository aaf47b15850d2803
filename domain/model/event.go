package model

import "time"

// EventType names a moderation event pushed to the admin live feed
type EventType string

const (
	EventOfferSubmitted    EventType = "offer_submitted"
	EventOfferApproved     EventType = "offer_approved"
	EventOfferRejected     EventType = "offer_rejected"
	EventOfferDeleted      EventType = "offer_deleted"
	EventRemovalRequested  EventType = "removal_requested"
	EventRemovalApproved   EventType = "removal_approved"
	EventRemovalRejected   EventType = "removal_rejected"
	EventRemovalReconciled EventType = "removal_reconciled"
)

// Event is a single entry of the admin live feed
type Event struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	Source    string    `json:"source"` // "api", "telegram" or "system"
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	SourceAPI      = "api"
	SourceTelegram = "telegram"
	SourceSystem   = "system"
)

// NewEvent stamps an event with the current time
func NewEvent(t EventType, id, source string, data any) Event {
	return Event{Type: t, ID: id, Source: source, Data: data, Timestamp: time.Now()}
}
