package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserDatabaseNotFound  = errors.New("user database file not found")
	ErrUserDatabaseCorrupted = errors.New("user database file corrupted")
	ErrInvalidChecksum       = errors.New("invalid file checksum")

	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrUnsupportedPath  = errors.New("unsupported document path")

	ErrMissingFields          = errors.New("missing required fields")
	ErrOfferNotFound          = errors.New("offer not found")
	ErrRemovalRequestNotFound = errors.New("removal request not found")
	ErrNoMatchingOffer        = errors.New("no offer matches the given name and phone number")
	ErrPendingRemovalExists   = errors.New("a pending removal request already exists for this offer")

	ErrNotifierDisabled = errors.New("chat notifier disabled")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserExists         = errors.New("user already exists")
	ErrAdminExists        = errors.New("an admin user already exists")
)

// ValidationError carries field-level messages for a rejected submission
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// StatusConflictError is returned when a transition is attempted on a record
// that is no longer pending.
type StatusConflictError struct {
	Status string
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("already %s", e.Status)
}
