package outbound

import "context"

// Collection roots of the document tree
const (
	OffersPath          = "offers"
	RemovalRequestsPath = "removalRequests"
)

// DocumentStore is a key-path addressed document store. Paths are
// slash-separated, e.g. "offers" or "offers/<id>".
type DocumentStore interface {
	// Get decodes the JSON value at path into dest.
	// found is false when nothing is stored there.
	Get(ctx context.Context, path string, dest any) (found bool, err error)

	// Set replaces the value at path
	Set(ctx context.Context, path string, value any) error

	// Update shallow-merges fields into the node at path
	Update(ctx context.Context, path string, fields map[string]any) error

	// Remove deletes the value at path; removing an absent path is not an error
	Remove(ctx context.Context, path string) error

	// Push stores value under a new chronologically ordered child key of path
	Push(ctx context.Context, path string, value any) (string, error)

	// UpdatePaths writes several locations atomically; a nil value deletes the path
	UpdatePaths(ctx context.Context, values map[string]any) error

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	Close() error
}
