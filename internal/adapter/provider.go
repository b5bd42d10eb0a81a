package adapter

import (
	"context"
)

// StorageProvider yields a StorageAdapter bound to a specific user's
// credentials and folder. Construction must be cheap (no network I/O); the
// credential is only exercised by the adapter's outgoing calls.
type StorageProvider interface {
	// GetAdapter returns a StorageAdapter for the given user ID.
	GetAdapter(ctx context.Context, userID string) (StorageAdapter, error)
}
