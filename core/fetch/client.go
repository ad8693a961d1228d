// Package fetch retrieves live attribute values of remote objects.
// The remote system client is owned externally and injected; the fetcher
// itself is read-only and adds retry behavior only.
package fetch

import (
	"context"

	"import-planner/core/types"
)

// RemoteClient is the injected remote system collaborator.
//
// Implementations classify their failures with the internal error taxonomy:
// NOT_FOUND when no object matches the id, AMBIGUOUS_ID when more than one
// matches, TRANSIENT for retryable failures (timeouts, rate limits). Any
// other error propagates unretried.
type RemoteClient interface {
	// GetByID retrieves the raw attributes of one remote object
	GetByID(ctx context.Context, resourceType string, id types.ExternalID) (types.RawObject, error)
}

// RemoteClientFunc adapts a function to the RemoteClient interface
type RemoteClientFunc func(ctx context.Context, resourceType string, id types.ExternalID) (types.RawObject, error)

// GetByID implements RemoteClient
func (f RemoteClientFunc) GetByID(ctx context.Context, resourceType string, id types.ExternalID) (types.RawObject, error) {
	return f(ctx, resourceType, id)
}
