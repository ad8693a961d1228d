// Package ledger records the association between declared resource
// addresses and external identifiers. The ledger is the single shared
// mutable resource of the planner; mutations are applied under per-address
// mutual exclusion and the history per address is append-only.
package ledger

import (
	"context"
	"time"

	"import-planner/core/types"
	"import-planner/internal/errors"
)

// Backend is a persistence backend type
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
)

// Store persists binding generations.
//
// Implementations must be safe for concurrent use; the Ledger layers
// per-address serialization on top but reads can arrive from anywhere.
type Store interface {
	// Append persists a new binding generation
	Append(ctx context.Context, b *types.Binding) error

	// Retire marks one binding generation as retired
	Retire(ctx context.Context, id string, at time.Time) error

	// Current returns the bound binding for an address, nil if unbound
	Current(ctx context.Context, address types.ResourceAddress) (*types.Binding, error)

	// History returns every binding generation for an address, oldest first
	History(ctx context.Context, address types.ResourceAddress) ([]*types.Binding, error)

	// List returns the bound binding of every address, sorted by address
	List(ctx context.Context) ([]*types.Binding, error)

	// Close releases backend resources
	Close() error
}

// Open creates a store for the configured backend
func Open(ctx context.Context, backend Backend, path, dsn string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(path)
	case BackendPostgres:
		return NewPostgresStore(ctx, dsn)
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown ledger backend %q", backend)
	}
}
