package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"import-planner/core/types"
	"import-planner/internal/errors"
	"import-planner/internal/logging"
)

// Ledger applies the per-address binding state machine on top of a Store.
//
// Per address: Unbound -> Bound -> Unbound, re-bindable. Recording the same
// id while bound is idempotent and returns the existing binding; recording a
// different id fails with DUPLICATE_ADDRESS until an explicit unbind. All
// mutations run under per-address sharded locks.
type Ledger struct {
	store Store
	locks *AddressLocks
	now   func() time.Time
}

// New creates a ledger over a store
func New(store Store) *Ledger {
	return &Ledger{
		store: store,
		locks: NewAddressLocks(),
		now:   time.Now,
	}
}

// Record binds an address to an external id.
//
// fetchedAt is when the attribute set backing this binding was read from the
// remote system. Idempotent for the currently bound id: the existing binding
// is returned unchanged and no history entry is created.
func (l *Ledger) Record(ctx context.Context, address types.ResourceAddress, id types.ExternalID, fetchedAt time.Time) (*types.Binding, error) {
	unlock := l.locks.Lock(address)
	defer unlock()

	current, err := l.store.Current(ctx, address)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if current.ExternalID == id {
			return current, nil
		}
		return nil, errors.DuplicateAddress(address.String(), current.ExternalID.String(), id.String())
	}

	b := &types.Binding{
		ID:         uuid.NewString(),
		Address:    address,
		ExternalID: id,
		FetchedAt:  fetchedAt,
		State:      types.BindingBound,
	}
	if err := l.store.Append(ctx, b); err != nil {
		return nil, err
	}

	logging.Debug("recorded binding",
		zap.String("address", address.String()),
		zap.String("external_id", id.String()))
	return b, nil
}

// Unbind retires the current binding for an address, retaining history
func (l *Ledger) Unbind(ctx context.Context, address types.ResourceAddress) error {
	unlock := l.locks.Lock(address)
	defer unlock()

	current, err := l.store.Current(ctx, address)
	if err != nil {
		return err
	}
	if current == nil {
		return errors.Newf(errors.TypeNotFound, "address %s has no current binding", address)
	}
	if err := l.store.Retire(ctx, current.ID, l.now()); err != nil {
		return err
	}

	logging.Debug("retired binding",
		zap.String("address", address.String()),
		zap.String("external_id", current.ExternalID.String()))
	return nil
}

// Current returns the bound binding for an address, nil if unbound
func (l *Ledger) Current(ctx context.Context, address types.ResourceAddress) (*types.Binding, error) {
	return l.store.Current(ctx, address)
}

// History returns every binding generation for an address, oldest first
func (l *Ledger) History(ctx context.Context, address types.ResourceAddress) ([]*types.Binding, error) {
	return l.store.History(ctx, address)
}

// List returns the bound binding of every address, sorted by address
func (l *Ledger) List(ctx context.Context) ([]*types.Binding, error) {
	return l.store.List(ctx)
}

// Close releases the underlying store
func (l *Ledger) Close() error {
	return l.store.Close()
}
