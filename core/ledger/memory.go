package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"import-planner/core/types"
	"import-planner/internal/errors"
)

// MemoryStore is an in-memory binding store, the default backend and the
// substrate of the file backend
type MemoryStore struct {
	mu      sync.RWMutex
	history map[types.ResourceAddress][]*types.Binding
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history: make(map[types.ResourceAddress][]*types.Binding),
	}
}

// Append persists a new binding generation
func (s *MemoryStore) Append(ctx context.Context, b *types.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *b
	s.history[b.Address] = append(s.history[b.Address], &cp)
	return nil
}

// Retire marks one binding generation as retired
func (s *MemoryStore) Retire(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, gens := range s.history {
		for _, b := range gens {
			if b.ID == id {
				b.State = types.BindingRetired
				b.RetiredAt = &at
				return nil
			}
		}
	}
	return errors.Newf(errors.TypeInternal, "binding %s not in store", id)
}

// Current returns the bound binding for an address, nil if unbound
func (s *MemoryStore) Current(ctx context.Context, address types.ResourceAddress) (*types.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.history[address] {
		if b.State == types.BindingBound {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

// History returns every binding generation for an address, oldest first
func (s *MemoryStore) History(ctx context.Context, address types.ResourceAddress) ([]*types.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gens := s.history[address]
	out := make([]*types.Binding, 0, len(gens))
	for _, b := range gens {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

// List returns the bound binding of every address, sorted by address
func (s *MemoryStore) List(ctx context.Context) ([]*types.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Binding
	for _, gens := range s.history {
		for _, b := range gens {
			if b.State == types.BindingBound {
				cp := *b
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

// Close is a no-op for the memory backend
func (s *MemoryStore) Close() error {
	return nil
}

// snapshot returns every generation of every address for persistence,
// ordered by address then append order
func (s *MemoryStore) snapshot() []*types.Binding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := make([]types.ResourceAddress, 0, len(s.history))
	for addr := range s.history {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var out []*types.Binding
	for _, addr := range addrs {
		for _, b := range s.history[addr] {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

// load replaces the store contents, preserving the given order per address
func (s *MemoryStore) load(bindings []*types.Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = make(map[types.ResourceAddress][]*types.Binding)
	for _, b := range bindings {
		cp := *b
		s.history[b.Address] = append(s.history[b.Address], &cp)
	}
}
