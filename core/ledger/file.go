package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"import-planner/core/types"
	"import-planner/internal/errors"
)

// fileDocument is the on-disk ledger format
type fileDocument struct {
	Version  string           `json:"version"`
	Bindings []*types.Binding `json:"bindings"`
}

// FileStore persists bindings as a JSON document, rewritten atomically on
// every mutation. Suitable for single-process CLI use.
type FileStore struct {
	mu   sync.Mutex
	path string
	mem  *MemoryStore
}

// NewFileStore opens (or creates) a file-backed store
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		mem:  NewMemoryStore(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Config("cannot read ledger file", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Parsing("malformed ledger file", err)
	}
	s.mem.load(doc.Bindings)
	return s, nil
}

// Append persists a new binding generation
func (s *FileStore) Append(ctx context.Context, b *types.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mem.Append(ctx, b); err != nil {
		return err
	}
	return s.flush()
}

// Retire marks one binding generation as retired
func (s *FileStore) Retire(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mem.Retire(ctx, id, at); err != nil {
		return err
	}
	return s.flush()
}

// Current returns the bound binding for an address, nil if unbound
func (s *FileStore) Current(ctx context.Context, address types.ResourceAddress) (*types.Binding, error) {
	return s.mem.Current(ctx, address)
}

// History returns every binding generation for an address, oldest first
func (s *FileStore) History(ctx context.Context, address types.ResourceAddress) ([]*types.Binding, error) {
	return s.mem.History(ctx, address)
}

// List returns the bound binding of every address, sorted by address
func (s *FileStore) List(ctx context.Context) ([]*types.Binding, error) {
	return s.mem.List(ctx)
}

// Close flushes and releases the store
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// flush rewrites the document through a temp file and rename so a crash
// never leaves a half-written ledger
func (s *FileStore) flush() error {
	doc := fileDocument{
		Version:  "1.0",
		Bindings: s.mem.snapshot(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Internal("cannot encode ledger", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("cannot create ledger directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return errors.Config("cannot create ledger temp file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Config("cannot write ledger", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Config("cannot close ledger temp file", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Config("cannot replace ledger file", err)
	}
	return nil
}
