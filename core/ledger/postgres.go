package ledger

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"import-planner/core/types"
	"import-planner/internal/errors"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS bindings (
	seq         BIGSERIAL PRIMARY KEY,
	id          TEXT NOT NULL UNIQUE,
	address     TEXT NOT NULL,
	external_id TEXT NOT NULL,
	fetched_at  TIMESTAMPTZ NOT NULL,
	state       TEXT NOT NULL,
	retired_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS bindings_address_idx ON bindings (address);
`

// PostgresStore persists bindings in an append-only table for shared,
// multi-operator use
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a postgres-backed store and ensures its table
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Config("cannot open postgres ledger", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Config("cannot reach postgres ledger", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, errors.Config("cannot prepare ledger table", err)
	}
	return &PostgresStore{db: db}, nil
}

// Append persists a new binding generation
func (s *PostgresStore) Append(ctx context.Context, b *types.Binding) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bindings (id, address, external_id, fetched_at, state, retired_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.Address.String(), b.ExternalID.String(), b.FetchedAt, string(b.State), b.RetiredAt)
	if err != nil {
		return errors.Internal("cannot append binding", err)
	}
	return nil
}

// Retire marks one binding generation as retired
func (s *PostgresStore) Retire(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bindings SET state = $1, retired_at = $2 WHERE id = $3`,
		string(types.BindingRetired), at, id)
	if err != nil {
		return errors.Internal("cannot retire binding", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Newf(errors.TypeInternal, "binding %s not in store", id)
	}
	return nil
}

// Current returns the bound binding for an address, nil if unbound
func (s *PostgresStore) Current(ctx context.Context, address types.ResourceAddress) (*types.Binding, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, address, external_id, fetched_at, state, retired_at
		 FROM bindings WHERE address = $1 AND state = $2
		 ORDER BY seq DESC LIMIT 1`,
		address.String(), string(types.BindingBound))

	b, err := scanBinding(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Internal("cannot read current binding", err)
	}
	return b, nil
}

// History returns every binding generation for an address, oldest first
func (s *PostgresStore) History(ctx context.Context, address types.ResourceAddress) ([]*types.Binding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, address, external_id, fetched_at, state, retired_at
		 FROM bindings WHERE address = $1 ORDER BY seq ASC`,
		address.String())
	if err != nil {
		return nil, errors.Internal("cannot read binding history", err)
	}
	defer rows.Close()
	return collectBindings(rows)
}

// List returns the bound binding of every address, sorted by address
func (s *PostgresStore) List(ctx context.Context) ([]*types.Binding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, address, external_id, fetched_at, state, retired_at
		 FROM bindings WHERE state = $1 ORDER BY address ASC, seq ASC`,
		string(types.BindingBound))
	if err != nil {
		return nil, errors.Internal("cannot list bindings", err)
	}
	defer rows.Close()
	return collectBindings(rows)
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanBinding(scan func(...interface{}) error) (*types.Binding, error) {
	var (
		b         types.Binding
		addr      string
		extID     string
		state     string
		retiredAt sql.NullTime
	)
	if err := scan(&b.ID, &addr, &extID, &b.FetchedAt, &state, &retiredAt); err != nil {
		return nil, err
	}
	b.Address = types.ResourceAddress(addr)
	b.ExternalID = types.ExternalID(extID)
	b.State = types.BindingState(state)
	if retiredAt.Valid {
		t := retiredAt.Time
		b.RetiredAt = &t
	}
	return &b, nil
}

func collectBindings(rows *sql.Rows) ([]*types.Binding, error) {
	var out []*types.Binding
	for rows.Next() {
		b, err := scanBinding(rows.Scan)
		if err != nil {
			return nil, errors.Internal("cannot decode binding row", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("binding row iteration failed", err)
	}
	return out, nil
}
