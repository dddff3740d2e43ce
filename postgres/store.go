// Package postgres implements an assets.Store on PostgreSQL.
//
// Assets live in a single table, their display order in the position column:
//
//	CREATE TABLE assets (
//	    id         text PRIMARY KEY,
//	    position   bigint NOT NULL,
//	    name       text NOT NULL,
//	    type       text NOT NULL,
//	    value      numeric NOT NULL CHECK (value >= 0),
//	    currency   text NOT NULL,
//	    location   text NOT NULL DEFAULT '',
//	    notes      text NOT NULL DEFAULT '',
//	    created_at timestamptz NOT NULL DEFAULT now(),
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/etnz/assets"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id         text PRIMARY KEY,
	position   bigint NOT NULL,
	name       text NOT NULL,
	type       text NOT NULL,
	value      numeric NOT NULL CHECK (value >= 0),
	currency   text NOT NULL,
	location   text NOT NULL DEFAULT '',
	notes      text NOT NULL DEFAULT '',
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS assets_position_idx ON assets (position);
`

// Store is an assets.OrderStore backed by a pgx connection pool.
type Store struct {
	db     *pgxpool.Pool
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, assets.PersistenceError("connect", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, assets.PersistenceError("connect", err)
	}
	return New(db), nil
}

// New returns a Store using db. Closing the Store closes db.
func New(db *pgxpool.Pool) *Store { return &Store{db: db} }

// Migrate creates the assets table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.check("migrate"); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return assets.PersistenceError("migrate", err)
	}
	return nil
}

func (s *Store) check(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("%s: %w: store is closed", op, assets.ErrPersistence)
	}
	return nil
}

func (s *Store) LoadAll(ctx context.Context) ([]assets.Asset, error) {
	if err := s.check("load"); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, name, type, value::text, currency, location, notes
		FROM assets
		ORDER BY position, created_at
	`)
	if err != nil {
		return nil, assets.PersistenceError("load", err)
	}
	defer rows.Close()

	var list []assets.Asset
	for rows.Next() {
		var (
			a          assets.Asset
			id, typ, v string
		)
		if err := rows.Scan(&id, &a.Name, &typ, &v, &a.Currency, &a.Location, &a.Notes); err != nil {
			return nil, assets.PersistenceError("load", err)
		}
		a.ID = assets.ID(id)
		a.Type = assets.ParseAssetType(typ)
		if a.Value, err = decimal.NewFromString(v); err != nil {
			return nil, assets.PersistenceError("load", fmt.Errorf("asset %s: invalid value %q: %w", id, v, err))
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, assets.PersistenceError("load", err)
	}
	return list, nil
}

func (s *Store) Create(ctx context.Context, a assets.Asset) (assets.ID, error) {
	if err := s.check("create"); err != nil {
		return "", err
	}
	id := assets.NewID()
	_, err := s.db.Exec(ctx, `
		INSERT INTO assets (id, position, name, type, value, currency, location, notes)
		VALUES ($1, (SELECT COALESCE(MAX(position), 0) + 1 FROM assets), $2, $3, $4::numeric, $5, $6, $7)
	`, id.String(), a.Name, string(a.Type), a.Value.String(), a.Currency, a.Location, a.Notes)
	if err != nil {
		return "", assets.PersistenceError("create", err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, id assets.ID, a assets.Asset) error {
	if err := s.check("update"); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE assets SET
			name=$2,
			type=$3,
			value=$4::numeric,
			currency=$5,
			location=$6,
			notes=$7,
			updated_at=now()
		WHERE id = $1
	`, id.String(), a.Name, string(a.Type), a.Value.String(), a.Currency, a.Location, a.Notes)
	if err != nil {
		return assets.PersistenceError("update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s: %w", id, assets.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id assets.ID) error {
	if err := s.check("delete"); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id.String())
	if err != nil {
		return assets.PersistenceError("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %s: %w", id, assets.ErrNotFound)
	}
	return nil
}

// SaveOrder rewrites every position in a single transaction.
func (s *Store) SaveOrder(ctx context.Context, ids []assets.ID) (err error) {
	if err := s.check("save order"); err != nil {
		return err
	}
	seen := make(map[assets.ID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("save order: %w: %s appears more than once", assets.ErrNotFound, id)
		}
		seen[id] = true
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return assets.PersistenceError("save order", err)
	}
	defer func() {
		if err != nil {
			// the transaction error, if any, is less relevant than err
			_ = tx.Rollback(ctx)
		}
	}()

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM assets`).Scan(&count); err != nil {
		return assets.PersistenceError("save order", err)
	}
	if count != len(ids) {
		return fmt.Errorf("save order: %w: order has %d ids, store has %d", assets.ErrPersistence, len(ids), count)
	}

	batch := &pgx.Batch{}
	for i, id := range ids {
		batch.Queue(`UPDATE assets SET position = $2 WHERE id = $1`, id.String(), int64(i+1))
	}
	results := tx.SendBatch(ctx, batch)
	for _, id := range ids {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return assets.PersistenceError("save order", err)
		}
		if tag.RowsAffected() == 0 {
			results.Close()
			return fmt.Errorf("save order %s: %w", id, assets.ErrNotFound)
		}
	}
	if err := results.Close(); err != nil {
		return assets.PersistenceError("save order", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return assets.PersistenceError("save order", err)
	}
	return nil
}

// Close closes the pool. It is idempotent.
func (s *Store) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.db.Close()
	})
	return nil
}

var _ assets.OrderStore = (*Store)(nil)
