// Package postgres persists claim records in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"claimd/internal/claim/models"
	"claimd/internal/claim/store"
	"claimd/pkg/domain"
)

type Store struct {
	db *sql.DB
}

var _ store.ClaimStore = (*Store)(nil)

// New constructs a PostgreSQL-backed claim store on an existing connection
// pool. Call EnsureSchema before first use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open dials the database and verifies the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db), nil
}

// EnsureSchema creates the claims table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS claims (
			fingerprint   BYTEA PRIMARY KEY,
			owner         TEXT   NOT NULL,
			registered_at BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure claims schema: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, fp domain.Fingerprint) (models.ClaimRecord, error) {
	var (
		owner        string
		registeredAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT owner, registered_at FROM claims WHERE fingerprint = $1`, []byte(fp),
	).Scan(&owner, &registeredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ClaimRecord{}, store.ErrNotFound
	}
	if err != nil {
		return models.ClaimRecord{}, fmt.Errorf("get claim record: %w", err)
	}
	return models.ClaimRecord{
		Owner:        domain.Identity(owner),
		RegisteredAt: domain.LogicalTimestamp(registeredAt),
	}, nil
}

func (s *Store) Contains(ctx context.Context, fp domain.Fingerprint) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM claims WHERE fingerprint = $1)`, []byte(fp),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check claim record: %w", err)
	}
	return exists, nil
}

func (s *Store) Insert(ctx context.Context, fp domain.Fingerprint, rec models.ClaimRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (fingerprint, owner, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (fingerprint)
		DO UPDATE SET owner = EXCLUDED.owner, registered_at = EXCLUDED.registered_at`,
		[]byte(fp), rec.Owner.String(), int64(rec.RegisteredAt))
	if err != nil {
		return fmt.Errorf("insert claim record: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, fp domain.Fingerprint) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM claims WHERE fingerprint = $1`, []byte(fp))
	if err != nil {
		return fmt.Errorf("remove claim record: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }
