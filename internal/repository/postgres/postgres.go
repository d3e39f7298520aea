package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"groupkeeper-backend/internal/repository"

	_ "github.com/lib/pq"
)

// schema creates the invite code table. The serial id preserves insertion
// order for listing.
const schema = `
CREATE TABLE IF NOT EXISTS invite_codes (
	id         BIGSERIAL PRIMARY KEY,
	code       TEXT NOT NULL UNIQUE,
	used       BOOLEAN NOT NULL DEFAULT FALSE,
	created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	used_on    TIMESTAMPTZ
)`

type Store struct {
	db *sql.DB
	repository.InviteCodeRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                   db,
		InviteCodeRepository: NewInviteCodeRepository(db),
	}
}

// Open connects to PostgreSQL, verifies the connection and creates the schema.
func Open(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	store := NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate creates the invite code table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create invite_codes table: %w", err)
	}
	return nil
}
