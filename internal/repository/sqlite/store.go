// Package sqlite provides a single-file SQLite invite code store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/repository"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS invite_codes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	code       TEXT NOT NULL UNIQUE,
	used       INTEGER NOT NULL DEFAULT 0,
	created_on INTEGER NOT NULL,
	used_on    INTEGER
)`

// Store persists invite codes in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ repository.InviteCodeRepository = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection serializes writers inside the process.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Insert(ctx context.Context, code string) (bool, error) {
	logger.EnterMethod("sqlite.Insert")

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO invite_codes (code, used, created_on) VALUES (?, 0, ?)`,
		code, toMillis(time.Now()))
	if isUniqueViolation(err) {
		logger.ExitMethod("sqlite.Insert", "inserted", false)
		return false, nil
	}
	if err != nil {
		logger.ExitMethodWithError("sqlite.Insert", err)
		return false, fmt.Errorf("insert invite code: %w", err)
	}

	logger.ExitMethod("sqlite.Insert", "inserted", true)
	return true, nil
}

func (s *Store) Get(ctx context.Context, code string) (*domain.InviteCode, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT code, used, created_on, used_on FROM invite_codes WHERE code = ?`, code)
	inv, err := scanInviteCode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnknownCode
	}
	if err != nil {
		return nil, fmt.Errorf("get invite code: %w", err)
	}
	return inv, nil
}

func (s *Store) Claim(ctx context.Context, code string) (domain.ClaimResult, error) {
	logger.EnterMethod("sqlite.Claim")

	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE invite_codes SET used = 1, used_on = ? WHERE code = ? AND used = 0`,
		toMillis(time.Now()), code)
	if err != nil {
		logger.ExitMethodWithError("sqlite.Claim", err)
		return domain.ClaimUnknown, fmt.Errorf("claim invite code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		logger.ExitMethodWithError("sqlite.Claim", err)
		return domain.ClaimUnknown, fmt.Errorf("claim invite code: %w", err)
	}
	if n == 1 {
		logger.ExitMethod("sqlite.Claim", "result", domain.ClaimClaimed)
		return domain.ClaimClaimed, nil
	}

	var exists bool
	if err := s.sqlDB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM invite_codes WHERE code = ?)`, code).Scan(&exists); err != nil {
		logger.ExitMethodWithError("sqlite.Claim", err)
		return domain.ClaimUnknown, fmt.Errorf("claim invite code: %w", err)
	}
	result := domain.ClaimUnknown
	if exists {
		result = domain.ClaimAlreadyUsed
	}
	logger.ExitMethod("sqlite.Claim", "result", result)
	return result, nil
}

func (s *Store) ListActive(ctx context.Context) ([]domain.InviteCode, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT code, used, created_on, used_on FROM invite_codes WHERE used = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}
	defer rows.Close()

	codes := []domain.InviteCode{}
	for rows.Next() {
		inv, err := scanInviteCode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite code: %w", err)
		}
		codes = append(codes, *inv)
	}
	return codes, rows.Err()
}

func (s *Store) WipeAll(ctx context.Context) (int64, error) {
	logger.EnterMethod("sqlite.WipeAll")

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM invite_codes`)
	if err != nil {
		logger.ExitMethodWithError("sqlite.WipeAll", err)
		return 0, fmt.Errorf("wipe invite codes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		logger.ExitMethodWithError("sqlite.WipeAll", err)
		return 0, fmt.Errorf("wipe invite codes: %w", err)
	}

	logger.ExitMethod("sqlite.WipeAll", "removed", n)
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInviteCode(row rowScanner) (*domain.InviteCode, error) {
	var (
		inv       domain.InviteCode
		used      int64
		createdOn int64
		usedOn    sql.NullInt64
	)
	if err := row.Scan(&inv.Code, &used, &createdOn, &usedOn); err != nil {
		return nil, err
	}
	inv.Used = used != 0
	inv.CreatedOn = fromMillis(createdOn)
	if usedOn.Valid {
		t := fromMillis(usedOn.Int64)
		inv.UsedOn = &t
	}
	return &inv, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
