package repository

import (
	"context"

	"groupkeeper-backend/internal/domain"
)

// InviteCodeRepository owns the lifecycle of single-use invite codes.
//
// Implementations must make Claim a single atomic check-and-mark: across any
// number of concurrent Claim calls for one code, exactly one may return
// domain.ClaimClaimed.
type InviteCodeRepository interface {
	// Insert adds an unused code. It returns false, without error, when the
	// code is already tracked.
	Insert(ctx context.Context, code string) (bool, error)
	// Get looks a code up. Returns domain.ErrUnknownCode when absent. The
	// answer may be stale by the time it is used; only Claim is authoritative.
	Get(ctx context.Context, code string) (*domain.InviteCode, error)
	// Claim marks an unused code as used.
	Claim(ctx context.Context, code string) (domain.ClaimResult, error)
	// ListActive returns every unused code.
	ListActive(ctx context.Context) ([]domain.InviteCode, error)
	// WipeAll removes every code, used or not, and returns how many were removed.
	WipeAll(ctx context.Context) (int64, error)
	// Close releases the backing's resources.
	Close() error
}
