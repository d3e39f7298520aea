package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/repository"
)

type inviteCodeRepository struct {
	db *sql.DB
}

func NewInviteCodeRepository(db *sql.DB) repository.InviteCodeRepository {
	return &inviteCodeRepository{db: db}
}

func (r *inviteCodeRepository) Insert(ctx context.Context, code string) (bool, error) {
	logger.EnterMethod("inviteCodeRepository.Insert")

	query := `INSERT INTO invite_codes (code, created_on) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, code, time.Now().UTC())
	if err != nil {
		logger.ExitMethodWithError("inviteCodeRepository.Insert", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		logger.ExitMethodWithError("inviteCodeRepository.Insert", err)
		return false, err
	}

	logger.ExitMethod("inviteCodeRepository.Insert", "inserted", n == 1)
	return n == 1, nil
}

func (r *inviteCodeRepository) Get(ctx context.Context, code string) (*domain.InviteCode, error) {
	query := `SELECT code, used, created_on, used_on FROM invite_codes WHERE code = $1`
	inv, err := scanInviteCode(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnknownCode
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Claim flips used from false to true in one conditional UPDATE. The row lock
// taken by the UPDATE serializes concurrent claims, so only one sees a row
// affected.
func (r *inviteCodeRepository) Claim(ctx context.Context, code string) (domain.ClaimResult, error) {
	logger.EnterMethod("inviteCodeRepository.Claim")

	query := `UPDATE invite_codes SET used = TRUE, used_on = $2 WHERE code = $1 AND used = FALSE`
	res, err := r.db.ExecContext(ctx, query, code, time.Now().UTC())
	if err != nil {
		logger.ExitMethodWithError("inviteCodeRepository.Claim", err)
		return domain.ClaimUnknown, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		logger.ExitMethodWithError("inviteCodeRepository.Claim", err)
		return domain.ClaimUnknown, err
	}
	if n == 1 {
		logger.ExitMethod("inviteCodeRepository.Claim", "result", domain.ClaimClaimed)
		return domain.ClaimClaimed, nil
	}

	// Nothing flipped: the code is either already used or absent. used never
	// goes back to false, so this read cannot turn a used code into a claimable one.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM invite_codes WHERE code = $1)`, code).Scan(&exists); err != nil {
		logger.ExitMethodWithError("inviteCodeRepository.Claim", err)
		return domain.ClaimUnknown, err
	}

	result := domain.ClaimUnknown
	if exists {
		result = domain.ClaimAlreadyUsed
	}
	logger.ExitMethod("inviteCodeRepository.Claim", "result", result)
	return result, nil
}

func (r *inviteCodeRepository) ListActive(ctx context.Context) ([]domain.InviteCode, error) {
	query := `SELECT code, used, created_on, used_on FROM invite_codes WHERE used = FALSE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []domain.InviteCode{}
	for rows.Next() {
		inv, err := scanInviteCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *inv)
	}
	return codes, rows.Err()
}

func (r *inviteCodeRepository) WipeAll(ctx context.Context) (int64, error) {
	logger.EnterMethod("inviteCodeRepository.WipeAll")

	res, err := r.db.ExecContext(ctx, `DELETE FROM invite_codes`)
	if err != nil {
		logger.ExitMethodWithError("inviteCodeRepository.WipeAll", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		logger.ExitMethodWithError("inviteCodeRepository.WipeAll", err)
		return 0, err
	}

	logger.ExitMethod("inviteCodeRepository.WipeAll", "removed", n)
	return n, nil
}

func (r *inviteCodeRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInviteCode(row rowScanner) (*domain.InviteCode, error) {
	inv := &domain.InviteCode{}
	var usedOn sql.NullTime
	if err := row.Scan(&inv.Code, &inv.Used, &inv.CreatedOn, &usedOn); err != nil {
		return nil, err
	}
	if usedOn.Valid {
		t := usedOn.Time
		inv.UsedOn = &t
	}
	return inv, nil
}
