package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/metrics"
	"groupkeeper-backend/internal/repository"
)

type redemptionService struct {
	repo     repository.InviteCodeRepository
	platform GroupPlatform
	metrics  *metrics.Metrics
}

func NewRedemptionService(repo repository.InviteCodeRepository, platform GroupPlatform, m *metrics.Metrics) RedemptionService {
	return &redemptionService{
		repo:     repo,
		platform: platform,
		metrics:  m,
	}
}

// NormalizeCode trims surrounding space and upper-cases a user-typed code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Redeem consumes code and admits username's pending join request. The code
// is only consumed once the username is known to resolve. If the join
// mutation then fails the code stays consumed and ErrRemoteFailure is
// returned for manual follow-up.
func (s *redemptionService) Redeem(ctx context.Context, code, username string) (*domain.Redemption, error) {
	code = NormalizeCode(code)
	username = strings.TrimSpace(username)
	logger.EnterMethod("redemptionService.Redeem", "username", username)

	result, err := s.redeem(ctx, code, username)
	if err != nil {
		s.metrics.ObserveRedemption(redemptionOutcome(err))
		logger.ExitMethodWithError("redemptionService.Redeem", err, "username", username)
		return nil, err
	}

	s.metrics.ObserveRedemption("redeemed")
	logger.Audit(ctx, "keys.redeem", "code", code, "username", result.User.Name, "user_id", result.User.ID)
	logger.ExitMethod("redemptionService.Redeem", "user_id", result.User.ID)
	return result, nil
}

func (s *redemptionService) redeem(ctx context.Context, code, username string) (*domain.Redemption, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrInvalidArgument)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidArgument)
	}

	// 1. Fail fast on codes that cannot succeed, before any network call
	inv, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if inv.Used {
		return nil, domain.ErrAlreadyUsed
	}

	// 2. Resolve the account; a typo must not burn the code
	user, err := s.platform.ResolveUserID(ctx, username)
	if err != nil {
		return nil, err
	}

	// 3. Authoritative claim. A concurrent redeemer loses here.
	claim, err := s.repo.Claim(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to claim invite code: %w", err)
	}
	if err := claim.Err(); err != nil {
		return nil, err
	}

	// 4. Admit the join request
	if err := s.platform.AcceptJoinRequest(ctx, user.ID); err != nil {
		logger.ErrorContext(ctx, "Invite code consumed but join request was not accepted",
			"code", code, "user_id", user.ID, "username", user.Name, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteFailure, err)
	}

	return &domain.Redemption{Code: code, User: *user}, nil
}

func redemptionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrUnknownCode):
		return "unknown_code"
	case errors.Is(err, domain.ErrAlreadyUsed):
		return "already_used"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRemoteFailure):
		return "remote_failure"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	default:
		return "internal"
	}
}
