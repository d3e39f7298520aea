package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/ladder"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/metrics"
)

type membershipService struct {
	platform GroupPlatform
	metrics  *metrics.Metrics
}

func NewMembershipService(platform GroupPlatform, m *metrics.Metrics) MembershipService {
	return &membershipService{
		platform: platform,
		metrics:  m,
	}
}

func (s *membershipService) resolve(ctx context.Context, username string) (*domain.RemoteUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidArgument)
	}
	return s.platform.ResolveUserID(ctx, username)
}

// roles fetches the ladder. An empty list means the platform gave no answer.
func (s *membershipService) roles(ctx context.Context) ([]domain.GroupRole, error) {
	roles := s.platform.ListRoles(ctx)
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: no role information", domain.ErrUpstream)
	}
	return roles, nil
}

// AdjustRank moves username one rung up or down. Already standing at the top
// (or bottom) is reported as an unchanged RankChange and issues no mutation.
func (s *membershipService) AdjustRank(ctx context.Context, username string, direction domain.Direction) (*domain.RankChange, error) {
	kind := "promote"
	if direction == domain.DirectionDown {
		kind = "demote"
	}
	logger.EnterMethod("membershipService.AdjustRank", "username", username, "direction", direction)

	change, err := s.adjustRank(ctx, username, direction)
	if err != nil {
		s.metrics.ObserveRankChange(kind, "error")
		logger.ExitMethodWithError("membershipService.AdjustRank", err, "username", username)
		return nil, err
	}

	if change.Changed {
		s.metrics.ObserveRankChange(kind, "changed")
		logger.Audit(ctx, "members."+kind, "username", change.User.Name, "user_id", change.User.ID,
			"from", change.From.Name, "to", change.To.Name)
	} else {
		s.metrics.ObserveRankChange(kind, change.Reason)
	}
	logger.ExitMethod("membershipService.AdjustRank", "changed", change.Changed, "reason", change.Reason)
	return change, nil
}

func (s *membershipService) adjustRank(ctx context.Context, username string, direction domain.Direction) (*domain.RankChange, error) {
	if direction != domain.DirectionUp && direction != domain.DirectionDown {
		return nil, fmt.Errorf("%w: unknown direction %q", domain.ErrInvalidArgument, direction)
	}

	// 1. Resolve the account
	user, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	// 2. Fetch the ladder and the member's position on it
	roles, err := s.roles(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.platform.CurrentRole(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// 3. Compute the neighbour
	target, err := ladder.Move(roles, current, direction)
	switch {
	case errors.Is(err, domain.ErrAtCeiling):
		return &domain.RankChange{User: *user, From: current, To: current, Reason: "at_ceiling"}, nil
	case errors.Is(err, domain.ErrAtFloor):
		return &domain.RankChange{User: *user, From: current, To: current, Reason: "at_floor"}, nil
	case err != nil:
		return nil, err
	}

	// 4. Apply
	if err := s.platform.SetRole(ctx, user.ID, target.ID); err != nil {
		return nil, err
	}
	return &domain.RankChange{User: *user, From: current, To: &target, Changed: true}, nil
}

// SetRank moves username straight to the rank named by selector, which is a
// rank number or a role name.
func (s *membershipService) SetRank(ctx context.Context, username, selector string) (*domain.RankChange, error) {
	logger.EnterMethod("membershipService.SetRank", "username", username, "selector", selector)

	change, err := s.setRank(ctx, username, selector)
	if err != nil {
		s.metrics.ObserveRankChange("set", "error")
		logger.ExitMethodWithError("membershipService.SetRank", err, "username", username)
		return nil, err
	}

	if change.Changed {
		s.metrics.ObserveRankChange("set", "changed")
		logger.Audit(ctx, "members.rank", "username", change.User.Name, "user_id", change.User.ID,
			"from", change.From.Name, "to", change.To.Name)
	} else {
		s.metrics.ObserveRankChange("set", change.Reason)
	}
	logger.ExitMethod("membershipService.SetRank", "changed", change.Changed)
	return change, nil
}

func (s *membershipService) setRank(ctx context.Context, username, selector string) (*domain.RankChange, error) {
	user, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles(ctx)
	if err != nil {
		return nil, err
	}
	target, err := ladder.Select(roles, selector)
	if err != nil {
		return nil, err
	}

	current, err := s.platform.CurrentRole(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotInGroup
	}
	if current.ID == target.ID {
		return &domain.RankChange{User: *user, From: current, To: current, Reason: "unchanged"}, nil
	}

	if err := s.platform.SetRole(ctx, user.ID, target.ID); err != nil {
		return nil, err
	}
	return &domain.RankChange{User: *user, From: current, To: &target, Changed: true}, nil
}

func (s *membershipService) MemberInfo(ctx context.Context, username string) (*domain.MemberInfo, error) {
	user, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	role, err := s.platform.CurrentRole(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.MemberInfo{User: *user, Role: role, InGroup: role != nil}, nil
}

func (s *membershipService) Kick(ctx context.Context, username string) (*domain.RemoteUser, error) {
	logger.EnterMethod("membershipService.Kick", "username", username)

	user, err := s.resolve(ctx, username)
	if err != nil {
		logger.ExitMethodWithError("membershipService.Kick", err, "username", username)
		return nil, err
	}
	if err := s.platform.RemoveMember(ctx, user.ID); err != nil {
		logger.ExitMethodWithError("membershipService.Kick", err, "user_id", user.ID)
		return nil, err
	}

	logger.Audit(ctx, "members.kick", "username", user.Name, "user_id", user.ID)
	logger.ExitMethod("membershipService.Kick", "user_id", user.ID)
	return user, nil
}
