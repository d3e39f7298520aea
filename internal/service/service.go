package service

import (
	"context"

	"groupkeeper-backend/internal/domain"
)

// GroupPlatform is the subset of the platform client the services drive.
// *platform.Client satisfies it.
type GroupPlatform interface {
	ResolveUserID(ctx context.Context, username string) (*domain.RemoteUser, error)
	ListRoles(ctx context.Context) []domain.GroupRole
	CurrentRole(ctx context.Context, userID int64) (*domain.GroupRole, error)
	AcceptJoinRequest(ctx context.Context, userID int64) error
	RemoveMember(ctx context.Context, userID int64) error
	SetRole(ctx context.Context, userID, roleID int64) error
	CheckSession(ctx context.Context) (*domain.RemoteUser, error)
}

type KeyService interface {
	// Generate mints count fresh codes of the given length. A length of 0 uses
	// the configured default.
	Generate(ctx context.Context, count, length int) ([]string, error)
	ListActive(ctx context.Context) ([]domain.InviteCode, error)
	Wipe(ctx context.Context) (int64, error)
}

type RedemptionService interface {
	Redeem(ctx context.Context, code, username string) (*domain.Redemption, error)
}

type MembershipService interface {
	AdjustRank(ctx context.Context, username string, direction domain.Direction) (*domain.RankChange, error)
	SetRank(ctx context.Context, username, selector string) (*domain.RankChange, error)
	MemberInfo(ctx context.Context, username string) (*domain.MemberInfo, error)
	Kick(ctx context.Context, username string) (*domain.RemoteUser, error)
}

type SessionService interface {
	// Check probes the platform session and records the outcome.
	Check(ctx context.Context) (*domain.RemoteUser, error)
	Status() domain.SessionStatus
}
