package http

import (
	"context"

	"groupkeeper-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockKeyService
type MockKeyService struct {
	mock.Mock
}

func (m *MockKeyService) Generate(ctx context.Context, count, length int) ([]string, error) {
	args := m.Called(ctx, count, length)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockKeyService) ListActive(ctx context.Context) ([]domain.InviteCode, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InviteCode), args.Error(1)
}
func (m *MockKeyService) Wipe(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockRedemptionService
type MockRedemptionService struct {
	mock.Mock
}

func (m *MockRedemptionService) Redeem(ctx context.Context, code, username string) (*domain.Redemption, error) {
	args := m.Called(ctx, code, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Redemption), args.Error(1)
}

// MockMembershipService
type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) AdjustRank(ctx context.Context, username string, direction domain.Direction) (*domain.RankChange, error) {
	args := m.Called(ctx, username, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RankChange), args.Error(1)
}
func (m *MockMembershipService) SetRank(ctx context.Context, username, selector string) (*domain.RankChange, error) {
	args := m.Called(ctx, username, selector)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RankChange), args.Error(1)
}
func (m *MockMembershipService) MemberInfo(ctx context.Context, username string) (*domain.MemberInfo, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MemberInfo), args.Error(1)
}
func (m *MockMembershipService) Kick(ctx context.Context, username string) (*domain.RemoteUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RemoteUser), args.Error(1)
}

// MockSessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Check(ctx context.Context) (*domain.RemoteUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RemoteUser), args.Error(1)
}
func (m *MockSessionService) Status() domain.SessionStatus {
	return m.Called().Get(0).(domain.SessionStatus)
}
