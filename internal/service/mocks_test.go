package service

import (
	"context"

	"groupkeeper-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockInviteCodeRepo
type MockInviteCodeRepo struct {
	mock.Mock
}

func (m *MockInviteCodeRepo) Insert(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
func (m *MockInviteCodeRepo) Get(ctx context.Context, code string) (*domain.InviteCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteCode), args.Error(1)
}
func (m *MockInviteCodeRepo) Claim(ctx context.Context, code string) (domain.ClaimResult, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.ClaimResult), args.Error(1)
}
func (m *MockInviteCodeRepo) ListActive(ctx context.Context) ([]domain.InviteCode, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InviteCode), args.Error(1)
}
func (m *MockInviteCodeRepo) WipeAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockInviteCodeRepo) Close() error {
	return m.Called().Error(0)
}

// MockGroupPlatform
type MockGroupPlatform struct {
	mock.Mock
}

func (m *MockGroupPlatform) ResolveUserID(ctx context.Context, username string) (*domain.RemoteUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RemoteUser), args.Error(1)
}
func (m *MockGroupPlatform) ListRoles(ctx context.Context) []domain.GroupRole {
	args := m.Called(ctx)
	return args.Get(0).([]domain.GroupRole)
}
func (m *MockGroupPlatform) CurrentRole(ctx context.Context, userID int64) (*domain.GroupRole, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupRole), args.Error(1)
}
func (m *MockGroupPlatform) AcceptJoinRequest(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *MockGroupPlatform) RemoveMember(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *MockGroupPlatform) SetRole(ctx context.Context, userID, roleID int64) error {
	return m.Called(ctx, userID, roleID).Error(0)
}
func (m *MockGroupPlatform) CheckSession(ctx context.Context) (*domain.RemoteUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RemoteUser), args.Error(1)
}
