package service

import (
	"context"
	"errors"
	"testing"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/repository/filestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestKeyService_GenerateDistinct(t *testing.T) {
	store, err := filestore.Open("")
	require.NoError(t, err)
	svc := NewKeyService(store, KeyOptions{Length: 16, MaxBatch: 100}, nil)
	ctx := context.Background()

	codes, err := svc.Generate(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, codes, 50)

	seen := map[string]bool{}
	for _, code := range codes {
		assert.Len(t, code, 16)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 50)
}

func TestKeyService_GenerateRetriesCollisions(t *testing.T) {
	repo := new(MockInviteCodeRepo)
	svc := NewKeyService(repo, KeyOptions{}, nil).(*keyService)
	draws := []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}
	svc.generate = func(int) (string, error) {
		code := draws[0]
		draws = draws[1:]
		return code, nil
	}
	ctx := context.Background()

	repo.On("Insert", ctx, "AAAAAAAA").Return(true, nil).Once()
	repo.On("Insert", ctx, "AAAAAAAA").Return(false, nil).Once()
	repo.On("Insert", ctx, "BBBBBBBB").Return(true, nil).Once()

	codes, err := svc.Generate(ctx, 2, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAAAAAA", "BBBBBBBB"}, codes)
	repo.AssertExpectations(t)
}

func TestKeyService_GenerateGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := new(MockInviteCodeRepo)
	svc := NewKeyService(repo, KeyOptions{}, nil).(*keyService)
	svc.generate = func(int) (string, error) { return "SAMESAME", nil }
	repo.On("Insert", mock.Anything, "SAMESAME").Return(false, nil)

	codes, err := svc.Generate(context.Background(), 1, 8)
	assert.Error(t, err)
	assert.Empty(t, codes)
	repo.AssertNumberOfCalls(t, "Insert", maxInsertAttempts)
}

func TestKeyService_GenerateValidation(t *testing.T) {
	repo := new(MockInviteCodeRepo)
	svc := NewKeyService(repo, KeyOptions{Length: 16, MaxBatch: 10}, nil)
	ctx := context.Background()

	_, err := svc.Generate(ctx, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.Generate(ctx, 11, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.Generate(ctx, 1, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestKeyService_GenerateStoreFailure(t *testing.T) {
	repo := new(MockInviteCodeRepo)
	svc := NewKeyService(repo, KeyOptions{}, nil)
	storeErr := errors.New("disk full")
	repo.On("Insert", mock.Anything, mock.Anything).Return(false, storeErr)

	_, err := svc.Generate(context.Background(), 3, 0)
	assert.ErrorIs(t, err, storeErr)
}

func TestKeyService_Wipe(t *testing.T) {
	repo := new(MockInviteCodeRepo)
	svc := NewKeyService(repo, KeyOptions{}, nil)
	ctx := context.Background()
	repo.On("WipeAll", ctx).Return(int64(7), nil)

	n, err := svc.Wipe(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), n)
	repo.AssertExpectations(t)
}
