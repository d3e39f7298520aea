package service

import (
	"context"
	"fmt"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/metrics"
	"groupkeeper-backend/internal/repository"
	"groupkeeper-backend/internal/security"
)

// maxInsertAttempts bounds how often one code is regenerated after colliding
// with an existing code.
const maxInsertAttempts = 10

type KeyOptions struct {
	Length   int
	MaxBatch int
}

type keyService struct {
	repo     repository.InviteCodeRepository
	opts     KeyOptions
	metrics  *metrics.Metrics
	generate func(length int) (string, error)
}

func NewKeyService(repo repository.InviteCodeRepository, opts KeyOptions, m *metrics.Metrics) KeyService {
	if opts.Length <= 0 {
		opts.Length = 16
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 100
	}
	return &keyService{
		repo:     repo,
		opts:     opts,
		metrics:  m,
		generate: security.GenerateCode,
	}
}

func (s *keyService) Generate(ctx context.Context, count, length int) ([]string, error) {
	logger.EnterMethod("keyService.Generate", "count", count, "length", length)

	if count < 1 || count > s.opts.MaxBatch {
		err := fmt.Errorf("%w: count must be between 1 and %d", domain.ErrInvalidArgument, s.opts.MaxBatch)
		logger.ExitMethodWithError("keyService.Generate", err)
		return nil, err
	}
	if length == 0 {
		length = s.opts.Length
	}
	if length < 8 || length > 64 {
		err := fmt.Errorf("%w: length must be between 8 and 64", domain.ErrInvalidArgument)
		logger.ExitMethodWithError("keyService.Generate", err)
		return nil, err
	}

	codes := make([]string, 0, count)
	for len(codes) < count {
		code, err := s.mintOne(ctx, length)
		if err != nil {
			// Codes already inserted stay valid; report how far we got.
			s.metrics.AddGenerated(len(codes))
			logger.ExitMethodWithError("keyService.Generate", err, "generated", len(codes))
			return codes, err
		}
		codes = append(codes, code)
	}

	s.metrics.AddGenerated(len(codes))
	logger.Audit(ctx, "keys.generate", "count", len(codes), "length", length)
	logger.ExitMethod("keyService.Generate", "generated", len(codes))
	return codes, nil
}

// mintOne draws codes until the store accepts one.
func (s *keyService) mintOne(ctx context.Context, length int) (string, error) {
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		code, err := s.generate(length)
		if err != nil {
			return "", err
		}
		inserted, err := s.repo.Insert(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to store invite code: %w", err)
		}
		if inserted {
			return code, nil
		}
		logger.Debug("Generated code collided, drawing again", "attempt", attempt+1)
	}
	return "", fmt.Errorf("no unique code after %d attempts", maxInsertAttempts)
}

func (s *keyService) ListActive(ctx context.Context) ([]domain.InviteCode, error) {
	return s.repo.ListActive(ctx)
}

func (s *keyService) Wipe(ctx context.Context) (int64, error) {
	logger.EnterMethod("keyService.Wipe")

	n, err := s.repo.WipeAll(ctx)
	if err != nil {
		logger.ExitMethodWithError("keyService.Wipe", err)
		return 0, fmt.Errorf("failed to wipe invite codes: %w", err)
	}

	logger.Audit(ctx, "keys.wipe", "removed", n)
	logger.ExitMethod("keyService.Wipe", "removed", n)
	return n, nil
}
