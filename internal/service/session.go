package service

import (
	"context"
	"sync"
	"time"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/metrics"
)

type sessionService struct {
	platform GroupPlatform
	metrics  *metrics.Metrics
	now      func() time.Time

	mu     sync.RWMutex
	status domain.SessionStatus
}

func NewSessionService(platform GroupPlatform, m *metrics.Metrics) SessionService {
	return &sessionService{
		platform: platform,
		metrics:  m,
		now:      time.Now,
	}
}

// Check never fails the process. An invalid session is logged at ERROR on
// every call so it stays visible until the credential is rotated.
func (s *sessionService) Check(ctx context.Context) (*domain.RemoteUser, error) {
	user, err := s.platform.CheckSession(ctx)
	checkedAt := s.now().UTC()

	status := domain.SessionStatus{Checked: true, CheckedAt: &checkedAt}
	if err != nil {
		status.Error = err.Error()
		logger.ErrorContext(ctx, "Platform session check failed; group operations will fail until the session cookie is replaced",
			"error", err)
	} else {
		status.Valid = true
		status.Account = user.Name
		logger.DebugContext(ctx, "Platform session valid", "account", user.Name, "user_id", user.ID)
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.metrics.SetSessionValid(status.Valid)

	return user, err
}

func (s *sessionService) Status() domain.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
