package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"groupkeeper-backend/internal/config"
	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

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

func newRunner(session *MockSessionService, keys *MockKeyService, reg *prometheus.Registry) *JobRunner {
	return NewJobRunner(&Services{Session: session, Keys: keys}, metrics.New(reg), &config.Config{})
}

func TestJobRunner_CheckSession(t *testing.T) {
	session := new(MockSessionService)
	runner := newRunner(session, new(MockKeyService), prometheus.NewRegistry())

	session.On("Check", mock.Anything).Return(nil, errors.New("session rejected"))

	assert.NotPanics(t, runner.CheckSession)
	session.AssertNumberOfCalls(t, "Check", 1)
}

func TestJobRunner_RecoversFromPanic(t *testing.T) {
	session := new(MockSessionService)
	runner := newRunner(session, new(MockKeyService), prometheus.NewRegistry())

	session.On("Check", mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil, nil)

	assert.NotPanics(t, runner.CheckSession)
}

func TestJobRunner_ReportActiveCodes(t *testing.T) {
	keys := new(MockKeyService)
	reg := prometheus.NewRegistry()
	runner := newRunner(new(MockSessionService), keys, reg)

	keys.On("ListActive", mock.Anything).Return([]domain.InviteCode{{Code: "A"}, {Code: "B"}}, nil)

	runner.ReportActiveCodes()

	expected := `
# HELP groupkeeper_active_codes Unused invite codes at the last report.
# TYPE groupkeeper_active_codes gauge
groupkeeper_active_codes 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "groupkeeper_active_codes"))
}
