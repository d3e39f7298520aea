package jobs

import (
	"context"
	"time"

	"groupkeeper-backend/internal/config"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/metrics"
	"groupkeeper-backend/internal/service"
)

// jobTimeout bounds a single job run.
const jobTimeout = 30 * time.Second

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	metrics  *metrics.Metrics
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Session service.SessionService
	Keys    service.KeyService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, m *metrics.Metrics, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		metrics:  m,
		config:   cfg,
	}
}

// Config returns the configuration the jobs were built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	logger.Debug("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Debug("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.CheckSession()
	jr.ReportActiveCodes()
}
