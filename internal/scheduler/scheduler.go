package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"groupkeeper-backend/internal/jobs"
	"groupkeeper-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	// Platform session liveness
	if _, err := s.cron.AddFunc(cfg.SessionCheck, s.jobs.CheckSession); err != nil {
		logger.Error("Failed to register CheckSession job", "schedule", cfg.SessionCheck, "error", err)
	}

	// Active code gauge
	if _, err := s.cron.AddFunc(cfg.ActiveCodesReport, s.jobs.ReportActiveCodes); err != nil {
		logger.Error("Failed to register ReportActiveCodes job", "schedule", cfg.ActiveCodesReport, "error", err)
	}

	logger.Info("Cron jobs registered", "count", len(s.cron.Entries()))
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// JobCount returns the number of registered jobs
func (s *Scheduler) JobCount() int {
	return len(s.cron.Entries())
}
