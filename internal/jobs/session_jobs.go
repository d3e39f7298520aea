package jobs

import (
	"context"

	"groupkeeper-backend/internal/logger"
)

// CheckSession probes the platform session. Failures are logged by the
// session service and never stop the scheduler.
func (jr *JobRunner) CheckSession() {
	jr.runWithRecovery("CheckSession", func(ctx context.Context) {
		_, _ = jr.services.Session.Check(ctx)
	})
}

// ReportActiveCodes publishes the number of unused codes.
func (jr *JobRunner) ReportActiveCodes() {
	jr.runWithRecovery("ReportActiveCodes", func(ctx context.Context) {
		codes, err := jr.services.Keys.ListActive(ctx)
		if err != nil {
			logger.Error("Failed to list active codes", "error", err)
			return
		}
		jr.metrics.SetActiveCodes(len(codes))
		logger.Info("Active invite codes", "count", len(codes))
	})
}
