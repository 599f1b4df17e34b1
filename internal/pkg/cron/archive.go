package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/metrics"
)

const purgeJobName = "purge_expired_reports"

// ArchiveJobs keeps the report archive within its retention window.
type ArchiveJobs struct {
	reportRepo attendance.ReportRepository
	retention  time.Duration
	interval   time.Duration
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewArchiveJobs(reportRepo attendance.ReportRepository, retention, interval time.Duration, m *metrics.Metrics) *ArchiveJobs {
	return &ArchiveJobs{
		reportRepo: reportRepo,
		retention:  retention,
		interval:   interval,
		metrics:    m,
		now:        time.Now,
	}
}

// RegisterJobs adds the purge job. A zero retention keeps runs forever and
// registers nothing.
func (j *ArchiveJobs) RegisterJobs(scheduler *Scheduler) {
	if j.retention <= 0 || j.interval <= 0 {
		return
	}
	scheduler.AddJob(purgeJobName, j.interval, j.PurgeExpiredReports)
}

func (j *ArchiveJobs) PurgeExpiredReports(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)

	deleted, err := j.reportRepo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge reports created before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	j.metrics.ArchivePurged(deleted)

	if deleted > 0 {
		slog.Info("Cron: purged expired archived reports",
			"deleted", deleted,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
	return nil
}
