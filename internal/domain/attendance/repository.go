package attendance

import (
	"context"
	"time"
)

// ReportRepository archives computed report summaries.
type ReportRepository interface {
	// EnsureSchema creates the archive tables if they do not exist
	EnsureSchema(ctx context.Context) error

	// Save stores the summary of a report and returns the archived record
	Save(ctx context.Context, report Report) (ArchivedReport, error)

	// GetByID retrieves an archived summary, ErrReportNotFound if absent
	GetByID(ctx context.Context, id string) (ArchivedReport, error)

	// DeleteCreatedBefore removes archived runs older than cutoff
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
