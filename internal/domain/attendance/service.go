package attendance

import (
	"bytes"
	"context"
)

// AttendanceService defines the attendance analysis operations
type AttendanceService interface {
	// Analyze runs the attendance pipeline over one uploaded access log
	Analyze(ctx context.Context, req AnalyzeRequest) (AnalysisResult, error)

	// ExportWorkbook analyzes the log and renders the result as an XLSX workbook
	ExportWorkbook(ctx context.Context, req AnalyzeRequest) (*bytes.Buffer, string, error)

	// GetArchivedReport retrieves a previously archived summary
	GetArchivedReport(ctx context.Context, id string) (ArchivedReport, error)

	// ListProfiles returns the configured site profiles
	ListProfiles(ctx context.Context) []ProfileResponse
}
