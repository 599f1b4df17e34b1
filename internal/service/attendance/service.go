package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/metrics"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/validator"
)

// unresolvedProfile labels metrics for requests rejected before a profile
// was resolved, keeping label values bounded.
const unresolvedProfile = "unresolved"

type AttendanceServiceImpl struct {
	catalog attendance.ProfileCatalog
	// reportRepo is nil when archiving is disabled.
	reportRepo attendance.ReportRepository
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewAttendanceService(catalog attendance.ProfileCatalog, reportRepo attendance.ReportRepository, m *metrics.Metrics) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		catalog:    catalog,
		reportRepo: reportRepo,
		metrics:    m,
		now:        time.Now,
	}
}

// Analyze implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Analyze(ctx context.Context, req attendance.AnalyzeRequest) (attendance.AnalysisResult, error) {
	report, err := s.run(req)
	if err != nil {
		return attendance.AnalysisResult{}, err
	}

	result := attendance.AnalysisResult{
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Report:      report,
	}

	if s.reportRepo != nil {
		archived, err := s.reportRepo.Save(ctx, report)
		if err != nil {
			s.metrics.ArchiveFailed()
			slog.Error("Failed to archive attendance report", "profile", report.Ingestion.Profile, "error", err)
		} else {
			result.ReportID = &archived.ID
			slog.Info("Archived attendance report", "report_id", archived.ID)
		}
	}

	return result, nil
}

// ExportWorkbook implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportWorkbook(ctx context.Context, req attendance.AnalyzeRequest) (*bytes.Buffer, string, error) {
	report, err := s.run(req)
	if err != nil {
		return nil, "", err
	}

	buf, err := renderWorkbook(report)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render attendance workbook: %w", err)
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", report.Ingestion.Profile, s.now().UTC().Format("20060102_150405"))
	return buf, filename, nil
}

// GetArchivedReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetArchivedReport(ctx context.Context, id string) (attendance.ArchivedReport, error) {
	if s.reportRepo == nil {
		return attendance.ArchivedReport{}, attendance.ErrArchiveDisabled
	}
	if !validator.IsValidUUID(id) {
		return attendance.ArchivedReport{}, validator.ValidationErrors{
			{Field: "id", Message: "id must be a valid UUID"},
		}
	}

	archived, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrReportNotFound) {
			return attendance.ArchivedReport{}, err
		}
		return attendance.ArchivedReport{}, fmt.Errorf("failed to get archived report: %w", err)
	}
	return archived, nil
}

// ListProfiles implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListProfiles(ctx context.Context) []attendance.ProfileResponse {
	profiles := s.catalog.List()
	responses := make([]attendance.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		responses = append(responses, attendance.NewProfileResponse(p, p.Name == s.catalog.DefaultName))
	}
	return responses
}

// run validates the request, resolves its profile and policy, and runs the
// pipeline once.
func (s *AttendanceServiceImpl) run(req attendance.AnalyzeRequest) (attendance.Report, error) {
	if err := req.Validate(); err != nil {
		s.metrics.ObserveAnalysis(unresolvedProfile, metrics.OutcomeInvalid, 0)
		return attendance.Report{}, err
	}

	profile, err := s.catalog.Lookup(req.Profile)
	if err != nil {
		s.metrics.ObserveAnalysis(unresolvedProfile, metrics.OutcomeInvalid, 0)
		return attendance.Report{}, validator.ValidationErrors{
			{Field: "profile", Message: err.Error()},
		}
	}
	policy := profile.Policy(req.ExcludeUsers, req.LowRequirementUsers, req.TotalEmployees)

	slog.Info("Starting attendance analysis",
		"profile", profile.Name,
		"excluded_users", len(policy.ExcludedUsers),
		"low_requirement_users", len(policy.LowRequirementUsers),
		"total_employees_set", policy.TotalEmployees != nil,
	)

	start := s.now()
	report, err := NewPipeline(profile, policy).Run(req.File)
	elapsed := s.now().Sub(start)
	if err != nil {
		var ingestionErr *attendance.IngestionError
		if errors.As(err, &ingestionErr) {
			s.metrics.ObserveAnalysis(profile.Name, metrics.OutcomeIngestionError, elapsed)
			slog.Warn("Rejected attendance log", "profile", profile.Name, "error", err)
			return attendance.Report{}, err
		}
		s.metrics.ObserveAnalysis(profile.Name, metrics.OutcomeError, elapsed)
		return attendance.Report{}, fmt.Errorf("failed to analyze attendance log: %w", err)
	}

	ing := report.Ingestion
	s.metrics.ObserveAnalysis(profile.Name, metrics.OutcomeSuccess, elapsed)
	s.metrics.AddRows(ing.RowsRead, ing.EntryRows, ing.InvalidTimestampRows)

	if ing.InvalidTimestampRows > 0 {
		slog.Warn("Skipped rows with unparseable timestamps",
			"profile", profile.Name,
			"column", ing.TimestampColumn,
			"rows", ing.InvalidTimestampRows,
		)
	}
	slog.Info("Finished attendance analysis",
		"profile", profile.Name,
		"delimiter", ing.Delimiter,
		"entry_rule", ing.EntryRule,
		"rows_read", ing.RowsRead,
		"entry_rows", ing.EntryRows,
		"daily_presence_rows", ing.DailyPresenceRows,
		"users", len(report.Users),
		"duration_ms", elapsed.Milliseconds(),
	)

	return report, nil
}
