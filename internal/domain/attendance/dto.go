package attendance

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/validator"
)

// MaxUploadSize caps the size of an uploaded access log.
const MaxUploadSize = 32 << 20

// ========================================
// ANALYSIS DTOs
// ========================================

// AnalyzeRequest carries one uploaded log plus the run configuration.
// ExcludeUsers and LowRequirementUsers are nil when the caller left them out.
type AnalyzeRequest struct {
	Profile             string                `json:"profile"`
	ExcludeUsers        *string               `json:"exclude_users,omitempty"`
	LowRequirementUsers *string               `json:"low_requirement_users,omitempty"`
	TotalEmployees      string                `json:"total_employees"`
	File                io.Reader             `json:"-"`
	FileHeader          *multipart.FileHeader `json:"-"`
}

func (r *AnalyzeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: ErrFileRequired.Error(),
		})
	}

	if r.FileHeader != nil {
		if !validator.HasExtension(r.FileHeader.Filename, ".csv", ".txt") {
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: "invalid file type: only csv, txt allowed",
			})
		} else if r.FileHeader.Size > MaxUploadSize {
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: "attendance log must not exceed 32MB",
			})
		}
	}

	if !validator.IsEmpty(r.Profile) && strings.ContainsAny(strings.TrimSpace(r.Profile), " \t/") {
		errs = append(errs, validator.ValidationError{
			Field:   "profile",
			Message: "profile must be a single name",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// AnalysisResult wraps a report with run metadata. ReportID is set only
// when the report was archived.
type AnalysisResult struct {
	ReportID    *string `json:"report_id,omitempty"`
	GeneratedAt string  `json:"generated_at"`
	Report      Report  `json:"report"`
}

// ========================================
// PROFILE DTOs
// ========================================

type ProfileResponse struct {
	Name                       string   `json:"name"`
	Description                string   `json:"description,omitempty"`
	Delimiter                  string   `json:"delimiter"`
	TimestampColumn            string   `json:"timestamp_column"`
	MandatoryWeekdays          []string `json:"mandatory_weekdays"`
	NonMandatoryWeekdays       []string `json:"non_mandatory_weekdays"`
	DefaultTotalEmployees      *int     `json:"default_total_employees"`
	DefaultExcludedUsers       []string `json:"default_excluded_users"`
	DefaultLowRequirementUsers []string `json:"default_low_requirement_users"`
	MonthlyThresholdStandard   int      `json:"monthly_threshold_standard"`
	MonthlyThresholdLow        int      `json:"monthly_threshold_low"`
	IsDefault                  bool     `json:"is_default"`
}

func NewProfileResponse(p SiteProfile, isDefault bool) ProfileResponse {
	delimiter := "auto"
	if p.Delimiter != 0 {
		delimiter = string(p.Delimiter)
	}
	policy := p.Policy(nil, nil, "")
	return ProfileResponse{
		Name:                       p.Name,
		Description:                p.Description,
		Delimiter:                  delimiter,
		TimestampColumn:            p.TimestampColumn,
		MandatoryWeekdays:          p.MandatoryWeekdays.Names(),
		NonMandatoryWeekdays:       p.NonMandatoryWeekdays.Names(),
		DefaultTotalEmployees:      p.DefaultTotalEmployees,
		DefaultExcludedUsers:       policy.ExcludedUsers.Sorted(),
		DefaultLowRequirementUsers: policy.LowRequirementUsers.Sorted(),
		MonthlyThresholdStandard:   policy.MonthlyThresholdStandard,
		MonthlyThresholdLow:        policy.MonthlyThresholdLow,
		IsDefault:                  isDefault,
	}
}

// ========================================
// ARCHIVE DTOs
// ========================================

// ArchivedReport is a stored summary. Uploaded rows are never archived,
// only the computed statistics and per-user table.
type ArchivedReport struct {
	ID         string           `json:"id"`
	CreatedAt  string           `json:"created_at"`
	Ingestion  IngestionSummary `json:"ingestion"`
	Statistics Statistics       `json:"statistics"`
	Users      []UserSummary    `json:"users"`
}
