package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Uploaded file could not be read as an access log
	var ingestionErr *attendance.IngestionError
	if errors.As(err, &ingestionErr) {
		BadRequest(w, ingestionErr.Error(), map[string]string{
			"reason": ingestionReason(ingestionErr),
		})
		return
	}

	switch {
	case errors.Is(err, attendance.ErrUnknownProfile):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrReportNotFound):
		NotFound(w, "Archived report not found")
	case errors.Is(err, attendance.ErrArchiveDisabled):
		NotFound(w, "Report archive is disabled")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func ingestionReason(err *attendance.IngestionError) string {
	switch {
	case errors.Is(err, attendance.ErrDelimiterUndetectable):
		return "delimiter_undetectable"
	case errors.Is(err, attendance.ErrMissingColumns):
		return "missing_columns"
	default:
		return "malformed_input"
	}
}
