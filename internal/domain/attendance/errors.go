package attendance

import "errors"

// Attendance domain errors
var (
	// Ingestion errors, always wrapped in an IngestionError
	ErrDelimiterUndetectable = errors.New("field delimiter could not be determined")
	ErrMissingColumns        = errors.New("required columns are missing")
	ErrMalformedInput        = errors.New("input is not valid delimited text")

	// Request errors
	ErrUnknownProfile = errors.New("unknown site profile")
	ErrFileRequired   = errors.New("attendance log file is required")

	// Archive errors
	ErrReportNotFound  = errors.New("archived report not found")
	ErrArchiveDisabled = errors.New("report archive is disabled")
)

// IngestionError aborts a run because the uploaded file cannot be read as
// an access log. Err is one of the ingestion sentinels above.
type IngestionError struct {
	Err    error
	Detail string
}

func (e *IngestionError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}
