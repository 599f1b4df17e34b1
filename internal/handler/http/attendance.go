package http

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipartOverhead leaves room for form fields and boundaries on top of the
// file itself.
const multipartOverhead = 1 << 20

type AttendanceHandler interface {
	Analyze(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	GetReport(w http.ResponseWriter, r *http.Request)
	ListProfiles(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Analyze implements AttendanceHandler.
func (h *attendanceHandlerImpl) Analyze(w http.ResponseWriter, r *http.Request) {
	req, file, ok := h.parseAnalyzeRequest(w, r)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	result, err := h.attendanceService.Analyze(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements AttendanceHandler.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	req, file, ok := h.parseAnalyzeRequest(w, r)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	buf, filename, err := h.attendanceService.ExportWorkbook(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, filename, xlsxContentType, buf)
}

// GetReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.attendanceService.GetArchivedReport(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

// ListProfiles implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListProfiles(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.attendanceService.ListProfiles(r.Context()))
}

// parseAnalyzeRequest reads the multipart upload. When ok is false a
// response has already been written. Optional text fields are only set when
// the client sent them, so an empty value can override a profile default.
func (h *attendanceHandlerImpl) parseAnalyzeRequest(w http.ResponseWriter, r *http.Request) (attendance.AnalyzeRequest, multipart.File, bool) {
	var req attendance.AnalyzeRequest

	r.Body = http.MaxBytesReader(w, r.Body, attendance.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(attendance.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.BadRequest(w, "Attendance log must not exceed 32MB", nil)
			return req, nil, false
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return req, nil, false
	}

	req.Profile = r.FormValue("profile")
	req.TotalEmployees = r.FormValue("total_employees")
	req.ExcludeUsers = optionalFormValue(r, "exclude_users")
	req.LowRequirementUsers = optionalFormValue(r, "low_requirement_users")

	// Get file from form; a missing file is reported by request validation
	file, fileHeader, err := r.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return req, nil, false
	}
	if err == nil {
		req.File = file
		req.FileHeader = fileHeader
	}

	return req, file, true
}

func optionalFormValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
