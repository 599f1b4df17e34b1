package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]int{"days": 8})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"days":8}}`, rec.Body.String())
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	body := bytes.NewBufferString("PK\x03\x04workbook")

	Attachment(rec, "attendance_branch office_20240402_083000.xlsx", "application/octet-stream", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "12", rec.Header().Get("Content-Length"))
	assert.Equal(t,
		"attachment; filename*=UTF-8''attendance_branch%20office_20240402_083000.xlsx",
		rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04workbook", rec.Body.String())
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "Archived report not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Success)
	require.NotNil(t, got.Error)
	assert.Equal(t, "NOT_FOUND", got.Error.Code)
	assert.Equal(t, "Archived report not found", got.Error.Message)
}
