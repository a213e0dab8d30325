package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	var fieldErrs validator.ValidationErrors
	fieldErrs.Add("email", "email is required")

	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"fields", fieldErrs, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed"},
		{"validation", apperror.Validation("bad range"), http.StatusBadRequest, "VALIDATION_ERROR", "bad range"},
		{"conflict", fmt.Errorf("check in: %w", apperror.Conflict("already checked in")), http.StatusBadRequest, "CONFLICT", "already checked in"},
		{"balance", apperror.Balance("insufficient leave balance"), http.StatusBadRequest, "INSUFFICIENT_BALANCE", "insufficient leave balance"},
		{"unauthorized", apperror.Unauthorized("invalid token"), http.StatusUnauthorized, "UNAUTHORIZED", "invalid token"},
		{"forbidden", apperror.Forbidden("admin only"), http.StatusForbidden, "FORBIDDEN", "admin only"},
		{"not found", apperror.NotFound("leave request not found"), http.StatusNotFound, "NOT_FOUND", "leave request not found"},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.msg, body.Message)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestHandleError_FieldDetails(t *testing.T) {
	var errs validator.ValidationErrors
	errs.Add("start_date", "start_date must be in YYYY-MM-DD format")

	rec := httptest.NewRecorder()
	HandleError(rec, errs.Err())

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"start_date": "start_date must be in YYYY-MM-DD format"}, body.Error.Details)
}

func TestFile(t *testing.T) {
	rec := httptest.NewRecorder()
	File(rec, "attendance.xlsx", "application/octet-stream", []byte("abc"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="attendance.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "3", rec.Header().Get("Content-Length"))
	assert.Equal(t, "abc", rec.Body.String())
}
