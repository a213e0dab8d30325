package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Conflicts and balance
// failures are reported as 400 with their own codes.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case apperror.KindConflict:
		writeError(w, http.StatusBadRequest, "CONFLICT", err.Error(), nil)
	case apperror.KindBalance:
		writeError(w, http.StatusBadRequest, "INSUFFICIENT_BALANCE", err.Error(), nil)
	case apperror.KindUnauthorized:
		Unauthorized(w, err.Error())
	case apperror.KindForbidden:
		Forbidden(w, err.Error())
	case apperror.KindNotFound:
		NotFound(w, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
