package leave

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/apperror"

var (
	ErrLeaveRequestNotFound = apperror.NotFound("leave request not found")
	ErrInvalidRange         = apperror.Validation("start date must not be after end date")
	ErrPastDate             = apperror.Validation("start date cannot be in the past")
	ErrOverlappingLeave     = apperror.Conflict("leave request overlaps an existing request")
	ErrInsufficientBalance  = apperror.Balance("insufficient leave balance")
	ErrAlreadyProcessed     = apperror.Conflict("leave request has already been processed")
	ErrNotOwner             = apperror.Forbidden("leave request belongs to another employee")
	ErrInvalidAttachment    = apperror.Validation("attachment must be a pdf, jpg, jpeg or png file up to 5MB")
)
