package attendance

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/apperror"

// Attendance domain errors
var (
	ErrAlreadyCheckedIn   = apperror.Conflict("you have already checked in today")
	ErrNotCheckedIn       = apperror.Conflict("you have not checked in yet")
	ErrAlreadyCheckedOut  = apperror.Conflict("you have already checked out")
	ErrAttendanceNotFound = apperror.NotFound("attendance record not found")
)
