package employee

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/apperror"

var (
	ErrEmployeeNotFound        = apperror.NotFound("employee not found")
	ErrEmployeeCodeExists      = apperror.Conflict("employee code already exists")
	ErrEmployeeAlreadyInactive = apperror.Conflict("employee is already inactive")
	ErrCannotDeactivateSelf    = apperror.Validation("cannot deactivate your own employee record")
	ErrInvalidAvatar           = apperror.Validation("avatar must be a jpg, jpeg or png image up to 5MB")
)
