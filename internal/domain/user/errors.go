package user

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/apperror"

var (
	ErrUserNotFound           = apperror.NotFound("user not found")
	ErrUserEmailExists        = apperror.Conflict("email already registered")
	ErrAdminPrivilegeRequired = apperror.Forbidden("admin privilege required")
	ErrEmployeeProfileMissing = apperror.Forbidden("employee profile required")
	ErrUserInactive           = apperror.Forbidden("account is deactivated")
)
