package employee

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// Admin operations
	CreateEmployee(ctx context.Context, principal user.Principal, req CreateEmployeeRequest) (EmployeeResponse, error)
	ListEmployees(ctx context.Context, principal user.Principal, filter EmployeeFilter) (ListEmployeeResponse, error)
	GetEmployee(ctx context.Context, principal user.Principal, id string) (EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, principal user.Principal, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	DeactivateEmployee(ctx context.Context, principal user.Principal, id string) error
	UpdateLeaveBalance(ctx context.Context, principal user.Principal, id string, req UpdateLeaveBalanceRequest) (EmployeeResponse, error)

	// Self-service
	GetMyProfile(ctx context.Context, principal user.Principal) (EmployeeResponse, error)
	UpdateMyProfile(ctx context.Context, principal user.Principal, req UpdateProfileRequest) (EmployeeResponse, error)
	UploadMyAvatar(ctx context.Context, principal user.Principal, req UploadAvatarRequest) (EmployeeResponse, error)
}
