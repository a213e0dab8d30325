package employee

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
)

type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	// Update writes the editable profile columns of e.
	Update(ctx context.Context, e Employee) error
	UpdateAvatar(ctx context.Context, id string, avatarURL string) error
	SetStatus(ctx context.Context, id string, status Status) error
	SetLeaveBalance(ctx context.Context, id string, balance LeaveBalance) error
	// AdjustLeaveBalance adds delta to one balance entry atomically.
	AdjustLeaveBalance(ctx context.Context, id string, leaveType leave.Type, delta int) error
	NextEmployeeCode(ctx context.Context) (string, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
