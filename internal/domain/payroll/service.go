package payroll

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

type PayrollService interface {
	// Admin
	Generate(ctx context.Context, principal user.Principal, req GeneratePayrollRequest) (PayrollRecordResponse, error)
	List(ctx context.Context, principal user.Principal, filter PayrollFilter) (ListPayrollResponse, error)
	Get(ctx context.Context, principal user.Principal, id string) (PayrollRecordResponse, error)
	MarkPaid(ctx context.Context, principal user.Principal, id string) (PayrollRecordResponse, error)
	Delete(ctx context.Context, principal user.Principal, id string) error

	// Self-service
	ListMine(ctx context.Context, principal user.Principal, filter PayrollFilter) (ListPayrollResponse, error)
}
