package payroll

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/apperror"

var (
	ErrPayrollRecordNotFound      = apperror.NotFound("payroll record not found")
	ErrPayrollRecordAlreadyExists = apperror.Conflict("payroll record already exists for this period")
	ErrPayrollRecordAlreadyPaid   = apperror.Conflict("payroll record already paid, cannot modify")
	ErrCannotDeletePaidRecord     = apperror.Conflict("cannot delete paid payroll record")
	ErrEmployeeHasNoBaseSalary    = apperror.Validation("employee has no base salary configured")
)
