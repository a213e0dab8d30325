package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type PayrollServiceImpl struct {
	payrollRepo   payroll.PayrollRepository
	employeeRepo  employee.EmployeeRepository
	leaveRepo     leave.LeaveRequestRepository
	notifications notification.Service
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveRequestRepository,
	notificationService notification.Service,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		payrollRepo:   payrollRepo,
		employeeRepo:  employeeRepo,
		leaveRepo:     leaveRepo,
		notifications: notificationService,
	}
}

// Generate implements payroll.PayrollService. Approved unpaid leave inside
// the month is deducted at base/30 per day.
func (s *PayrollServiceImpl) Generate(ctx context.Context, principal user.Principal, req payroll.GeneratePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if !emp.BaseSalary.IsPositive() {
		return payroll.PayrollRecordResponse{}, payroll.ErrEmployeeHasNoBaseSalary
	}

	from, to := payroll.Period(req.Month, req.Year)
	unpaidDays, err := s.leaveRepo.SumApprovedDays(ctx, emp.ID, leave.TypeUnpaid, from, to)
	if err != nil {
		return payroll.PayrollRecordResponse{}, fmt.Errorf("failed to sum unpaid leave: %w", err)
	}

	allowances, deductions := req.AllowancesOrZero(), req.DeductionsOrZero()
	amounts := payroll.Calculate(emp.BaseSalary, allowances, deductions, unpaidDays)

	record, err := s.payrollRepo.CreatePayrollRecord(ctx, payroll.PayrollRecord{
		EmployeeID:           emp.ID,
		PeriodMonth:          req.Month,
		PeriodYear:           req.Year,
		BaseSalary:           emp.BaseSalary,
		Allowances:           allowances,
		Deductions:           deductions,
		UnpaidLeaveDays:      unpaidDays,
		UnpaidLeaveDeduction: amounts.UnpaidLeaveDeduction,
		GrossSalary:          amounts.Gross,
		NetSalary:            amounts.Net,
		Status:               payroll.PayrollStatusDraft,
		Notes:                req.Notes,
		CreatedBy:            principal.UserID,
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	slog.Info("payroll generated",
		"payroll_id", record.ID,
		"employee_id", emp.ID,
		"period", fmt.Sprintf("%04d-%02d", req.Year, req.Month),
		"net", record.NetSalary.StringFixed(2),
	)
	return payroll.NewPayrollRecordResponse(record), nil
}

// List implements payroll.PayrollService.
func (s *PayrollServiceImpl) List(ctx context.Context, principal user.Principal, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}
	return s.list(ctx, filter)
}

// ListMine implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListMine(ctx context.Context, principal user.Principal, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	if err := principal.RequireEmployee(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}
	employeeID := principal.EmployeeID
	filter.EmployeeID = &employeeID
	return s.list(ctx, filter)
}

func (s *PayrollServiceImpl) list(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	records, total, err := s.payrollRepo.ListPayrollRecords(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, fmt.Errorf("failed to list payroll records: %w", err)
	}
	return payroll.NewListPayrollResponse(records, total, filter), nil
}

// Get implements payroll.PayrollService. Employees may read their own payslips.
func (s *PayrollServiceImpl) Get(ctx context.Context, principal user.Principal, id string) (payroll.PayrollRecordResponse, error) {
	if !validator.IsValidUUID(id) {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordNotFound
	}
	record, err := s.payrollRepo.GetPayrollRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if !principal.IsAdmin() && record.EmployeeID != principal.EmployeeID {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordNotFound
	}
	return payroll.NewPayrollRecordResponse(record), nil
}

// MarkPaid implements payroll.PayrollService.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, principal user.Principal, id string) (payroll.PayrollRecordResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordNotFound
	}

	record, err := s.payrollRepo.MarkPaid(ctx, id, principal.UserID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	slog.Info("payroll paid", "payroll_id", id, "admin_id", principal.UserID)
	s.notifyPaid(ctx, principal, record)
	return payroll.NewPayrollRecordResponse(record), nil
}

func (s *PayrollServiceImpl) notifyPaid(ctx context.Context, principal user.Principal, record payroll.PayrollRecord) {
	emp, err := s.employeeRepo.GetByID(ctx, record.EmployeeID)
	if err != nil {
		slog.Error("failed to load employee for payroll notification", "employee_id", record.EmployeeID, "error", err)
		return
	}

	senderID := principal.UserID
	err = s.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: emp.UserID,
		SenderID:    &senderID,
		Type:        notification.TypePayrollPaid,
		Title:       "Salary paid",
		Message:     fmt.Sprintf("Your salary for %04d-%02d has been paid: %s", record.PeriodYear, record.PeriodMonth, record.NetSalary.StringFixed(2)),
		Data: map[string]interface{}{
			"payroll_id": record.ID,
			"net_salary": record.NetSalary.StringFixed(2),
		},
	})
	if err != nil {
		slog.Error("failed to queue payroll notification", "payroll_id", record.ID, "error", err)
	}
}

// Delete implements payroll.PayrollService.
func (s *PayrollServiceImpl) Delete(ctx context.Context, principal user.Principal, id string) error {
	if err := principal.RequireAdmin(); err != nil {
		return err
	}
	if !validator.IsValidUUID(id) {
		return payroll.ErrPayrollRecordNotFound
	}
	if err := s.payrollRepo.DeleteDraft(ctx, id); err != nil {
		return err
	}
	slog.Info("payroll draft deleted", "payroll_id", id, "admin_id", principal.UserID)
	return nil
}
