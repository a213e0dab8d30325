package payroll

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type GeneratePayrollRequest struct {
	EmployeeID string           `json:"employee_id"`
	Month      int              `json:"month"`
	Year       int              `json:"year"`
	Allowances *decimal.Decimal `json:"allowances,omitempty"`
	Deductions *decimal.Decimal `json:"deductions,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if r.Month < 1 || r.Month > 12 {
		errs.Add("month", "month must be between 1 and 12")
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs.Add("year", "year must be between 2000 and 2100")
	}
	if r.Allowances != nil && r.Allowances.IsNegative() {
		errs.Add("allowances", "allowances must be non-negative")
	}
	if r.Deductions != nil && r.Deductions.IsNegative() {
		errs.Add("deductions", "deductions must be non-negative")
	}
	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs.Add("notes", "notes must not exceed 1000 characters")
	}

	return errs.Err()
}

// AllowancesOrZero returns the requested allowances, defaulting to zero.
func (r GeneratePayrollRequest) AllowancesOrZero() decimal.Decimal {
	if r.Allowances == nil {
		return decimal.Zero
	}
	return *r.Allowances
}

// DeductionsOrZero returns the requested deductions, defaulting to zero.
func (r GeneratePayrollRequest) DeductionsOrZero() decimal.Decimal {
	if r.Deductions == nil {
		return decimal.Zero
	}
	return *r.Deductions
}

type PayrollFilter struct {
	Month      *int
	Year       *int
	EmployeeID *string
	Status     *string
	Page       int
	Limit      int
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if f.Year != nil && (*f.Year < 2000 || *f.Year > 2100) {
		errs.Add("year", "year must be between 2000 and 2100")
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.Status != nil && !PayrollStatus(*f.Status).Valid() {
		errs.Add("status", "status must be one of draft, paid")
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	return errs.Err()
}

func (f PayrollFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type PayrollRecordResponse struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employee_id"`
	EmployeeName         *string         `json:"employee_name,omitempty"`
	EmployeeCode         *string         `json:"employee_code,omitempty"`
	PeriodMonth          int             `json:"period_month"`
	PeriodYear           int             `json:"period_year"`
	BaseSalary           decimal.Decimal `json:"base_salary"`
	Allowances           decimal.Decimal `json:"allowances"`
	Deductions           decimal.Decimal `json:"deductions"`
	UnpaidLeaveDays      int             `json:"unpaid_leave_days"`
	UnpaidLeaveDeduction decimal.Decimal `json:"unpaid_leave_deduction"`
	GrossSalary          decimal.Decimal `json:"gross_salary"`
	NetSalary            decimal.Decimal `json:"net_salary"`
	Status               string          `json:"status"`
	PaidAt               *string         `json:"paid_at,omitempty"`
	PaidBy               *string         `json:"paid_by,omitempty"`
	Notes                *string         `json:"notes,omitempty"`
	CreatedAt            string          `json:"created_at"`
}

func NewPayrollRecordResponse(p PayrollRecord) PayrollRecordResponse {
	resp := PayrollRecordResponse{
		ID:                   p.ID,
		EmployeeID:           p.EmployeeID,
		EmployeeName:         p.EmployeeName,
		EmployeeCode:         p.EmployeeCode,
		PeriodMonth:          p.PeriodMonth,
		PeriodYear:           p.PeriodYear,
		BaseSalary:           p.BaseSalary,
		Allowances:           p.Allowances,
		Deductions:           p.Deductions,
		UnpaidLeaveDays:      p.UnpaidLeaveDays,
		UnpaidLeaveDeduction: p.UnpaidLeaveDeduction,
		GrossSalary:          p.GrossSalary,
		NetSalary:            p.NetSalary,
		Status:               string(p.Status),
		PaidBy:               p.PaidBy,
		Notes:                p.Notes,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
	}
	if p.PaidAt != nil {
		paidAt := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}

type ListPayrollResponse struct {
	Records    []PayrollRecordResponse `json:"records"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
	TotalNet   decimal.Decimal         `json:"total_net"`
}

func NewListPayrollResponse(records []PayrollRecord, total int64, filter PayrollFilter) ListPayrollResponse {
	items := make([]PayrollRecordResponse, 0, len(records))
	totalNet := decimal.Zero
	for _, r := range records {
		items = append(items, NewPayrollRecordResponse(r))
		totalNet = totalNet.Add(r.NetSalary)
	}

	totalPages := 0
	if filter.Limit > 0 {
		totalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}

	return ListPayrollResponse{
		Records:    items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		TotalNet:   totalNet,
	}
}
