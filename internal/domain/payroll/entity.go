package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysPerMonth is the divisor for the daily rate used by unpaid leave deductions.
const DaysPerMonth = 30

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft PayrollStatus = "draft"
	PayrollStatusPaid  PayrollStatus = "paid"
)

func (s PayrollStatus) Valid() bool {
	return s == PayrollStatusDraft || s == PayrollStatusPaid
}

// PayrollRecord is the payslip of one employee for one month.
type PayrollRecord struct {
	ID                   string
	EmployeeID           string
	PeriodMonth          int
	PeriodYear           int
	BaseSalary           decimal.Decimal
	Allowances           decimal.Decimal
	Deductions           decimal.Decimal
	UnpaidLeaveDays      int
	UnpaidLeaveDeduction decimal.Decimal
	GrossSalary          decimal.Decimal
	NetSalary            decimal.Decimal
	Status               PayrollStatus
	PaidAt               *time.Time
	PaidBy               *string
	Notes                *string
	CreatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

func (p PayrollRecord) IsPaid() bool {
	return p.Status == PayrollStatusPaid
}

// Amounts holds the computed figures of a payslip.
type Amounts struct {
	Gross                decimal.Decimal
	UnpaidLeaveDeduction decimal.Decimal
	Net                  decimal.Decimal
}

// Calculate computes gross and net pay. Net pay never drops below zero.
func Calculate(base, allowances, deductions decimal.Decimal, unpaidLeaveDays int) Amounts {
	gross := base.Add(allowances)
	dailyRate := base.Div(decimal.NewFromInt(DaysPerMonth))
	unpaid := dailyRate.Mul(decimal.NewFromInt(int64(unpaidLeaveDays))).Round(2)

	net := gross.Sub(deductions).Sub(unpaid)
	if net.IsNegative() {
		net = decimal.Zero
	}

	return Amounts{
		Gross:                gross,
		UnpaidLeaveDeduction: unpaid,
		Net:                  net,
	}
}

// Period returns the first and last calendar day of month/year.
func Period(month, year int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}
