package employee

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// LeaveBalance maps a leave type to the days remaining. Values may be
// negative after concurrent approvals.
type LeaveBalance map[leave.Type]int

func (b LeaveBalance) Get(t leave.Type) int {
	return b[t]
}

// DefaultLeaveBalance is granted to new employees.
func DefaultLeaveBalance(paidDays, sickDays int) LeaveBalance {
	return LeaveBalance{
		leave.TypePaid:   paidDays,
		leave.TypeSick:   sickDays,
		leave.TypeUnpaid: 0,
	}
}

type Employee struct {
	ID           string
	UserID       string
	EmployeeCode string
	FullName     string
	PhoneNumber  *string
	Address      *string
	Department   *string
	Position     *string
	HireDate     *time.Time
	BaseSalary   decimal.Decimal
	AvatarURL    *string
	LeaveBalance LeaveBalance
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	Email string
	Role  string
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}
