package leave

import (
	"math"
	"time"
)

type Type string

const (
	TypePaid   Type = "paid"
	TypeSick   Type = "sick"
	TypeUnpaid Type = "unpaid"
)

// Types lists every leave type an employee can request.
var Types = []Type{TypePaid, TypeSick, TypeUnpaid}

func (t Type) Valid() bool {
	return t == TypePaid || t == TypeSick || t == TypeUnpaid
}

// Deductible reports whether approving this type consumes balance.
func (t Type) Deductible() bool {
	return t != TypeUnpaid
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

type LeaveRequest struct {
	ID            string
	EmployeeID    string
	Type          Type
	StartDate     time.Time
	EndDate       time.Time
	Reason        string
	AttachmentURL *string
	Status        Status
	AdminComment  *string
	ReviewedBy    *string
	ReviewedAt    *time.Time
	Duration      int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relationships (for responses)
	EmployeeName *string
	EmployeeCode *string
	ReviewerName *string
}

func (r LeaveRequest) IsPending() bool {
	return r.Status == StatusPending
}

// Duration counts calendar days in [start, end], both ends included.
func Duration(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24
	return int(math.Ceil(days)) + 1
}

// Overlaps reports whether the closed intervals [s1, e1] and [s2, e2] share a day.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

// Review is the outcome recorded when an admin decides a pending request.
type Review struct {
	RequestID  string
	Status     Status
	ReviewerID string
	Comment    *string
	ReviewedAt time.Time
}

// Summary aggregates a list of leave requests.
type Summary struct {
	Total        int            `json:"total"`
	ByStatus     map[Status]int `json:"by_status"`
	ApprovedDays map[Type]int   `json:"approved_days"`
}

func Summarize(requests []LeaveRequest) Summary {
	s := Summary{
		Total:        len(requests),
		ByStatus:     map[Status]int{StatusPending: 0, StatusApproved: 0, StatusRejected: 0},
		ApprovedDays: map[Type]int{TypePaid: 0, TypeSick: 0, TypeUnpaid: 0},
	}
	for _, r := range requests {
		s.ByStatus[r.Status]++
		if r.Status == StatusApproved {
			s.ApprovedDays[r.Type] += r.Duration
		}
	}
	return s
}
