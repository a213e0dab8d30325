package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// HasOverlap reports whether a non-rejected request of the employee
	// intersects [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	ListByEmployee(ctx context.Context, employeeID string, filter MyLeaveFilter) ([]LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, error)
	// Review moves a pending request to its final status. It returns
	// ErrAlreadyProcessed when the request is no longer pending.
	Review(ctx context.Context, review Review) (LeaveRequest, error)
	// SumApprovedDays counts approved days of leaveType falling inside [from, to].
	SumApprovedDays(ctx context.Context, employeeID string, leaveType Type, from, to time.Time) (int, error)
}
