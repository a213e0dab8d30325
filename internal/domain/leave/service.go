package leave

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

type LeaveService interface {
	Apply(ctx context.Context, principal user.Principal, req ApplyLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, principal user.Principal, requestID string, req ReviewLeaveRequest) (LeaveRequestResponse, error)
	Reject(ctx context.Context, principal user.Principal, requestID string, req ReviewLeaveRequest) (LeaveRequestResponse, error)
	Get(ctx context.Context, principal user.Principal, requestID string) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, principal user.Principal, filter MyLeaveFilter) (ListLeaveResponse, error)
	ListAll(ctx context.Context, principal user.Principal, filter LeaveFilter) (ListLeaveResponse, error)
}
