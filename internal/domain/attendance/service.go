package attendance

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	CheckIn(ctx context.Context, principal user.Principal, ip string) (AttendanceResponse, error)
	CheckOut(ctx context.Context, principal user.Principal, ip string) (AttendanceResponse, error)

	// GetToday never mutates state.
	GetToday(ctx context.Context, principal user.Principal) (TodayResponse, error)

	GetMyHistory(ctx context.Context, principal user.Principal, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// Admin only
	ListAll(ctx context.Context, principal user.Principal, filter AttendanceFilter) (ListAttendanceResponse, error)
	Override(ctx context.Context, principal user.Principal, id string, req OverrideAttendanceRequest) (AttendanceResponse, error)
	Export(ctx context.Context, principal user.Principal, filter ExportFilter) (ExportFile, error)
}
