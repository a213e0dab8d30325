package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type AttendanceServiceImpl struct {
	attendances attendance.AttendanceRepository
	clock       clock.Clock
	loc         *time.Location
	tracer      trace.Tracer
}

// NewAttendanceService builds the attendance ledger. loc defines the
// calendar day a punch belongs to.
func NewAttendanceService(attendanceRepository attendance.AttendanceRepository, clk clock.Clock, loc *time.Location) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		attendances: attendanceRepository,
		clock:       clk,
		loc:         loc,
		tracer:      telemetry.Tracer("attendance"),
	}
}

func (s *AttendanceServiceImpl) start(ctx context.Context, name string, principal user.Principal) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "attendance."+name, trace.WithAttributes(
		attribute.String("user.id", principal.UserID),
		attribute.String("employee.id", principal.EmployeeID),
	))
}

func ipOrNil(ip string) *string {
	if ip == "" {
		return nil
	}
	return &ip
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, principal user.Principal, ip string) (resp attendance.AttendanceResponse, err error) {
	ctx, span := s.start(ctx, "check_in", principal)
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := principal.RequireEmployee(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock.Now()
	today := attendance.Day(now, s.loc)

	existing, err := s.attendances.GetByEmployeeAndDate(ctx, principal.EmployeeID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}

	// Every record is born with a check-in; the unique (employee, date)
	// index settles a concurrent double check-in.
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}

	record, err := s.attendances.Create(ctx, attendance.Attendance{
		EmployeeID:  principal.EmployeeID,
		Date:        today,
		CheckInTime: &now,
		CheckInIP:   ipOrNil(ip),
		Status:      attendance.StatusPresent,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-in: %w", err)
	}

	slog.Info("employee checked in", "employee_id", principal.EmployeeID, "date", today.Format("2006-01-02"))
	return attendance.NewAttendanceResponse(record), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, principal user.Principal, ip string) (resp attendance.AttendanceResponse, err error) {
	ctx, span := s.start(ctx, "check_out", principal)
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := principal.RequireEmployee(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.clock.Now()
	today := attendance.Day(now, s.loc)

	existing, err := s.attendances.GetByEmployeeAndDate(ctx, principal.EmployeeID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}
	if existing == nil || !existing.CheckedIn() {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if existing.CheckedOut() {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	minutes := attendance.WorkMinutes(*existing.CheckInTime, now)
	status := attendance.DeriveStatus(minutes, existing.Status)

	record, err := s.attendances.RecordCheckOut(ctx, existing.ID, now, ipOrNil(ip), minutes, status)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-out: %w", err)
	}

	slog.Info("employee checked out",
		"employee_id", principal.EmployeeID,
		"work_minutes", minutes,
		"status", status,
	)
	return attendance.NewAttendanceResponse(record), nil
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, principal user.Principal) (attendance.TodayResponse, error) {
	if err := principal.RequireEmployee(); err != nil {
		return attendance.TodayResponse{}, err
	}

	today := attendance.Day(s.clock.Now(), s.loc)
	existing, err := s.attendances.GetByEmployeeAndDate(ctx, principal.EmployeeID, today)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}
	if existing == nil {
		return attendance.TodayResponse{}, nil
	}

	resp := attendance.NewAttendanceResponse(*existing)
	return attendance.TodayResponse{
		Attendance: &resp,
		CheckedIn:  existing.CheckedIn(),
		CheckedOut: existing.CheckedOut(),
	}, nil
}

// GetMyHistory implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyHistory(ctx context.Context, principal user.Principal, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := principal.RequireEmployee(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, err := s.attendances.ListByEmployee(ctx, principal.EmployeeID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	return attendance.NewListAttendanceResponse(records), nil
}

// ListAll implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAll(ctx context.Context, principal user.Principal, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, err := s.attendances.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	return attendance.NewListAttendanceResponse(records), nil
}

// Override implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Override(ctx context.Context, principal user.Principal, id string, req attendance.OverrideAttendanceRequest) (resp attendance.AttendanceResponse, err error) {
	ctx, span := s.start(ctx, "override", principal)
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := principal.RequireAdmin(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}

	record, err := s.attendances.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	checkIn, checkOut := req.Times()
	if req.Status != nil {
		record.Status = attendance.Status(*req.Status)
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}
	if checkIn != nil {
		record.CheckInTime = checkIn
	}
	if checkOut != nil {
		record.CheckOutTime = checkOut
	}
	// An explicit status wins over the worked-minute thresholds.
	record.Recompute(req.Status == nil)

	overriddenBy := principal.UserID
	record.OverriddenBy = &overriddenBy
	if req.Reason != nil {
		record.OverrideReason = req.Reason
	}

	updated, err := s.attendances.Update(ctx, record)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to override attendance: %w", err)
	}

	slog.Info("attendance overridden",
		"attendance_id", id,
		"admin_id", principal.UserID,
		"status", updated.Status,
	)
	return attendance.NewAttendanceResponse(updated), nil
}
