package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/file"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type LeaveServiceImpl struct {
	tx            database.Transactor
	requests      leave.LeaveRequestRepository
	employees     employee.EmployeeRepository
	fileService   file.FileService
	notifications notification.Service
	email         email.EmailService
	clock         clock.Clock
	loc           *time.Location
	tracer        trace.Tracer
}

func NewLeaveService(
	tx database.Transactor,
	leaveRequestRepository leave.LeaveRequestRepository,
	employeeRepository employee.EmployeeRepository,
	fileService file.FileService,
	notificationService notification.Service,
	emailService email.EmailService,
	clk clock.Clock,
	loc *time.Location,
) leave.LeaveService {
	if loc == nil {
		loc = time.UTC
	}
	return &LeaveServiceImpl{
		tx:            tx,
		requests:      leaveRequestRepository,
		employees:     employeeRepository,
		fileService:   fileService,
		notifications: notificationService,
		email:         emailService,
		clock:         clk,
		loc:           loc,
		tracer:        telemetry.Tracer("leave"),
	}
}

// today is the current calendar day as midnight UTC, matching DATE columns.
func (l *LeaveServiceImpl) today() time.Time {
	y, m, d := l.clock.Now().In(l.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Apply implements leave.LeaveService.
func (l *LeaveServiceImpl) Apply(ctx context.Context, principal user.Principal, req leave.ApplyLeaveRequest) (resp leave.LeaveRequestResponse, err error) {
	ctx, span := l.tracer.Start(ctx, "leave.apply", trace.WithAttributes(
		attribute.String("employee.id", principal.EmployeeID),
		attribute.String("leave.type", req.Type),
	))
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := principal.RequireEmployee(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, end := req.Dates()
	leaveType := leave.Type(req.Type)

	if start.After(end) {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidRange
	}
	if start.Before(l.today()) {
		return leave.LeaveRequestResponse{}, leave.ErrPastDate
	}

	overlap, err := l.requests.HasOverlap(ctx, principal.EmployeeID, start, end)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if overlap {
		return leave.LeaveRequestResponse{}, leave.ErrOverlappingLeave
	}

	duration := leave.Duration(start, end)
	if leaveType.Deductible() {
		emp, err := l.employees.GetByID(ctx, principal.EmployeeID)
		if err != nil {
			return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
		}
		if emp.LeaveBalance.Get(leaveType) < duration {
			return leave.LeaveRequestResponse{}, leave.ErrInsufficientBalance
		}
	}

	var attachmentURL *string
	if req.Attachment != nil {
		url, err := l.uploadAttachment(ctx, principal.EmployeeID, req.Attachment)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		attachmentURL = &url
	}

	created, err := l.requests.Create(ctx, leave.LeaveRequest{
		EmployeeID:    principal.EmployeeID,
		Type:          leaveType,
		StartDate:     start,
		EndDate:       end,
		Reason:        req.Reason,
		AttachmentURL: attachmentURL,
		Status:        leave.StatusPending,
		Duration:      duration,
	})
	if err != nil {
		if attachmentURL != nil {
			if delErr := l.fileService.DeleteFile(ctx, *attachmentURL); delErr != nil {
				slog.Warn("failed to remove orphaned leave attachment", "url", *attachmentURL, "error", delErr)
			}
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	slog.Info("leave requested",
		"leave_request_id", created.ID,
		"employee_id", created.EmployeeID,
		"type", created.Type,
		"duration", created.Duration,
	)
	return leave.NewLeaveRequestResponse(created), nil
}

func (l *LeaveServiceImpl) uploadAttachment(ctx context.Context, employeeID string, a *leave.Attachment) (string, error) {
	if a.File == nil || a.Size > leave.MaxAttachmentSize {
		return "", leave.ErrInvalidAttachment
	}
	url, err := l.fileService.UploadLeaveAttachment(ctx, employeeID, a.File, a.Filename)
	if err != nil {
		if errors.Is(err, file.ErrUnsupportedType) {
			return "", leave.ErrInvalidAttachment
		}
		return "", fmt.Errorf("failed to upload leave attachment: %w", err)
	}
	return url, nil
}

// Get implements leave.LeaveService. Employees only see their own requests.
func (l *LeaveServiceImpl) Get(ctx context.Context, principal user.Principal, requestID string) (leave.LeaveRequestResponse, error) {
	if !validator.IsValidUUID(requestID) {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	request, err := l.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !principal.IsAdmin() && request.EmployeeID != principal.EmployeeID {
		return leave.LeaveRequestResponse{}, leave.ErrNotOwner
	}
	return leave.NewLeaveRequestResponse(request), nil
}

// ListMine implements leave.LeaveService.
func (l *LeaveServiceImpl) ListMine(ctx context.Context, principal user.Principal, filter leave.MyLeaveFilter) (leave.ListLeaveResponse, error) {
	if err := principal.RequireEmployee(); err != nil {
		return leave.ListLeaveResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}

	requests, err := l.requests.ListByEmployee(ctx, principal.EmployeeID, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leave.NewListLeaveResponse(requests), nil
}

// ListAll implements leave.LeaveService.
func (l *LeaveServiceImpl) ListAll(ctx context.Context, principal user.Principal, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return leave.ListLeaveResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}

	requests, err := l.requests.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leave.NewListLeaveResponse(requests), nil
}
