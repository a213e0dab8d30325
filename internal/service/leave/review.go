package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Approve implements leave.LeaveService. The balance is not re-checked, so
// two pending requests approved back to back may overdraw it.
func (l *LeaveServiceImpl) Approve(ctx context.Context, principal user.Principal, requestID string, req leave.ReviewLeaveRequest) (leave.LeaveRequestResponse, error) {
	return l.review(ctx, principal, requestID, leave.StatusApproved, req)
}

// Reject implements leave.LeaveService.
func (l *LeaveServiceImpl) Reject(ctx context.Context, principal user.Principal, requestID string, req leave.ReviewLeaveRequest) (leave.LeaveRequestResponse, error) {
	return l.review(ctx, principal, requestID, leave.StatusRejected, req)
}

func (l *LeaveServiceImpl) review(ctx context.Context, principal user.Principal, requestID string, status leave.Status, req leave.ReviewLeaveRequest) (resp leave.LeaveRequestResponse, err error) {
	ctx, span := l.tracer.Start(ctx, "leave.review", trace.WithAttributes(
		attribute.String("leave.request_id", requestID),
		attribute.String("leave.status", string(status)),
	))
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := principal.RequireAdmin(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !validator.IsValidUUID(requestID) {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}

	if _, err := l.requests.GetByID(ctx, requestID); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var reviewed leave.LeaveRequest
	err = l.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		reviewed, err = l.requests.Review(ctx, leave.Review{
			RequestID:  requestID,
			Status:     status,
			ReviewerID: principal.UserID,
			Comment:    req.Comment,
			ReviewedAt: l.clock.Now(),
		})
		if err != nil {
			return err
		}

		if status == leave.StatusApproved && reviewed.Type.Deductible() {
			if err := l.employees.AdjustLeaveBalance(ctx, reviewed.EmployeeID, reviewed.Type, -reviewed.Duration); err != nil {
				return fmt.Errorf("failed to deduct leave balance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request reviewed",
		"leave_request_id", reviewed.ID,
		"employee_id", reviewed.EmployeeID,
		"status", reviewed.Status,
		"reviewer_id", principal.UserID,
	)

	l.notifyDecision(ctx, principal, reviewed)
	return leave.NewLeaveRequestResponse(reviewed), nil
}

// notifyDecision tells the employee about the outcome. Failures are logged
// and never undo the review.
func (l *LeaveServiceImpl) notifyDecision(ctx context.Context, principal user.Principal, r leave.LeaveRequest) {
	emp, err := l.employees.GetByID(ctx, r.EmployeeID)
	if err != nil {
		slog.Error("failed to load employee for leave notification", "employee_id", r.EmployeeID, "error", err)
		return
	}

	notifType := notification.TypeLeaveApproved
	if r.Status == leave.StatusRejected {
		notifType = notification.TypeLeaveRejected
	}
	start := r.StartDate.Format(validator.DateLayout)
	end := r.EndDate.Format(validator.DateLayout)

	senderID := principal.UserID
	err = l.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: emp.UserID,
		SenderID:    &senderID,
		Type:        notifType,
		Title:       fmt.Sprintf("Leave request %s", r.Status),
		Message:     fmt.Sprintf("Your %s leave from %s to %s was %s", r.Type, start, end, r.Status),
		Data: map[string]interface{}{
			"leave_request_id": r.ID,
			"status":           string(r.Status),
		},
	})
	if err != nil {
		slog.Error("failed to queue leave notification", "leave_request_id", r.ID, "error", err)
	}

	comment := ""
	if r.AdminComment != nil {
		comment = *r.AdminComment
	}
	data := email.LeaveDecisionData{
		EmployeeName: emp.FullName,
		LeaveType:    string(r.Type),
		StartDate:    start,
		EndDate:      end,
		Duration:     r.Duration,
		Status:       string(r.Status),
		Comment:      comment,
	}
	// SMTP retries back off for seconds; the review has already committed.
	go func(to string) {
		if err := l.email.SendLeaveDecision(to, data); err != nil {
			slog.Error("failed to send leave decision email", "leave_request_id", r.ID, "error", err)
		}
	}(emp.Email)
}
