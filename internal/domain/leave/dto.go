package leave

import (
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

const MaxAttachmentSize = 5 << 20

// Attachment is an optional file uploaded with a leave application.
type Attachment struct {
	File     io.Reader
	Filename string
	Size     int64
}

type ApplyLeaveRequest struct {
	Type      string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`

	Attachment *Attachment `json:"-"`

	start time.Time
	end   time.Time
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Type) {
		errs.Add("leave_type", "leave_type is required")
	} else if !Type(r.Type).Valid() {
		errs.Add("leave_type", "leave_type must be one of paid, sick, unpaid")
	}

	if d, ok := validator.IsValidDate(r.StartDate); !ok {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	} else {
		r.start = d
	}
	if d, ok := validator.IsValidDate(r.EndDate); !ok {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	} else {
		r.end = d
	}

	r.Reason = strings.TrimSpace(r.Reason)
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

// Dates returns the parsed start and end dates. Valid after Validate.
func (r *ApplyLeaveRequest) Dates() (time.Time, time.Time) {
	return r.start, r.end
}

type ReviewLeaveRequest struct {
	Comment *string `json:"admin_comment,omitempty"`
}

func (r *ReviewLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Comment != nil && len(*r.Comment) > 1000 {
		errs.Add("admin_comment", "admin_comment must not exceed 1000 characters")
	}

	return errs.Err()
}

// MyLeaveFilter filters an employee's own requests.
type MyLeaveFilter struct {
	Status string
	Year   int
}

func (f *MyLeaveFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be one of pending, approved, rejected")
	}
	if f.Year != 0 && (f.Year < 1970 || f.Year > 9999) {
		errs.Add("year", "year is out of range")
	}

	return errs.Err()
}

// LeaveFilter filters requests across employees.
type LeaveFilter struct {
	Status     string
	EmployeeID string
	StartDate  string
	EndDate    string

	From *time.Time
	To   *time.Time
}

func (f *LeaveFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be one of pending, approved, rejected")
	}
	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employeeId", "employeeId must be a valid UUID")
	}
	if f.StartDate != "" {
		if d, ok := validator.IsValidDate(f.StartDate); ok {
			f.From = &d
		} else {
			errs.Add("startDate", "startDate must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != "" {
		if d, ok := validator.IsValidDate(f.EndDate); ok {
			f.To = &d
		} else {
			errs.Add("endDate", "endDate must be in YYYY-MM-DD format")
		}
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		errs.Add("startDate", "startDate must not be after endDate")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  *string `json:"employee_name,omitempty"`
	EmployeeCode  *string `json:"employee_code,omitempty"`
	Type          string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Duration      int     `json:"duration"`
	Reason        string  `json:"reason"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
	Status        string  `json:"status"`
	AdminComment  *string `json:"admin_comment,omitempty"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewerName  *string `json:"reviewer_name,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		EmployeeCode:  r.EmployeeCode,
		Type:          string(r.Type),
		StartDate:     r.StartDate.Format(validator.DateLayout),
		EndDate:       r.EndDate.Format(validator.DateLayout),
		Duration:      r.Duration,
		Reason:        r.Reason,
		AttachmentURL: r.AttachmentURL,
		Status:        string(r.Status),
		AdminComment:  r.AdminComment,
		ReviewedBy:    r.ReviewedBy,
		ReviewerName:  r.ReviewerName,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.ReviewedAt != nil {
		reviewedAt := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewedAt
	}
	return resp
}

type ListLeaveResponse struct {
	Requests []LeaveRequestResponse `json:"requests"`
	Summary  Summary                `json:"summary"`
}

func NewListLeaveResponse(requests []LeaveRequest) ListLeaveResponse {
	items := make([]LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		items = append(items, NewLeaveRequestResponse(r))
	}
	return ListLeaveResponse{
		Requests: items,
		Summary:  Summarize(requests),
	}
}
