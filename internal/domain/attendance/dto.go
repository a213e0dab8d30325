package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

const (
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 366
	MaxExportDays       = 366
)

type MyAttendanceFilter struct {
	StartDate string
	EndDate   string
	Limit     int

	From *time.Time
	To   *time.Time
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	parseRange(&errs, f.StartDate, f.EndDate, &f.From, &f.To)

	if f.Limit < 0 {
		errs.Add("limit", "limit must be positive")
	} else if f.Limit == 0 {
		f.Limit = DefaultHistoryLimit
	} else if f.Limit > MaxHistoryLimit {
		f.Limit = MaxHistoryLimit
	}

	return errs.Err()
}

// AttendanceFilter filters records across employees. Date takes precedence
// over StartDate and EndDate.
type AttendanceFilter struct {
	Date       string
	StartDate  string
	EndDate    string
	Status     string
	EmployeeID string

	From *time.Time
	To   *time.Time
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != "" {
		if d, ok := validator.IsValidDate(f.Date); ok {
			f.From, f.To = &d, &d
		} else {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	} else {
		parseRange(&errs, f.StartDate, f.EndDate, &f.From, &f.To)
	}

	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be one of present, absent, half-day, leave, weekend, holiday")
	}
	if f.EmployeeID != "" && !validator.IsValidUUID(f.EmployeeID) {
		errs.Add("employeeId", "employeeId must be a valid UUID")
	}

	return errs.Err()
}

type ExportFilter struct {
	StartDate string
	EndDate   string

	From *time.Time
	To   *time.Time
}

func (f *ExportFilter) Validate() error {
	var errs validator.ValidationErrors

	parseRange(&errs, f.StartDate, f.EndDate, &f.From, &f.To)

	return errs.Err()
}

// ValidateExportRange checks the range once missing bounds are filled in.
func ValidateExportRange(from, to time.Time) error {
	var errs validator.ValidationErrors

	switch {
	case from.After(to):
		errs.Add("startDate", "startDate must not be after endDate")
	case to.Sub(from) > MaxExportDays*24*time.Hour:
		errs.Add("endDate", "export range must not exceed 366 days")
	}

	return errs.Err()
}

func parseRange(errs *validator.ValidationErrors, start, end string, from, to **time.Time) {
	if start != "" {
		if d, ok := validator.IsValidDate(start); ok {
			*from = &d
		} else {
			errs.Add("startDate", "startDate must be in YYYY-MM-DD format")
		}
	}
	if end != "" {
		if d, ok := validator.IsValidDate(end); ok {
			*to = &d
		} else {
			errs.Add("endDate", "endDate must be in YYYY-MM-DD format")
		}
	}
	if *from != nil && *to != nil && (*from).After(**to) {
		errs.Add("startDate", "startDate must not be after endDate")
	}
}

// OverrideAttendanceRequest patches a record. Nil fields are left unchanged.
type OverrideAttendanceRequest struct {
	Status       *string `json:"status,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	CheckInTime  *string `json:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty"`
	Reason       *string `json:"override_reason,omitempty"`

	checkIn  *time.Time
	checkOut *time.Time
}

func (r *OverrideAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status == nil && r.Notes == nil && r.CheckInTime == nil && r.CheckOutTime == nil {
		errs.Add("body", "at least one of status, notes, check_in_time, check_out_time is required")
	}
	if r.Status != nil && !Status(*r.Status).Valid() {
		errs.Add("status", "status must be one of present, absent, half-day, leave, weekend, holiday")
	}
	if r.CheckInTime != nil {
		if t, ok := validator.IsValidDateTime(*r.CheckInTime); ok {
			r.checkIn = &t
		} else {
			errs.Add("check_in_time", "check_in_time must be an ISO8601 timestamp")
		}
	}
	if r.CheckOutTime != nil {
		if t, ok := validator.IsValidDateTime(*r.CheckOutTime); ok {
			r.checkOut = &t
		} else {
			errs.Add("check_out_time", "check_out_time must be an ISO8601 timestamp")
		}
	}
	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs.Add("notes", "notes must not exceed 1000 characters")
	}
	if r.Reason != nil {
		trimmed := strings.TrimSpace(*r.Reason)
		r.Reason = &trimmed
		if len(trimmed) > 1000 {
			errs.Add("override_reason", "override_reason must not exceed 1000 characters")
		}
	}

	return errs.Err()
}

// Times returns the parsed punch times. Valid after Validate.
func (r *OverrideAttendanceRequest) Times() (checkIn, checkOut *time.Time) {
	return r.checkIn, r.checkOut
}

type PunchResponse struct {
	Time string  `json:"time"`
	IP   *string `json:"ip,omitempty"`
}

type AttendanceResponse struct {
	ID             string         `json:"id"`
	EmployeeID     string         `json:"employee_id"`
	EmployeeName   *string        `json:"employee_name,omitempty"`
	EmployeeCode   *string        `json:"employee_code,omitempty"`
	Date           string         `json:"date"`
	CheckIn        *PunchResponse `json:"check_in,omitempty"`
	CheckOut       *PunchResponse `json:"check_out,omitempty"`
	Status         string         `json:"status"`
	WorkHours      int            `json:"work_hours"`
	Notes          *string        `json:"notes,omitempty"`
	OverriddenBy   *string        `json:"overridden_by,omitempty"`
	OverrideReason *string        `json:"override_reason,omitempty"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		EmployeeName:   a.EmployeeName,
		EmployeeCode:   a.EmployeeCode,
		Date:           a.Date.Format(validator.DateLayout),
		Status:         string(a.Status),
		WorkHours:      a.WorkMinutes,
		Notes:          a.Notes,
		OverriddenBy:   a.OverriddenBy,
		OverrideReason: a.OverrideReason,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
	if a.CheckInTime != nil {
		resp.CheckIn = &PunchResponse{Time: a.CheckInTime.Format(time.RFC3339), IP: a.CheckInIP}
	}
	if a.CheckOutTime != nil {
		resp.CheckOut = &PunchResponse{Time: a.CheckOutTime.Format(time.RFC3339), IP: a.CheckOutIP}
	}
	return resp
}

type TodayResponse struct {
	Attendance *AttendanceResponse `json:"attendance"`
	CheckedIn  bool                `json:"checked_in"`
	CheckedOut bool                `json:"checked_out"`
}

type ListAttendanceResponse struct {
	Records []AttendanceResponse `json:"records"`
	Summary Summary              `json:"summary"`
}

func NewListAttendanceResponse(records []Attendance) ListAttendanceResponse {
	items := make([]AttendanceResponse, 0, len(records))
	for _, r := range records {
		items = append(items, NewAttendanceResponse(r))
	}
	return ListAttendanceResponse{
		Records: items,
		Summary: Summarize(records),
	}
}

// ExportFile is a generated spreadsheet.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
