package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts the first record of a day. A second record for the same
	// employee and date fails with ErrAlreadyCheckedIn.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate returns nil when the employee has no record that day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// RecordCheckOut sets the check-out of a record only while it is still
	// open, otherwise ErrAlreadyCheckedOut.
	RecordCheckOut(ctx context.Context, id string, at time.Time, ip *string, workMinutes int, status Status) (Attendance, error)

	// Update overwrites the mutable columns of a record.
	Update(ctx context.Context, attendance Attendance) (Attendance, error)

	ListByEmployee(ctx context.Context, employeeID string, filter MyAttendanceFilter) ([]Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
}
