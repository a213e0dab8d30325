package attendance

import (
	"math"
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusLeave   Status = "leave"
	StatusWeekend Status = "weekend"
	StatusHoliday Status = "holiday"
)

var Statuses = []Status{StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave, StatusWeekend, StatusHoliday}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Worked-minute thresholds for status derivation.
const (
	FullDayMinutes = 360
	HalfDayMinutes = 180
)

type Attendance struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	CheckInTime    *time.Time
	CheckInIP      *string
	CheckOutTime   *time.Time
	CheckOutIP     *string
	Status         Status
	WorkMinutes    int
	Notes          *string
	OverriddenBy   *string
	OverrideReason *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO
	EmployeeName *string
	EmployeeCode *string
}

func (a Attendance) CheckedIn() bool {
	return a.CheckInTime != nil
}

func (a Attendance) CheckedOut() bool {
	return a.CheckOutTime != nil
}

// Recompute refreshes WorkMinutes from the two punches. When deriveStatus
// is set the status follows the worked-minute thresholds.
func (a *Attendance) Recompute(deriveStatus bool) {
	if a.CheckInTime == nil || a.CheckOutTime == nil {
		return
	}
	a.WorkMinutes = WorkMinutes(*a.CheckInTime, *a.CheckOutTime)
	if deriveStatus {
		a.Status = DeriveStatus(a.WorkMinutes, a.Status)
	}
}

// Day returns the calendar day of t in loc, as midnight UTC.
func Day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WorkMinutes is the rounded number of minutes between in and out.
func WorkMinutes(in, out time.Time) int {
	return int(math.Round(out.Sub(in).Minutes()))
}

// DeriveStatus applies the worked-minute thresholds. Below HalfDayMinutes the
// current status is kept, so a short shift stays present.
func DeriveStatus(minutes int, current Status) Status {
	switch {
	case minutes >= FullDayMinutes:
		return StatusPresent
	case minutes >= HalfDayMinutes:
		return StatusHalfDay
	default:
		return current
	}
}

// Summary aggregates attendance records.
type Summary struct {
	TotalRecords     int            `json:"total_records"`
	ByStatus         map[Status]int `json:"by_status"`
	TotalWorkMinutes int            `json:"total_work_minutes"`
}

func Summarize(records []Attendance) Summary {
	s := Summary{
		TotalRecords: len(records),
		ByStatus:     make(map[Status]int, len(Statuses)),
	}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, r := range records {
		s.ByStatus[r.Status]++
		s.TotalWorkMinutes += r.WorkMinutes
	}
	return s
}
