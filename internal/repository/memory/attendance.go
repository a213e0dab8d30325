package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
)

type attendanceRepository struct {
	s *Store
}

// joined must be called with mu held.
func (r *attendanceRepository) joined(a attendance.Attendance) attendance.Attendance {
	a.EmployeeName, a.EmployeeCode = r.s.employeeNames(a.EmployeeID)
	return a
}

func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.attendances {
		if existing.EmployeeID == a.EmployeeID && existing.Date.Equal(a.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
	}
	if a.ID == "" {
		a.ID = newID()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.s.attendances[a.ID] = a
	return r.joined(a), nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.joined(a), nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.attendances {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			found := r.joined(a)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *attendanceRepository) RecordCheckOut(ctx context.Context, id string, at time.Time, ip *string, workMinutes int, status attendance.Status) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendances[id]
	if !ok || a.CheckOutTime != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	a.CheckOutTime, a.CheckOutIP = &at, ip
	a.WorkMinutes, a.Status = workMinutes, status
	a.UpdatedAt = time.Now()
	r.s.attendances[id] = a
	return r.joined(a), nil
}

func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.attendances[a.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	a.EmployeeID, a.Date, a.CreatedAt = cur.EmployeeID, cur.Date, cur.CreatedAt
	a.UpdatedAt = time.Now()
	r.s.attendances[a.ID] = a
	return r.joined(a), nil
}

func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

// sorted must be called with mu held.
func (r *attendanceRepository) sorted(keep func(attendance.Attendance) bool) []attendance.Attendance {
	var out []attendance.Attendance
	for _, a := range r.s.attendances {
		if keep(a) {
			out = append(out, r.joined(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return deref(out[i].EmployeeCode) < deref(out[j].EmployeeCode)
	})
	return out
}

func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter) ([]attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.sorted(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && inRange(a.Date, filter.From, filter.To)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(a attendance.Attendance) bool {
		if filter.Status != "" && string(a.Status) != filter.Status {
			return false
		}
		if filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID {
			return false
		}
		return inRange(a.Date, filter.From, filter.To)
	}), nil
}
