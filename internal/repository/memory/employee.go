package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
)

type employeeRepository struct {
	s *Store
}

// withUser must be called with mu held.
func (r *employeeRepository) withUser(e employee.Employee) employee.Employee {
	if u, ok := r.s.users[e.UserID]; ok {
		e.Email, e.Role = u.Email, string(u.Role)
	}
	e.LeaveBalance = copyBalance(e.LeaveBalance)
	return e
}

func copyBalance(b employee.LeaveBalance) employee.LeaveBalance {
	out := make(employee.LeaveBalance, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (r *employeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.employees {
		if existing.EmployeeCode == e.EmployeeCode {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
	}
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Status == "" {
		e.Status = employee.StatusActive
	}
	e.LeaveBalance = copyBalance(e.LeaveBalance)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.s.employees[e.ID] = e
	return r.withUser(e), nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.withUser(e), nil
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employeeByUser(userID)
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.withUser(e), nil
}

func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	var matched []employee.Employee
	for _, e := range r.s.employees {
		e = r.withUser(e)
		if search != "" &&
			!strings.Contains(strings.ToLower(e.FullName), search) &&
			!strings.Contains(strings.ToLower(e.EmployeeCode), search) &&
			!strings.Contains(strings.ToLower(e.Email), search) {
			continue
		}
		if filter.Department != "" && (e.Department == nil || *e.Department != filter.Department) {
			continue
		}
		if filter.Status != "" && string(e.Status) != filter.Status {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].EmployeeCode < matched[j].EmployeeCode })

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *employeeRepository) update(id string, fn func(*employee.Employee)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	fn(&e)
	e.UpdatedAt = time.Now()
	r.s.employees[id] = e
	return nil
}

func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) error {
	return r.update(e.ID, func(cur *employee.Employee) {
		cur.FullName = e.FullName
		cur.PhoneNumber = e.PhoneNumber
		cur.Address = e.Address
		cur.Department = e.Department
		cur.Position = e.Position
		cur.HireDate = e.HireDate
		cur.BaseSalary = e.BaseSalary
	})
}

func (r *employeeRepository) UpdateAvatar(ctx context.Context, id string, avatarURL string) error {
	return r.update(id, func(cur *employee.Employee) { cur.AvatarURL = &avatarURL })
}

func (r *employeeRepository) SetStatus(ctx context.Context, id string, status employee.Status) error {
	return r.update(id, func(cur *employee.Employee) { cur.Status = status })
}

func (r *employeeRepository) SetLeaveBalance(ctx context.Context, id string, balance employee.LeaveBalance) error {
	return r.update(id, func(cur *employee.Employee) { cur.LeaveBalance = copyBalance(balance) })
}

func (r *employeeRepository) AdjustLeaveBalance(ctx context.Context, id string, leaveType leave.Type, delta int) error {
	return r.update(id, func(cur *employee.Employee) {
		if cur.LeaveBalance == nil {
			cur.LeaveBalance = employee.LeaveBalance{}
		}
		cur.LeaveBalance[leaveType] += delta
	})
}

func (r *employeeRepository) NextEmployeeCode(ctx context.Context) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.employeeSeq++
	return fmt.Sprintf("EMP-%04d", r.s.employeeSeq), nil
}

func (r *employeeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if e.EmployeeCode == code {
			return true, nil
		}
	}
	return false, nil
}
