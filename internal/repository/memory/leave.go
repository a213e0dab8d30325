package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
)

type leaveRequestRepository struct {
	s *Store
}

// joined must be called with mu held.
func (r *leaveRequestRepository) joined(lr leave.LeaveRequest) leave.LeaveRequest {
	lr.EmployeeName, lr.EmployeeCode = r.s.employeeNames(lr.EmployeeID)
	lr.ReviewerName = nil
	if lr.ReviewedBy != nil {
		if reviewer, ok := r.s.employeeByUser(*lr.ReviewedBy); ok {
			name := reviewer.FullName
			lr.ReviewerName = &name
		}
	}
	return lr
}

func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if request.ID == "" {
		request.ID = newID()
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.s.leaves[request.ID] = request
	return r.joined(request), nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lr, ok := r.s.leaves[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.joined(lr), nil
}

func (r *leaveRequestRepository) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, lr := range r.s.leaves {
		if lr.EmployeeID != employeeID || lr.Status == leave.StatusRejected {
			continue
		}
		if leave.Overlaps(lr.StartDate, lr.EndDate, start, end) {
			return true, nil
		}
	}
	return false, nil
}

// sorted must be called with mu held.
func (r *leaveRequestRepository) sorted(keep func(leave.LeaveRequest) bool) []leave.LeaveRequest {
	var out []leave.LeaveRequest
	for _, lr := range r.s.leaves {
		if keep(lr) {
			out = append(out, r.joined(lr))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *leaveRequestRepository) ListByEmployee(ctx context.Context, employeeID string, filter leave.MyLeaveFilter) ([]leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(lr leave.LeaveRequest) bool {
		if lr.EmployeeID != employeeID {
			return false
		}
		if filter.Status != "" && string(lr.Status) != filter.Status {
			return false
		}
		return filter.Year == 0 || lr.StartDate.Year() == filter.Year
	}), nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(lr leave.LeaveRequest) bool {
		if filter.Status != "" && string(lr.Status) != filter.Status {
			return false
		}
		if filter.EmployeeID != "" && lr.EmployeeID != filter.EmployeeID {
			return false
		}
		if filter.From != nil && lr.EndDate.Before(*filter.From) {
			return false
		}
		return filter.To == nil || !lr.StartDate.After(*filter.To)
	}), nil
}

func (r *leaveRequestRepository) Review(ctx context.Context, review leave.Review) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lr, ok := r.s.leaves[review.RequestID]
	if !ok || !lr.IsPending() {
		return leave.LeaveRequest{}, leave.ErrAlreadyProcessed
	}
	reviewer, reviewedAt := review.ReviewerID, review.ReviewedAt
	lr.Status = review.Status
	lr.ReviewedBy = &reviewer
	lr.ReviewedAt = &reviewedAt
	lr.AdminComment = review.Comment
	lr.UpdatedAt = time.Now()
	r.s.leaves[lr.ID] = lr
	return r.joined(lr), nil
}

func (r *leaveRequestRepository) SumApprovedDays(ctx context.Context, employeeID string, leaveType leave.Type, from, to time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0
	for _, lr := range r.s.leaves {
		if lr.EmployeeID != employeeID || lr.Type != leaveType || lr.Status != leave.StatusApproved {
			continue
		}
		if !leave.Overlaps(lr.StartDate, lr.EndDate, from, to) {
			continue
		}
		start, end := lr.StartDate, lr.EndDate
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		total += leave.Duration(start, end)
	}
	return total, nil
}
