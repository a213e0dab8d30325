package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
)

type payrollRepository struct {
	s *Store
}

// joined must be called with mu held.
func (r *payrollRepository) joined(p payroll.PayrollRecord) payroll.PayrollRecord {
	p.EmployeeName, p.EmployeeCode = r.s.employeeNames(p.EmployeeID)
	return p
}

func (r *payrollRepository) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payrolls {
		if existing.EmployeeID == record.EmployeeID &&
			existing.PeriodMonth == record.PeriodMonth &&
			existing.PeriodYear == record.PeriodYear {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
	}
	if record.ID == "" {
		record.ID = newID()
	}
	if record.Status == "" {
		record.Status = payroll.PayrollStatusDraft
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	r.s.payrolls[record.ID] = record
	return r.joined(record), nil
}

func (r *payrollRepository) GetPayrollRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payrolls[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return r.joined(p), nil
}

func (r *payrollRepository) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []payroll.PayrollRecord
	for _, p := range r.s.payrolls {
		if filter.Month != nil && p.PeriodMonth != *filter.Month {
			continue
		}
		if filter.Year != nil && p.PeriodYear != *filter.Year {
			continue
		}
		if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		matched = append(matched, r.joined(p))
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.PeriodYear != b.PeriodYear {
			return a.PeriodYear > b.PeriodYear
		}
		if a.PeriodMonth != b.PeriodMonth {
			return a.PeriodMonth > b.PeriodMonth
		}
		return deref(a.EmployeeCode) < deref(b.EmployeeCode)
	})

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

func (r *payrollRepository) MarkPaid(ctx context.Context, id string, paidBy string) (payroll.PayrollRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payrolls[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	if p.IsPaid() {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyPaid
	}
	now := time.Now()
	p.Status = payroll.PayrollStatusPaid
	p.PaidAt = &now
	p.PaidBy = &paidBy
	p.UpdatedAt = now
	r.s.payrolls[id] = p
	return r.joined(p), nil
}

func (r *payrollRepository) DeleteDraft(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payrolls[id]
	if !ok {
		return payroll.ErrPayrollRecordNotFound
	}
	if p.IsPaid() {
		return payroll.ErrCannotDeletePaidRecord
	}
	delete(r.s.payrolls, id)
	return nil
}
