package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const payrollColumns = `
	pr.id, pr.employee_id, pr.period_month, pr.period_year, pr.base_salary, pr.allowances,
	pr.deductions, pr.unpaid_leave_days, pr.unpaid_leave_deduction, pr.gross_salary, pr.net_salary,
	pr.status, pr.paid_at, pr.paid_by, pr.notes, pr.created_by, pr.created_at, pr.updated_at,
	e.full_name, e.employee_code`

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear, &rec.BaseSalary, &rec.Allowances,
		&rec.Deductions, &rec.UnpaidLeaveDays, &rec.UnpaidLeaveDeduction, &rec.GrossSalary, &rec.NetSalary,
		&rec.Status, &rec.PaidAt, &rec.PaidBy, &rec.Notes, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode,
	)
	return rec, err
}

// CreatePayrollRecord implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	if record.ID == "" {
		record.ID = newID()
	}

	query := `
		INSERT INTO payroll_records (
			id, employee_id, period_month, period_year, base_salary, allowances, deductions,
			unpaid_leave_days, unpaid_leave_deduction, gross_salary, net_salary, status, notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		record.ID,
		record.EmployeeID,
		record.PeriodMonth,
		record.PeriodYear,
		record.BaseSalary,
		record.Allowances,
		record.Deductions,
		record.UnpaidLeaveDays,
		record.UnpaidLeaveDeduction,
		record.GrossSalary,
		record.NetSalary,
		record.Status,
		record.Notes,
		record.CreatedBy,
	).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err, "payroll_records_employee_period_key") {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return r.GetPayrollRecordByID(ctx, id)
}

// GetPayrollRecordByID implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetPayrollRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + `
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE pr.id = $1`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

// ListPayrollRecords implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.Month != nil {
		conditions = append(conditions, fmt.Sprintf("pr.period_month = $%d", argIdx))
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("pr.period_year = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("pr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("pr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payroll_records pr WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE %s
		ORDER BY pr.period_year DESC, pr.period_month DESC, e.employee_code ASC
		LIMIT $%d OFFSET $%d
	`, payrollColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// MarkPaid implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) MarkPaid(ctx context.Context, id string, paidBy string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_records
		SET status = 'paid', paid_at = NOW(), paid_by = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
	`, id, paidBy)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to mark payroll paid: %w", err)
	}

	rec, err := r.GetPayrollRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if tag.RowsAffected() == 0 {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyPaid
	}
	return rec, nil
}

// DeleteDraft implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) DeleteDraft(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_records WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing deleted: either missing or already paid.
	if _, err := r.GetPayrollRecordByID(ctx, id); err != nil {
		return err
	}
	return payroll.ErrCannotDeletePaidRecord
}
