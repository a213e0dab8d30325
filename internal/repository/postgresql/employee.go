package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `
	e.id, e.user_id, e.employee_code, e.full_name, e.phone_number, e.address,
	e.department, e.position, e.hire_date, e.base_salary, e.avatar_url,
	e.leave_balance, e.status, e.created_at, e.updated_at,
	u.email, u.role`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeCode, &emp.FullName, &emp.PhoneNumber, &emp.Address,
		&emp.Department, &emp.Position, &emp.HireDate, &emp.BaseSalary, &emp.AvatarURL,
		&emp.LeaveBalance, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
		&emp.Email, &emp.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	return emp, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if newEmployee.ID == "" {
		newEmployee.ID = newID()
	}
	if newEmployee.LeaveBalance == nil {
		newEmployee.LeaveBalance = employee.LeaveBalance{}
	}
	if newEmployee.Status == "" {
		newEmployee.Status = employee.StatusActive
	}

	query := `
		INSERT INTO employees (
			id, user_id, employee_code, full_name, phone_number, address, department,
			position, hire_date, base_salary, avatar_url, leave_balance, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newEmployee.ID,
		newEmployee.UserID,
		newEmployee.EmployeeCode,
		newEmployee.FullName,
		newEmployee.PhoneNumber,
		newEmployee.Address,
		newEmployee.Department,
		newEmployee.Position,
		newEmployee.HireDate,
		newEmployee.BaseSalary,
		newEmployee.AvatarURL,
		newEmployee.LeaveBalance,
		newEmployee.Status,
	).Scan(&newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "employees_employee_code_key") {
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return newEmployee, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.getOne(ctx, "e.id = $1", id)
}

// GetByUserID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return r.getOne(ctx, "e.user_id = $1", userID)
}

func (r *employeeRepositoryImpl) getOne(ctx context.Context, where string, arg string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees e
		JOIN users u ON u.id = e.user_id
		WHERE ` + where

	emp, err := scanEmployee(q.QueryRow(ctx, query, arg))
	if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, err
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE conditions
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(e.full_name ILIKE $%d OR e.employee_code ILIKE $%d OR u.email ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, filter.Department)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count query
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees e JOIN users u ON u.id = e.user_id WHERE %s", whereClause)
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees e
		JOIN users u ON u.id = e.user_id
		WHERE %s
		ORDER BY e.employee_code ASC
		LIMIT $%d OFFSET $%d
	`, employeeColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) error {
	return r.exec(ctx, "update employee", `
		UPDATE employees
		SET full_name = $2, phone_number = $3, address = $4, department = $5,
			position = $6, hire_date = $7, base_salary = $8, updated_at = NOW()
		WHERE id = $1
	`, e.ID, e.FullName, e.PhoneNumber, e.Address, e.Department, e.Position, e.HireDate, e.BaseSalary)
}

// UpdateAvatar implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateAvatar(ctx context.Context, id string, avatarURL string) error {
	return r.exec(ctx, "update avatar", `
		UPDATE employees SET avatar_url = $2, updated_at = NOW() WHERE id = $1
	`, id, avatarURL)
}

// SetStatus implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) SetStatus(ctx context.Context, id string, status employee.Status) error {
	return r.exec(ctx, "set employee status", `
		UPDATE employees SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
}

// SetLeaveBalance implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) SetLeaveBalance(ctx context.Context, id string, balance employee.LeaveBalance) error {
	return r.exec(ctx, "set leave balance", `
		UPDATE employees SET leave_balance = $2, updated_at = NOW() WHERE id = $1
	`, id, balance)
}

// AdjustLeaveBalance implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) AdjustLeaveBalance(ctx context.Context, id string, leaveType leave.Type, delta int) error {
	return r.exec(ctx, "adjust leave balance", `
		UPDATE employees
		SET leave_balance = jsonb_set(
				leave_balance,
				ARRAY[$2::text],
				to_jsonb(COALESCE((leave_balance ->> $2::text)::int, 0) + $3::int)
			),
			updated_at = NOW()
		WHERE id = $1
	`, id, string(leaveType), delta)
}

// NextEmployeeCode implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) NextEmployeeCode(ctx context.Context) (string, error) {
	q := GetQuerier(ctx, r.db)

	var seq int64
	if err := q.QueryRow(ctx, `SELECT nextval('employee_code_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to allocate employee code: %w", err)
	}
	return fmt.Sprintf("EMP-%04d", seq), nil
}

// ExistsByCode implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ExistsByCode(ctx context.Context, code string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE employee_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee code: %w", err)
	}
	return exists, nil
}

func (r *employeeRepositoryImpl) exec(ctx context.Context, op string, query string, args ...interface{}) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
