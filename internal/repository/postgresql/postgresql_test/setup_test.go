package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. The test is skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	schema, err := os.ReadFile(migrationPath())
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	require.NoError(t, truncateAllTables(ctx, db))
	return db
}

func migrationPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", "001_init.sql")
}

func truncateAllTables(ctx context.Context, db *database.DB) error {
	tables := []string{
		"notifications",
		"payroll_records",
		"leave_requests",
		"attendances",
		"employees",
		"refresh_tokens",
		"users",
	}
	for _, table := range tables {
		if _, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

// createTestEmployee inserts a verified user with an employee profile.
func createTestEmployee(t *testing.T, db *database.DB, balance employee.LeaveBalance) (user.User, employee.Employee) {
	t.Helper()
	ctx := context.Background()

	u, err := postgresql.NewUserRepository(db).Create(ctx, user.User{
		Email:         uuid.NewString() + "@example.com",
		Role:          user.RoleEmployee,
		EmailVerified: true,
		IsActive:      true,
	})
	require.NoError(t, err)

	employees := postgresql.NewEmployeeRepository(db)
	code, err := employees.NextEmployeeCode(ctx)
	require.NoError(t, err)

	emp, err := employees.Create(ctx, employee.Employee{
		UserID:       u.ID,
		EmployeeCode: code,
		FullName:     "Test Employee",
		BaseSalary:   decimal.NewFromInt(3_000_000),
		LeaveBalance: balance,
	})
	require.NoError(t, err)

	return u, emp
}
