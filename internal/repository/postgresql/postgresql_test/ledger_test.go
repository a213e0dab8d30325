package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAttendanceRepository_OneRecordPerDay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	_, emp := createTestEmployee(t, db, nil)

	day := date(2026, 1, 10)
	in := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, attendance.Attendance{
		EmployeeID:  emp.ID,
		Date:        day,
		CheckInTime: &in,
		Status:      attendance.StatusPresent,
	})
	require.NoError(t, err)
	require.NotNil(t, created.EmployeeName)

	later := in.Add(time.Hour)
	_, err = repo.Create(ctx, attendance.Attendance{EmployeeID: emp.ID, Date: day, CheckInTime: &later, Status: attendance.StatusPresent})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	got, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CheckInTime.Equal(in))

	none, err := repo.GetByEmployeeAndDate(ctx, emp.ID, date(2026, 1, 11))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAttendanceRepository_CheckOutOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	_, emp := createTestEmployee(t, db, nil)

	in := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, attendance.Attendance{EmployeeID: emp.ID, Date: date(2026, 1, 10), CheckInTime: &in, Status: attendance.StatusPresent})
	require.NoError(t, err)

	out := in.Add(7 * time.Hour)
	updated, err := repo.RecordCheckOut(ctx, created.ID, out, nil, 420, attendance.StatusPresent)
	require.NoError(t, err)
	assert.Equal(t, 420, updated.WorkMinutes)

	_, err = repo.RecordCheckOut(ctx, created.ID, out.Add(time.Hour), nil, 480, attendance.StatusPresent)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestLeaveRequestRepository_OverlapAndReview(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(db)
	u, emp := createTestEmployee(t, db, nil)

	created, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID: emp.ID,
		Type:       leave.TypeUnpaid,
		StartDate:  date(2026, 1, 10),
		EndDate:    date(2026, 1, 12),
		Duration:   3,
		Reason:     "family",
		Status:     leave.StatusPending,
	})
	require.NoError(t, err)

	overlap, err := repo.HasOverlap(ctx, emp.ID, date(2026, 1, 11), date(2026, 1, 13))
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = repo.HasOverlap(ctx, emp.ID, date(2026, 1, 13), date(2026, 1, 15))
	require.NoError(t, err)
	assert.False(t, overlap)

	review := leave.Review{RequestID: created.ID, Status: leave.StatusApproved, ReviewerID: u.ID, ReviewedAt: time.Now()}
	approved, err := repo.Review(ctx, review)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)

	_, err = repo.Review(ctx, review)
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)

	// Only the days inside January 11..31 count.
	days, err := repo.SumApprovedDays(ctx, emp.ID, leave.TypeUnpaid, date(2026, 1, 11), date(2026, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, 2, days)
}

func TestEmployeeRepository_AdjustLeaveBalance(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(db)
	_, emp := createTestEmployee(t, db, employee.DefaultLeaveBalance(5, 2))

	require.NoError(t, repo.AdjustLeaveBalance(ctx, emp.ID, leave.TypePaid, -7))

	got, err := repo.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, -2, got.LeaveBalance.Get(leave.TypePaid))
	assert.Equal(t, 2, got.LeaveBalance.Get(leave.TypeSick))
}

func TestPayrollRepository_OnePerPeriod(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(db)
	u, emp := createTestEmployee(t, db, nil)

	record := payroll.PayrollRecord{
		EmployeeID:  emp.ID,
		PeriodMonth: 1,
		PeriodYear:  2026,
		BaseSalary:  decimal.NewFromInt(3_000_000),
		GrossSalary: decimal.NewFromInt(3_000_000),
		NetSalary:   decimal.NewFromInt(3_000_000),
		Status:      payroll.PayrollStatusDraft,
		CreatedBy:   u.ID,
	}
	created, err := repo.CreatePayrollRecord(ctx, record)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3_000_000).Equal(created.NetSalary))

	_, err = repo.CreatePayrollRecord(ctx, record)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)

	_, err = repo.MarkPaid(ctx, created.ID, u.ID)
	require.NoError(t, err)
	_, err = repo.MarkPaid(ctx, created.ID, u.ID)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)
	assert.ErrorIs(t, repo.DeleteDraft(ctx, created.ID), payroll.ErrCannotDeletePaidRecord)
}
