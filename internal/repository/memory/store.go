// Package memory holds map-backed repositories with the same contracts as
// the PostgreSQL ones. Service and handler tests run on it.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

type refreshToken struct {
	userID    string
	expiresAt time.Time
	revoked   bool
}

// Store is a process-local database shared by all memory repositories.
type Store struct {
	mu            sync.Mutex
	users         map[string]user.User
	employees     map[string]employee.Employee
	refreshTokens map[string]refreshToken
	attendances   map[string]attendance.Attendance
	leaves        map[string]leave.LeaveRequest
	payrolls      map[string]payroll.PayrollRecord
	notifications map[string]notification.Notification
	employeeSeq   int
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]user.User),
		employees:     make(map[string]employee.Employee),
		refreshTokens: make(map[string]refreshToken),
		attendances:   make(map[string]attendance.Attendance),
		leaves:        make(map[string]leave.LeaveRequest),
		payrolls:      make(map[string]payroll.PayrollRecord),
		notifications: make(map[string]notification.Notification),
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Transactor runs fn directly. Memory repositories do not roll back.
type Transactor struct{}

func (Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// employeeByUser must be called with mu held.
func (s *Store) employeeByUser(userID string) (employee.Employee, bool) {
	for _, e := range s.employees {
		if e.UserID == userID {
			return e, true
		}
	}
	return employee.Employee{}, false
}

// employeeNames must be called with mu held.
func (s *Store) employeeNames(employeeID string) (*string, *string) {
	e, ok := s.employees[employeeID]
	if !ok {
		return nil, nil
	}
	name, code := e.FullName, e.EmployeeCode
	return &name, &code
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Store) Users() user.UserRepository { return &userRepository{s} }
func (s *Store) RefreshTokens() *RefreshTokenRepository { return &RefreshTokenRepository{s} }
func (s *Store) Employees() employee.EmployeeRepository { return &employeeRepository{s} }
func (s *Store) Attendances() attendance.AttendanceRepository { return &attendanceRepository{s} }
func (s *Store) LeaveRequests() leave.LeaveRequestRepository { return &leaveRequestRepository{s} }
func (s *Store) Payrolls() payroll.PayrollRepository { return &payrollRepository{s} }
func (s *Store) Notifications() notification.Repository { return &notificationRepository{s} }
