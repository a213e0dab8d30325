package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/file"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	tx            database.Transactor
	employeeRepo  employee.EmployeeRepository
	userRepo      user.UserRepository
	refreshTokens auth.RefreshTokenRepository
	fileService   file.FileService
	email         email.EmailService
	leave         config.LeaveConfig
	loginURL      string
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	refreshTokens auth.RefreshTokenRepository,
	fileService file.FileService,
	emailService email.EmailService,
	leaveConfig config.LeaveConfig,
	frontendURL string,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:            tx,
		employeeRepo:  employeeRepo,
		userRepo:      userRepo,
		refreshTokens: refreshTokens,
		fileService:   fileService,
		email:         emailService,
		leave:         leaveConfig,
		loginURL:      strings.TrimRight(frontendURL, "/") + "/login",
	}
}

// CreateEmployee implements employee.EmployeeService. The account is created
// verified since an administrator vouches for the address.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, principal user.Principal, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return employee.EmployeeResponse{}, user.ErrUserEmailExists
	}

	if req.EmployeeCode != nil {
		taken, err := s.employeeRepo.ExistsByCode(ctx, *req.EmployeeCode)
		if err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to check employee code: %w", err)
		}
		if taken {
			return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	balance := employee.DefaultLeaveBalance(s.leave.DefaultPaidDays, s.leave.DefaultSickDays)
	for t, days := range employee.ToLeaveBalance(req.LeaveBalance) {
		balance[t] = days
	}

	var created employee.Employee
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		account, err := s.userRepo.Create(ctx, user.User{
			Email:         req.Email,
			PasswordHash:  &hashed,
			Role:          user.Role(req.Role),
			EmailVerified: true,
			IsActive:      true,
		})
		if err != nil {
			return err
		}

		code := ""
		if req.EmployeeCode != nil {
			code = *req.EmployeeCode
		} else if code, err = s.employeeRepo.NextEmployeeCode(ctx); err != nil {
			return err
		}

		created, err = s.employeeRepo.Create(ctx, employee.Employee{
			UserID:       account.ID,
			EmployeeCode: code,
			FullName:     req.FullName,
			PhoneNumber:  req.PhoneNumber,
			Address:      req.Address,
			Department:   req.Department,
			Position:     req.Position,
			HireDate:     parseDate(req.HireDate),
			BaseSalary:   req.BaseSalary,
			LeaveBalance: balance,
			Status:       employee.StatusActive,
		})
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.email.SendAccountCreated(created.Email, created.FullName, s.loginURL); err != nil {
		slog.Error("failed to send account created email", "employee_id", created.ID, "error", err)
	}

	slog.Info("employee created", "employee_id", created.ID, "employee_code", created.EmployeeCode, "admin_id", principal.UserID)
	return employee.NewEmployeeResponse(created), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, principal user.Principal, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	items := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		items = append(items, employee.NewEmployeeResponse(e))
	}

	return employee.ListEmployeeResponse{
		Employees:  items,
		Pagination: employee.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, principal user.Principal, id string) (employee.EmployeeResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, principal user.Principal, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.FullName != nil {
		e.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		e.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		e.Address = req.Address
	}
	if req.Department != nil {
		e.Department = req.Department
	}
	if req.Position != nil {
		e.Position = req.Position
	}
	if req.HireDate != nil {
		e.HireDate = parseDate(req.HireDate)
	}
	if req.BaseSalary != nil {
		e.BaseSalary = *req.BaseSalary
	}

	if err := s.employeeRepo.Update(ctx, e); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}
	return s.reload(ctx, id)
}

// DeactivateEmployee implements employee.EmployeeService. The login is
// disabled and every refresh token of the user revoked; records are kept.
func (s *EmployeeServiceImpl) DeactivateEmployee(ctx context.Context, principal user.Principal, id string) error {
	if err := principal.RequireAdmin(); err != nil {
		return err
	}
	if !validator.IsValidUUID(id) {
		return employee.ErrEmployeeNotFound
	}
	if id == principal.EmployeeID {
		return employee.ErrCannotDeactivateSelf
	}

	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !e.IsActive() {
		return employee.ErrEmployeeAlreadyInactive
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.employeeRepo.SetStatus(ctx, id, employee.StatusInactive); err != nil {
			return err
		}
		if err := s.userRepo.SetActive(ctx, e.UserID, false); err != nil {
			return err
		}
		return s.refreshTokens.RevokeAllForUser(ctx, e.UserID)
	})
	if err != nil {
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}

	slog.Info("employee deactivated", "employee_id", id, "admin_id", principal.UserID)
	return nil
}

// UpdateLeaveBalance implements employee.EmployeeService. Types missing from
// the request keep their current balance.
func (s *EmployeeServiceImpl) UpdateLeaveBalance(ctx context.Context, principal user.Principal, id string, req employee.UpdateLeaveBalanceRequest) (employee.EmployeeResponse, error) {
	if err := principal.RequireAdmin(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	balance := e.LeaveBalance
	if balance == nil {
		balance = employee.LeaveBalance{}
	}
	for t, days := range employee.ToLeaveBalance(req.Balances) {
		balance[t] = days
	}

	if err := s.employeeRepo.SetLeaveBalance(ctx, id, balance); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to set leave balance: %w", err)
	}

	slog.Info("leave balance updated", "employee_id", id, "admin_id", principal.UserID)
	return s.reload(ctx, id)
}

// GetMyProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetMyProfile(ctx context.Context, principal user.Principal) (employee.EmployeeResponse, error) {
	if err := principal.RequireEmployee(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.reload(ctx, principal.EmployeeID)
}

// UpdateMyProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateMyProfile(ctx context.Context, principal user.Principal, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error) {
	if err := principal.RequireEmployee(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.employeeRepo.GetByID(ctx, principal.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if req.PhoneNumber != nil {
		e.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		e.Address = req.Address
	}

	if err := s.employeeRepo.Update(ctx, e); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.reload(ctx, principal.EmployeeID)
}

// UploadMyAvatar implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UploadMyAvatar(ctx context.Context, principal user.Principal, req employee.UploadAvatarRequest) (employee.EmployeeResponse, error) {
	if err := principal.RequireEmployee(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.employeeRepo.GetByID(ctx, principal.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	url, err := s.fileService.UploadAvatar(ctx, e.ID, req.File, req.Filename)
	if err != nil {
		if errors.Is(err, file.ErrUnsupportedType) {
			return employee.EmployeeResponse{}, employee.ErrInvalidAvatar
		}
		return employee.EmployeeResponse{}, err
	}

	if err := s.employeeRepo.UpdateAvatar(ctx, e.ID, url); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update avatar: %w", err)
	}

	if e.AvatarURL != nil {
		if err := s.fileService.DeleteFile(ctx, *e.AvatarURL); err != nil {
			slog.Warn("failed to delete previous avatar", "employee_id", e.ID, "error", err)
		}
	}

	return s.reload(ctx, e.ID)
}

func (s *EmployeeServiceImpl) reload(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

// parseDate converts a validated YYYY-MM-DD string.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	d, ok := validator.IsValidDate(*s)
	if !ok {
		return nil
	}
	return &d
}
