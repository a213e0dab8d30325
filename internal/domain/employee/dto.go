package employee

import (
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const MaxAvatarSize = 5 << 20

type CreateEmployeeRequest struct {
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Password     string          `json:"password"`
	Role         string          `json:"role"`
	EmployeeCode *string         `json:"employee_code,omitempty"`
	PhoneNumber  *string         `json:"phone_number,omitempty"`
	Address      *string         `json:"address,omitempty"`
	Department   *string         `json:"department,omitempty"`
	Position     *string         `json:"position,omitempty"`
	HireDate     *string         `json:"hire_date,omitempty"`
	BaseSalary   decimal.Decimal `json:"base_salary"`
	LeaveBalance map[string]int  `json:"leave_balance,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Role == "" {
		r.Role = string(user.RoleEmployee)
	}

	if validator.IsEmpty(r.FullName) {
		errs.Add("full_name", "full_name is required")
	} else if len(r.FullName) > 255 {
		errs.Add("full_name", "full_name must not exceed 255 characters")
	}

	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}

	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	} else if len(r.Password) > 72 || !validator.IsStrongPassword(r.Password) {
		errs.Add("password", "password must be 8-72 characters and contain a letter and a digit")
	}

	if !user.Role(r.Role).Valid() {
		errs.Add("role", "role must be admin or employee")
	}

	if r.EmployeeCode != nil && !validator.IsValidEmployeeCode(*r.EmployeeCode) {
		errs.Add("employee_code", "employee_code must look like EMP-0001")
	}

	validateProfile(&errs, r.PhoneNumber, r.Address)
	validateHireDate(&errs, r.HireDate)

	if r.BaseSalary.IsNegative() {
		errs.Add("base_salary", "base_salary must not be negative")
	}

	validateBalance(&errs, r.LeaveBalance)

	return errs.Err()
}

// UpdateEmployeeRequest carries the admin-editable fields. Nil fields are left unchanged.
type UpdateEmployeeRequest struct {
	FullName    *string          `json:"full_name,omitempty"`
	PhoneNumber *string          `json:"phone_number,omitempty"`
	Address     *string          `json:"address,omitempty"`
	Department  *string          `json:"department,omitempty"`
	Position    *string          `json:"position,omitempty"`
	HireDate    *string          `json:"hire_date,omitempty"`
	BaseSalary  *decimal.Decimal `json:"base_salary,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FullName != nil {
		trimmed := strings.TrimSpace(*r.FullName)
		r.FullName = &trimmed
		if trimmed == "" {
			errs.Add("full_name", "full_name must not be empty")
		} else if len(trimmed) > 255 {
			errs.Add("full_name", "full_name must not exceed 255 characters")
		}
	}

	validateProfile(&errs, r.PhoneNumber, r.Address)
	validateHireDate(&errs, r.HireDate)

	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs.Add("base_salary", "base_salary must not be negative")
	}

	return errs.Err()
}

// UpdateProfileRequest carries the fields an employee may edit on their own profile.
type UpdateProfileRequest struct {
	PhoneNumber *string `json:"phone_number,omitempty"`
	Address     *string `json:"address,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors
	validateProfile(&errs, r.PhoneNumber, r.Address)
	return errs.Err()
}

type UpdateLeaveBalanceRequest struct {
	Balances map[string]int `json:"balances"`
}

func (r *UpdateLeaveBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Balances) == 0 {
		errs.Add("balances", "balances is required")
	}
	validateBalance(&errs, r.Balances)

	return errs.Err()
}

type UploadAvatarRequest struct {
	File     io.Reader
	Filename string
	Size     int64
}

func (r *UploadAvatarRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil {
		errs.Add("avatar", "avatar file is required")
	}
	if r.Size > MaxAvatarSize {
		errs.Add("avatar", "avatar must not exceed 5MB")
	}

	return errs.Err()
}

type EmployeeFilter struct {
	Search     string
	Department string
	Status     string
	Page       int
	Limit      int
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.Status != "" && !Status(f.Status).Valid() {
		errs.Add("status", "status must be active or inactive")
	}

	return errs.Err()
}

func (f EmployeeFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

func validateProfile(errs *validator.ValidationErrors, phone, address *string) {
	if phone != nil && *phone != "" && !validator.IsValidPhoneNumber(*phone) {
		errs.Add("phone_number", "phone_number must contain 8-15 digits")
	}
	if address != nil && len(*address) > 500 {
		errs.Add("address", "address must not exceed 500 characters")
	}
}

func validateHireDate(errs *validator.ValidationErrors, hireDate *string) {
	if hireDate == nil {
		return
	}
	if _, ok := validator.IsValidDate(*hireDate); !ok {
		errs.Add("hire_date", "hire_date must be in YYYY-MM-DD format")
	}
}

func validateBalance(errs *validator.ValidationErrors, balances map[string]int) {
	for t, days := range balances {
		if !leave.Type(t).Valid() {
			errs.Add("balances."+t, "unknown leave type")
			continue
		}
		if days < 0 {
			errs.Add("balances."+t, "balance must not be negative")
		}
	}
}

// ToLeaveBalance converts a validated request map.
func ToLeaveBalance(m map[string]int) LeaveBalance {
	b := make(LeaveBalance, len(m))
	for t, days := range m {
		b[leave.Type(t)] = days
	}
	return b
}

type EmployeeResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	EmployeeCode string          `json:"employee_code"`
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Role         string          `json:"role,omitempty"`
	PhoneNumber  *string         `json:"phone_number,omitempty"`
	Address      *string         `json:"address,omitempty"`
	Department   *string         `json:"department,omitempty"`
	Position     *string         `json:"position,omitempty"`
	HireDate     *string         `json:"hire_date,omitempty"`
	BaseSalary   decimal.Decimal `json:"base_salary"`
	AvatarURL    *string         `json:"avatar_url,omitempty"`
	LeaveBalance LeaveBalance    `json:"leave_balance"`
	Status       string          `json:"status"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		EmployeeCode: e.EmployeeCode,
		FullName:     e.FullName,
		Email:        e.Email,
		Role:         e.Role,
		PhoneNumber:  e.PhoneNumber,
		Address:      e.Address,
		Department:   e.Department,
		Position:     e.Position,
		BaseSalary:   e.BaseSalary,
		AvatarURL:    e.AvatarURL,
		LeaveBalance: e.LeaveBalance,
		Status:       string(e.Status),
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}
	if e.HireDate != nil {
		hireDate := e.HireDate.Format(validator.DateLayout)
		resp.HireDate = &hireDate
	}
	if resp.LeaveBalance == nil {
		resp.LeaveBalance = LeaveBalance{}
	}
	return resp
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

type ListEmployeeResponse struct {
	Employees  []EmployeeResponse `json:"employees"`
	Pagination Pagination         `json:"pagination"`
}
