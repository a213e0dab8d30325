package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // HR administrator
	RoleEmployee Role = "employee" // Regular employee
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type User struct {
	ID              string
	Email           string
	PasswordHash    *string
	Role            Role
	OAuthProvider   *string
	OAuthProviderID *string
	EmailVerified   bool
	OTPSecret       *string
	OTPSentAt       *time.Time
	OTPAttempts     int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO / Join
	EmployeeID *string
	FullName   *string
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal is the authenticated caller of an operation, taken from a
// verified access token.
type Principal struct {
	UserID     string
	EmployeeID string
	Role       Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// HasEmployee reports whether the caller is linked to an employee profile.
func (p Principal) HasEmployee() bool {
	return p.EmployeeID != ""
}

// RequireAdmin returns ErrAdminPrivilegeRequired for non-admin callers.
func (p Principal) RequireAdmin() error {
	if !p.IsAdmin() {
		return ErrAdminPrivilegeRequired
	}
	return nil
}

// RequireEmployee returns ErrEmployeeProfileMissing when the caller has no
// employee profile.
func (p Principal) RequireEmployee() error {
	if !p.HasEmployee() {
		return ErrEmployeeProfileMissing
	}
	return nil
}
