package user

import "time"

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	FullName      *string `json:"full_name,omitempty"`
	EmployeeID    *string `json:"employee_id,omitempty"`
	OAuthProvider *string `json:"oauth_provider,omitempty"`
	EmailVerified bool    `json:"email_verified"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Role:          string(u.Role),
		FullName:      u.FullName,
		EmployeeID:    u.EmployeeID,
		OAuthProvider: u.OAuthProvider,
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}
