package auth

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/apperror"

var (
	ErrInvalidCredentials    = apperror.Unauthorized("invalid email or password")
	ErrEmailNotVerified      = apperror.Forbidden("email not verified")
	ErrEmailAlreadyExists    = apperror.Conflict("email already registered")
	ErrEmailAlreadyVerified  = apperror.Conflict("email already verified")
	ErrInvalidOTP            = apperror.Validation("invalid or expired verification code")
	ErrInvalidToken          = apperror.Unauthorized("invalid or expired token")
	ErrRefreshTokenRevoked   = apperror.Unauthorized("refresh token has been revoked")
	ErrAccountInactive       = apperror.Forbidden("account is deactivated")
	ErrGoogleNotLinked       = apperror.Forbidden("no account is registered for this google email")
	ErrGoogleEmailUnverified = apperror.Forbidden("google email is not verified")

	ErrRefreshTokenCookieNotFound = apperror.Unauthorized("refresh token cookie not found")
	ErrOTPCooldown                = apperror.Conflict("a verification code was sent recently, please wait before requesting another")
	ErrOTPAttemptsExceeded        = apperror.Validation("too many wrong verification codes, please request a new one")
)
