package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

const (
	// otpCooldown is the minimum gap between two verification emails.
	otpCooldown = time.Minute
	// maxOTPAttempts wrong codes burn the current secret.
	maxOTPAttempts = 5
)

type AuthServiceImpl struct {
	tx            database.Transactor
	users         user.UserRepository
	employees     employee.EmployeeRepository
	refreshTokens auth.RefreshTokenRepository
	jwt           jwt.Service
	otp           *otp.Generator
	email         email.EmailService
	clock         clock.Clock
	leave         config.LeaveConfig
}

func NewAuthService(
	tx database.Transactor,
	userRepository user.UserRepository,
	employeeRepository employee.EmployeeRepository,
	refreshTokenRepository auth.RefreshTokenRepository,
	jwtService jwt.Service,
	otpGenerator *otp.Generator,
	emailService email.EmailService,
	clk clock.Clock,
	leaveConfig config.LeaveConfig,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:            tx,
		users:         userRepository,
		employees:     employeeRepository,
		refreshTokens: refreshTokenRepository,
		jwt:           jwtService,
		otp:           otpGenerator,
		email:         emailService,
		clock:         clk,
		leave:         leaveConfig,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.RegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.RegisterResponse{}, err
	}

	exists, err := a.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return auth.RegisterResponse{}, err
	}
	if exists {
		return auth.RegisterResponse{}, auth.ErrEmailAlreadyExists
	}

	hashed, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.RegisterResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	secret, err := a.otp.NewSecret(req.Email)
	if err != nil {
		return auth.RegisterResponse{}, fmt.Errorf("failed to create otp secret: %w", err)
	}
	now := a.clock.Now()

	var created user.User
	var profile employee.Employee
	err = a.tx.WithTransaction(ctx, func(ctx context.Context) error {
		created, err = a.users.Create(ctx, user.User{
			Email:         req.Email,
			PasswordHash:  &hashed,
			Role:          user.RoleEmployee,
			EmailVerified: false,
			OTPSecret:     &secret,
			OTPSentAt:     &now,
			IsActive:      true,
		})
		if err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return auth.ErrEmailAlreadyExists
			}
			return err
		}

		code, err := a.employees.NextEmployeeCode(ctx)
		if err != nil {
			return err
		}
		profile, err = a.employees.Create(ctx, employee.Employee{
			UserID:       created.ID,
			EmployeeCode: code,
			FullName:     req.FullName,
			LeaveBalance: employee.DefaultLeaveBalance(a.leave.DefaultPaidDays, a.leave.DefaultSickDays),
			Status:       employee.StatusActive,
		})
		return err
	})
	if err != nil {
		return auth.RegisterResponse{}, err
	}

	a.sendOTP(req.Email, req.FullName, secret, now)

	slog.Info("user registered", "user_id", created.ID, "employee_id", profile.ID)
	return auth.RegisterResponse{
		UserID:     created.ID,
		EmployeeID: profile.ID,
		Email:      created.Email,
	}, nil
}

// sendOTP emails the current code. Delivery failures are logged; the user
// can ask for a new code.
func (a *AuthServiceImpl) sendOTP(to, name, secret string, at time.Time) {
	code, err := a.otp.Code(secret, at)
	if err != nil {
		slog.Error("failed to generate otp code", "email", to, "error", err)
		return
	}
	if err := a.email.SendOTP(to, name, code, a.otp.TTL()); err != nil {
		slog.Error("failed to send otp email", "email", to, "error", err)
	}
}

// VerifyOTP implements auth.AuthService.
func (a *AuthServiceImpl) VerifyOTP(ctx context.Context, req auth.VerifyOTPRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userData, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrInvalidOTP
		}
		return err
	}
	if userData.EmailVerified {
		return auth.ErrEmailAlreadyVerified
	}
	if userData.OTPAttempts >= maxOTPAttempts {
		return auth.ErrOTPAttemptsExceeded
	}
	if userData.OTPSecret == nil || userData.OTPSentAt == nil {
		return auth.ErrInvalidOTP
	}

	now := a.clock.Now()
	if now.Sub(*userData.OTPSentAt) > a.otp.TTL() {
		return auth.ErrInvalidOTP
	}
	if !a.otp.Validate(req.Code, *userData.OTPSecret, now) {
		attempts, err := a.users.RecordOTPFailure(ctx, userData.ID, maxOTPAttempts)
		if err != nil {
			return err
		}
		slog.Warn("wrong verification code", "user_id", userData.ID, "attempts", attempts)
		if attempts >= maxOTPAttempts {
			return auth.ErrOTPAttemptsExceeded
		}
		return auth.ErrInvalidOTP
	}

	if err := a.users.VerifyEmail(ctx, userData.ID); err != nil {
		return err
	}

	slog.Info("email verified", "user_id", userData.ID)
	return nil
}

// ResendOTP implements auth.AuthService.
func (a *AuthServiceImpl) ResendOTP(ctx context.Context, req auth.ResendOTPRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	userData, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Unknown addresses get the same answer as known ones.
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if userData.EmailVerified {
		return auth.ErrEmailAlreadyVerified
	}

	now := a.clock.Now()
	if userData.OTPSentAt != nil && now.Sub(*userData.OTPSentAt) < otpCooldown {
		return auth.ErrOTPCooldown
	}

	secret, err := a.otp.NewSecret(userData.Email)
	if err != nil {
		return fmt.Errorf("failed to create otp secret: %w", err)
	}
	if err := a.users.SetOTPSecret(ctx, userData.ID, secret, now); err != nil {
		return err
	}

	name := userData.Email
	if userData.FullName != nil {
		name = *userData.FullName
	}
	a.sendOTP(userData.Email, name, secret, now)
	return nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.EmailVerified {
		return auth.TokenResponse{}, auth.ErrEmailNotVerified
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	return a.issueTokens(ctx, userData, session)
}

// LoginWithGoogle implements auth.AuthService. Only accounts that already
// exist can sign in with Google.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, identity auth.GoogleIdentity, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if !identity.VerifiedEmail {
		return auth.TokenResponse{}, auth.ErrGoogleEmailUnverified
	}

	userData, err := a.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrGoogleNotLinked
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user data by email: %w", err)
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	if userData.OAuthProviderID == nil || *userData.OAuthProviderID != identity.GoogleID {
		userData, err = a.users.LinkGoogleAccount(ctx, identity.GoogleID, userData.Email)
		if err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
		}
	}
	if !userData.EmailVerified {
		if err := a.users.VerifyEmail(ctx, userData.ID); err != nil {
			return auth.TokenResponse{}, err
		}
		userData.EmailVerified = true
	}

	return a.issueTokens(ctx, userData, session)
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, userData user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse
	var err error

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresAt, err = a.jwt.GenerateAccessToken(userData.ID, userData.Email, userData.EmployeeID, userData.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresAt, err = a.jwt.GenerateRefreshToken(userData.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	err = a.refreshTokens.Create(ctx, userData.ID, tokenResponse.RefreshToken, time.Unix(tokenResponse.RefreshTokenExpiresAt, 0), session)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	tokenResponse.User = user.NewUserResponse(userData)
	slog.Info("user logged in", "user_id", userData.ID, "role", userData.Role)
	return tokenResponse, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	claimedUserID, err := a.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	userID, err := a.refreshTokens.GetActiveUserID(ctx, req.RefreshToken, a.clock.Now())
	if err != nil {
		return auth.AccessTokenResponse{}, err
	}
	if userID != claimedUserID {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	userData, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.AccessTokenResponse{}, err
	}
	if !userData.IsActive {
		return auth.AccessTokenResponse{}, auth.ErrAccountInactive
	}

	token, expiresAt, err := a.jwt.GenerateAccessToken(userData.ID, userData.Email, userData.EmployeeID, userData.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.AccessTokenResponse{
		AccessToken:          token,
		AccessTokenExpiresAt: expiresAt,
	}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.LogoutRequest) error {
	if req.RefreshToken != "" {
		if err := a.refreshTokens.Revoke(ctx, req.RefreshToken); err != nil {
			return err
		}
	}
	if req.AccessToken != "" {
		a.jwt.RevokeToken(req.AccessToken, req.AccessTokenExpiresAt)
	}
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, principal user.Principal) (user.UserResponse, error) {
	userData, err := a.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(userData), nil
}
