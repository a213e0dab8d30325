package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	u.id, u.email, u.password_hash, u.role, u.oauth_provider, u.oauth_provider_id,
	u.email_verified, u.otp_secret, u.otp_sent_at, u.otp_attempts, u.is_active, u.created_at, u.updated_at,
	e.id, e.full_name`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.OAuthProvider, &u.OAuthProviderID,
		&u.EmailVerified, &u.OTPSecret, &u.OTPSentAt, &u.OTPAttempts, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&u.EmployeeID, &u.FullName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN employees e ON e.user_id = u.id
		WHERE u.email = $1`

	u, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, err
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN employees e ON e.user_id = u.id
		WHERE u.id = $1`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		newUser.ID = newID()
	}

	query := `
		INSERT INTO users (
			id, email, password_hash, role, oauth_provider, oauth_provider_id,
			email_verified, otp_secret, otp_sent_at, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newUser.ID,
		newUser.Email,
		newUser.PasswordHash,
		newUser.Role,
		newUser.OAuthProvider,
		newUser.OAuthProviderID,
		newUser.EmailVerified,
		newUser.OTPSecret,
		newUser.OTPSentAt,
		newUser.IsActive,
	).Scan(&newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// ExistsByEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH updated AS (
			UPDATE users
			SET oauth_provider = 'google', oauth_provider_id = $1, updated_at = NOW()
			WHERE email = $2
			RETURNING *
		)
		SELECT ` + userColumns + `
		FROM updated u
		LEFT JOIN employees e ON e.user_id = u.id
	`

	u, err := scanUser(q.QueryRow(ctx, query, googleID, email))
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, fmt.Errorf("failed to link google account: %w", err)
	}
	return u, err
}

// SetOTPSecret implements user.UserRepository.
func (r *userRepositoryImpl) SetOTPSecret(ctx context.Context, userID string, secret string, sentAt time.Time) error {
	return r.exec(ctx, "set otp secret", `
		UPDATE users
		SET otp_secret = $2, otp_sent_at = $3, otp_attempts = 0, updated_at = NOW()
		WHERE id = $1
	`, userID, secret, sentAt)
}

// RecordOTPFailure implements user.UserRepository.
func (r *userRepositoryImpl) RecordOTPFailure(ctx context.Context, userID string, maxAttempts int) (int, error) {
	q := GetQuerier(ctx, r.db)

	// Right-hand sides see the row before the update.
	query := `
		UPDATE users
		SET otp_attempts = otp_attempts + 1,
			otp_secret = CASE WHEN otp_attempts + 1 >= $2 THEN NULL ELSE otp_secret END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING otp_attempts
	`

	var attempts int
	if err := q.QueryRow(ctx, query, userID, maxAttempts).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, user.ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to record otp failure: %w", err)
	}
	return attempts, nil
}

// VerifyEmail implements user.UserRepository.
func (r *userRepositoryImpl) VerifyEmail(ctx context.Context, userID string) error {
	return r.exec(ctx, "verify email", `
		UPDATE users
		SET email_verified = TRUE, otp_secret = NULL, otp_sent_at = NULL, otp_attempts = 0, updated_at = NOW()
		WHERE id = $1
	`, userID)
}

// SetActive implements user.UserRepository.
func (r *userRepositoryImpl) SetActive(ctx context.Context, userID string, active bool) error {
	return r.exec(ctx, "set user active", `
		UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1
	`, userID, active)
}

// UpdateEmail implements user.UserRepository.
func (r *userRepositoryImpl) UpdateEmail(ctx context.Context, userID string, email string) error {
	err := r.exec(ctx, "update email", `
		UPDATE users SET email = $2, updated_at = NOW() WHERE id = $1
	`, userID, email)
	if database.IsUniqueViolation(err, "users_email_key") {
		return user.ErrUserEmailExists
	}
	return err
}

func (r *userRepositoryImpl) exec(ctx context.Context, op string, query string, args ...interface{}) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
