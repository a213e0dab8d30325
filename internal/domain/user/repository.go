package user

import (
	"context"
	"time"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	LinkGoogleAccount(ctx context.Context, googleID string, email string) (User, error)
	SetOTPSecret(ctx context.Context, userID string, secret string, sentAt time.Time) error
	// RecordOTPFailure counts a wrong code and returns the new count. The
	// secret is cleared once the count reaches maxAttempts.
	RecordOTPFailure(ctx context.Context, userID string, maxAttempts int) (int, error)
	VerifyEmail(ctx context.Context, userID string) error
	SetActive(ctx context.Context, userID string, active bool) error
	UpdateEmail(ctx context.Context, userID string, email string) error
}
