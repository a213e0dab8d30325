package auth

import (
	"context"
	"time"
)

// RefreshTokenRepository persists issued refresh tokens by hash.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID string, token string, expiresAt time.Time, session SessionTrackingRequest) error
	// GetActiveUserID returns the owner of a token that is neither revoked nor
	// expired at now, or ErrRefreshTokenRevoked.
	GetActiveUserID(ctx context.Context, token string, now time.Time) (string, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
