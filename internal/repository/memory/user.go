package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

type userRepository struct {
	s *Store
}

// withEmployee must be called with mu held.
func (r *userRepository) withEmployee(u user.User) user.User {
	if e, ok := r.s.employeeByUser(u.ID); ok {
		id, name := e.ID, e.FullName
		u.EmployeeID, u.FullName = &id, &name
	}
	return u
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return r.withEmployee(u), nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return r.withEmployee(u), nil
}

func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == newUser.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	if newUser.ID == "" {
		newUser.ID = newID()
	}
	newUser.CreatedAt = time.Now()
	newUser.UpdatedAt = newUser.CreatedAt
	r.s.users[newUser.ID] = newUser
	return newUser, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *userRepository) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if u.Email == email {
			provider := "google"
			u.OAuthProvider, u.OAuthProviderID = &provider, &googleID
			r.s.users[id] = u
			return r.withEmployee(u), nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepository) update(userID string, fn func(*user.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.s.users[userID] = u
	return nil
}

func (r *userRepository) SetOTPSecret(ctx context.Context, userID string, secret string, sentAt time.Time) error {
	return r.update(userID, func(u *user.User) {
		u.OTPSecret, u.OTPSentAt = &secret, &sentAt
		u.OTPAttempts = 0
	})
}

func (r *userRepository) RecordOTPFailure(ctx context.Context, userID string, maxAttempts int) (int, error) {
	var attempts int
	err := r.update(userID, func(u *user.User) {
		u.OTPAttempts++
		if u.OTPAttempts >= maxAttempts {
			u.OTPSecret = nil
		}
		attempts = u.OTPAttempts
	})
	return attempts, err
}

func (r *userRepository) VerifyEmail(ctx context.Context, userID string) error {
	return r.update(userID, func(u *user.User) {
		u.EmailVerified = true
		u.OTPSecret, u.OTPSentAt = nil, nil
		u.OTPAttempts = 0
	})
}

func (r *userRepository) SetActive(ctx context.Context, userID string, active bool) error {
	return r.update(userID, func(u *user.User) { u.IsActive = active })
}

func (r *userRepository) UpdateEmail(ctx context.Context, userID string, email string) error {
	r.s.mu.Lock()
	for id, u := range r.s.users {
		if u.Email == email && id != userID {
			r.s.mu.Unlock()
			return user.ErrUserEmailExists
		}
	}
	r.s.mu.Unlock()
	return r.update(userID, func(u *user.User) { u.Email = email })
}

// RefreshTokenRepository implements auth.RefreshTokenRepository.
type RefreshTokenRepository struct {
	s *Store
}

var _ auth.RefreshTokenRepository = (*RefreshTokenRepository)(nil)

func (r *RefreshTokenRepository) Create(ctx context.Context, userID string, token string, expiresAt time.Time, session auth.SessionTrackingRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.refreshTokens[token] = refreshToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *RefreshTokenRepository) GetActiveUserID(ctx context.Context, token string, now time.Time) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.refreshTokens[token]
	if !ok || rt.revoked || !rt.expiresAt.After(now) {
		return "", auth.ErrRefreshTokenRevoked
	}
	return rt.userID, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rt, ok := r.s.refreshTokens[token]; ok {
		rt.revoked = true
		r.s.refreshTokens[token] = rt
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for token, rt := range r.s.refreshTokens {
		if rt.userID == userID {
			rt.revoked = true
			r.s.refreshTokens[token] = rt
		}
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for token, rt := range r.s.refreshTokens {
		if rt.expiresAt.Before(before) {
			delete(r.s.refreshTokens, token)
			deleted++
		}
	}
	return deleted, nil
}

// Count returns how many refresh tokens are stored.
func (r *RefreshTokenRepository) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.refreshTokens)
}
