package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

// TokenPruner forgets revoked access tokens past their expiry.
type TokenPruner interface {
	PruneRevoked(now time.Time) int
}

// HousekeepingJobs clears expired authentication state.
type HousekeepingJobs struct {
	refreshTokens auth.RefreshTokenRepository
	pruner        TokenPruner
	clock         clock.Clock
}

func NewHousekeepingJobs(refreshTokens auth.RefreshTokenRepository, pruner TokenPruner, clk clock.Clock) *HousekeepingJobs {
	return &HousekeepingJobs{
		refreshTokens: refreshTokens,
		pruner:        pruner,
		clock:         clk,
	}
}

func (j *HousekeepingJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("delete_expired_refresh_tokens", time.Hour, j.DeleteExpiredRefreshTokens)
	scheduler.AddJob("prune_revoked_access_tokens", time.Hour, j.PruneRevokedAccessTokens)
}

func (j *HousekeepingJobs) DeleteExpiredRefreshTokens(ctx context.Context) error {
	deleted, err := j.refreshTokens.DeleteExpired(ctx, j.clock.Now())
	if err != nil {
		return fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	if deleted > 0 {
		slog.Info("Cron: expired refresh tokens deleted", "count", deleted)
	}
	return nil
}

func (j *HousekeepingJobs) PruneRevokedAccessTokens(ctx context.Context) error {
	if pruned := j.pruner.PruneRevoked(j.clock.Now()); pruned > 0 {
		slog.Info("Cron: revoked access tokens pruned", "count", pruned)
	}
	return nil
}
