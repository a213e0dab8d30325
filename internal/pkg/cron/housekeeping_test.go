package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingJobs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	clk := &clock.Fixed{T: now}

	store := memory.NewStore()
	tokens := store.RefreshTokens()
	require.NoError(t, tokens.Create(ctx, "user-1", "old", now.Add(-time.Hour), auth.SessionTrackingRequest{}))
	require.NoError(t, tokens.Create(ctx, "user-1", "live", now.Add(time.Hour), auth.SessionTrackingRequest{}))

	jwtService, err := jwt.NewJWTService("secret", "15m", "24h")
	require.NoError(t, err)
	jwtService.RevokeToken("expired-access", now.Add(-time.Minute).Unix())
	jwtService.RevokeToken("live-access", now.Add(time.Minute).Unix())

	jobs := NewHousekeepingJobs(tokens, jwtService, clk)
	scheduler := NewScheduler()
	jobs.RegisterJobs(scheduler)
	scheduler.RunOnce(ctx)

	assert.Equal(t, 1, tokens.Count())
	userID, err := tokens.GetActiveUserID(ctx, "live", now)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	assert.False(t, jwtService.IsTokenRevoked("expired-access"))
	assert.True(t, jwtService.IsTokenRevoked("live-access"))
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	var runs atomic.Int32
	scheduler := NewScheduler()
	scheduler.AddJob("count", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	scheduler.Start(context.Background())
	scheduler.Start(context.Background())

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	scheduler.Stop()
	assert.Equal(t, int32(1), runs.Load())
}
