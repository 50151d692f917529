package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internal/config"
	"admissions_backend/internal/middleware"
	"admissions_backend/internal/models"
	"admissions_backend/internal/repositories"
	"admissions_backend/internal/services"
	"admissions_backend/internal/testutil"
)

func TestPurgeOnceRemovesStaleCodes(t *testing.T) {
	db := testutil.NewTestDB(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := []models.OTP{
		{Email: "expired@example.com", Code: "111111", ExpiresAt: now.Add(-48 * time.Hour), CreatedAt: now.Add(-48 * time.Hour)},
		{Email: "used@example.com", Code: "222222", IsUsed: true, ExpiresAt: now.Add(-25 * time.Hour), CreatedAt: now.Add(-26 * time.Hour)},
		{Email: "live@example.com", Code: "333333", ExpiresAt: now.Add(5 * time.Minute), CreatedAt: now},
	}
	require.NoError(t, db.Create(&rows).Error)

	otp := services.NewOTPService(repositories.NewOTPRepository(), nil, config.Default().OTP)
	w := NewCleanupWorker(db, otp)
	w.now = func() time.Time { return now }

	assert.EqualValues(t, 2, w.PurgeOnce(context.Background()))

	var left []models.OTP
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "live@example.com", left[0].Email)

	assert.Zero(t, w.PurgeOnce(context.Background()))
}

func TestWorkerStopsOnCancel(t *testing.T) {
	db := testutil.NewTestDB(t)
	otp := services.NewOTPService(repositories.NewOTPRepository(), nil, config.Default().OTP)
	limiter := middleware.NewRateLimiter(middleware.Limit{Rate: 5})

	w := NewCleanupWorker(db, otp, limiter)
	w.OTPInterval = 5 * time.Millisecond
	w.SweepInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
