package workers

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"admissions_backend/internal/logger"
	"admissions_backend/internal/middleware"
	"admissions_backend/internal/services"
)

const workerName = "cleanup"

// CleanupWorker purges spent OTP rows and idle rate-limit buckets.
type CleanupWorker struct {
	db       *gorm.DB
	otp      services.OTPService
	limiters []*middleware.RateLimiter

	OTPInterval   time.Duration
	OTPRetention  time.Duration
	SweepInterval time.Duration
	now           func() time.Time
	wg            sync.WaitGroup
}

func NewCleanupWorker(db *gorm.DB, otp services.OTPService, limiters ...*middleware.RateLimiter) *CleanupWorker {
	return &CleanupWorker{
		db:            db,
		otp:           otp,
		limiters:      limiters,
		OTPInterval:   time.Hour,
		OTPRetention:  24 * time.Hour,
		SweepInterval: 10 * time.Minute,
		now:           time.Now,
	}
}

// Start launches the loops. They exit when ctx is cancelled; Wait blocks until they have.
func (w *CleanupWorker) Start(ctx context.Context) {
	w.wg.Add(2)
	go w.purgeOTPs(ctx)
	go w.sweepLimiters(ctx)
}

func (w *CleanupWorker) Wait() {
	w.wg.Wait()
}

func (w *CleanupWorker) purgeOTPs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.OTPInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog(workerName, "otp purge stopped", nil)
			return
		case <-ticker.C:
			w.PurgeOnce(ctx)
		}
	}
}

// PurgeOnce deletes OTP rows older than the retention window.
func (w *CleanupWorker) PurgeOnce(ctx context.Context) int64 {
	removed, err := w.otp.PurgeStale(ctx, w.db.WithContext(ctx), w.now().Add(-w.OTPRetention))
	if err != nil {
		logger.WorkerLog(workerName, "otp purge", err)
		return 0
	}
	if removed > 0 {
		logger.WorkerLog(workerName, "otp purge", nil, "removed", removed)
	}
	return removed
}

func (w *CleanupWorker) sweepLimiters(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range w.limiters {
				l.Sweep()
			}
		}
	}
}
