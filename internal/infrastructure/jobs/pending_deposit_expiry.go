package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"hmr-builders.backend/pkg/logger"
)

const expiryBatchSize = 100

type pendingDepositExpirer interface {
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// PendingDepositExpiryJob marks deposits that never passed OTP verification as expired.
type PendingDepositExpiryJob struct {
	repo     pendingDepositExpirer
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
}

func NewPendingDepositExpiryJob(repo pendingDepositExpirer, ttl, interval time.Duration) *PendingDepositExpiryJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &PendingDepositExpiryJob{
		repo:     repo,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *PendingDepositExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting pending deposit expiry job", zap.Duration("ttl", j.ttl), zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Pending deposit expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Pending deposit expiry job stopped")
			return
		case <-ticker.C:
			j.processExpiredDeposits(ctx)
		}
	}
}

func (j *PendingDepositExpiryJob) Stop() {
	close(j.stop)
}

func (j *PendingDepositExpiryJob) processExpiredDeposits(ctx context.Context) {
	cutoff := j.now().Add(-j.ttl)
	total := int64(0)
	for {
		n, err := j.repo.ExpirePending(ctx, cutoff, expiryBatchSize)
		if err != nil {
			logger.Error(ctx, "Failed to expire pending deposits", zap.Error(err))
			return
		}
		total += n
		if n < expiryBatchSize {
			break
		}
	}
	if total > 0 {
		logger.Info(ctx, "Expired pending deposits", zap.Int64("count", total))
	}
}
